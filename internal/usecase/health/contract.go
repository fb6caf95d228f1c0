package health

import "context"

// IndexStats reports the loaded vector index size.
type IndexStats interface {
	Len() int
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// GeneratorChecker checks generation backend availability.
type GeneratorChecker interface {
	HealthCheck(ctx context.Context) error
}
