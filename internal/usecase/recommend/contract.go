package recommend

import (
	"context"

	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/usecase/pipeline"
)

// Pipeline runs one full recommendation request.
type Pipeline interface {
	Run(ctx context.Context, query string, opts pipeline.Options) (domain.PipelineResult, error)
}

// Retriever is the direct catalog search path used when generation fails.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, rerank bool) ([]domain.RankedCandidate, error)
}

// Embedder encodes free text for neighbor lookups.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index exposes the loaded vector index and its catalog.
type Index interface {
	Search(vector []float32, k int) []domain.SearchHit
	Books() []domain.Book
}
