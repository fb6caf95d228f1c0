package pipeline

import (
	"context"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// Retriever produces ranked catalog candidates for a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, rerank bool) ([]domain.RankedCandidate, error)
}

// Generator turns the assembled prompt into prose.
type Generator interface {
	Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error)
}

// MoodDetector infers the user's mood from the query text.
type MoodDetector interface {
	Detect(ctx context.Context, text string) domain.Mood
}
