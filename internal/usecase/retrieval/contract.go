package retrieval

import (
	"context"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// Embedder vectorizes query text.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Index is the nearest-neighbor search capability the retriever depends on.
type Index interface {
	Search(vector []float32, k int) []domain.SearchHit
	Len() int
	Dim() int
}
