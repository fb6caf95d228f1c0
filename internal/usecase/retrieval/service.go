// Package retrieval composes query embedding, nearest-neighbor search, soft
// filter extraction, and the multi-signal reranking pass into a single
// Retrieve call.
package retrieval

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/metrics"
)

// Service is the retriever. It is stateless per request; the index and
// embedder are process-wide singletons owned by the composition root.
type Service struct {
	embed  Embedder
	index  Index
	themes KeywordTable
	tones  KeywordTable
}

// New creates a retriever with the built-in keyword tables.
func New(embed Embedder, index Index) *Service {
	return &Service{
		embed:  embed,
		index:  index,
		themes: DefaultThemes(),
		tones:  DefaultTones(),
	}
}

// WithKeywordTables swaps in externally configured theme/tone tables.
// Tables must already be validated.
func (s *Service) WithKeywordTables(themes, tones KeywordTable) *Service {
	s.themes = themes
	s.tones = tones
	return s
}

// Retrieve embeds the query, searches the index for the k nearest books,
// and reranks them. A blank query yields an empty result. Malformed
// candidate metadata never fails the call; only an unavailable embedder or
// index propagates an error.
func (s *Service) Retrieve(ctx context.Context, query string, k int, rerank bool) ([]domain.RankedCandidate, error) {
	if strings.TrimSpace(query) == "" {
		return nil, nil
	}

	reranked := strconv.FormatBool(rerank)

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		metrics.RetrievalRequestsTotal.WithLabelValues(reranked, "error").Inc()
		return nil, fmt.Errorf("embed query: %w", err)
	}
	metrics.RetrievalRequestsTotal.WithLabelValues(reranked, "success").Inc()

	hits := s.index.Search(emb.Embedding, k)
	if len(hits) == 0 {
		return nil, nil
	}

	if !rerank {
		out := make([]domain.RankedCandidate, 0, len(hits))
		for _, hit := range hits {
			sim := similarityFromDistance(hit.Distance)
			out = append(out, domain.RankedCandidate{
				Book:       hit.Book,
				Distance:   hit.Distance,
				Similarity: sim,
				Score:      sim,
			})
		}
		return out, nil
	}

	return s.rerank(query, hits, ParseFilters(query)), nil
}
