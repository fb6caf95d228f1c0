// Package recommend is the service facade over the recommendation pipeline.
// It owns the long-lived ports, converts generation failures into the
// catalog-only fallback result, and tracks per-session recommendation
// counts for the stats endpoint.
package recommend

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/usecase/pipeline"
)

// fallbackFanOut bounds the direct retrieval used when generation fails.
const fallbackFanOut = 5

const timeoutFallbackMessage = "The language model took too long to respond, " +
	"so I'm showing the closest matches retrieved directly from the catalog."

const formatFallbackMessage = "I had trouble interpreting the model's answer " +
	"this time. Here are candidate books retrieved directly from the catalog."

// Options shape one Recommend call. UseMood defaults to false on the zero
// value; callers that want mood-aware answers set it explicitly.
type Options struct {
	Style         string
	UseMood       bool
	Explain       bool
	SecondOpinion bool
	History       []pipeline.Turn
}

// SimilarBook is one neighbor from a title-based lookup.
type SimilarBook struct {
	Book  domain.Book `json:"book"`
	Score float64     `json:"score"`
}

// Service is the recommendation facade.
type Service struct {
	pipeline  Pipeline
	retriever Retriever
	embed     Embedder
	index     Index
	audit     *AuditLog
	logger    *zap.Logger

	mu     sync.Mutex
	counts map[string]int
}

// New creates the facade. The audit log is optional.
func New(p Pipeline, r Retriever, embed Embedder, index Index, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		pipeline:  p,
		retriever: r,
		embed:     embed,
		index:     index,
		logger:    logger,
		counts:    make(map[string]int),
	}
}

// WithAuditLog attaches a best-effort interaction log.
func (s *Service) WithAuditLog(audit *AuditLog) *Service {
	s.audit = audit
	return s
}

// Recommend runs the pipeline and guarantees a well-formed result for every
// non-fatal condition. Generation timeouts and malformed model answers are
// replaced with a direct catalog retrieval; only index or embedding
// unavailability propagates as an error.
func (s *Service) Recommend(ctx context.Context, query string, opts Options) (domain.PipelineResult, error) {
	popts := pipeline.Options{
		Style:         opts.Style,
		ForceNeutral:  !opts.UseMood,
		Explain:       opts.Explain,
		SecondOpinion: opts.SecondOpinion,
		History:       opts.History,
	}

	result, err := s.pipeline.Run(ctx, query, popts)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrGenerationTimeout):
		s.logger.Warn("generation timed out, serving catalog fallback", zap.Error(err))
		result = s.fallbackResult(ctx, query, timeoutFallbackMessage)
	case errors.Is(err, domain.ErrGenerationFormat):
		s.logger.Warn("generation unparseable, serving catalog fallback", zap.Error(err))
		result = s.fallbackResult(ctx, query, formatFallbackMessage)
	default:
		return domain.PipelineResult{}, fmt.Errorf("run pipeline: %w", err)
	}

	s.recordRecommendations(result.RecommendedBooks)
	if s.audit != nil {
		s.audit.Append(result)
	}
	return result, nil
}

// fallbackResult builds the catalog-only substitute: direct reranked
// retrieval, empty recommendations, templated answer. A retrieval failure
// here degrades to an empty book list rather than an error.
func (s *Service) fallbackResult(ctx context.Context, query, message string) domain.PipelineResult {
	result := domain.PipelineResult{
		Query:  strings.TrimSpace(query),
		Answer: message,
		Mood:   domain.MoodNeutral,
	}

	candidates, err := s.retriever.Retrieve(ctx, query, fallbackFanOut, true)
	if err != nil {
		s.logger.Warn("fallback retrieval failed", zap.Error(err))
		return result
	}
	result.Retrieved = candidates
	for _, c := range candidates {
		result.RetrievedBooks = append(result.RetrievedBooks, c.Book)
	}
	return result
}

func (s *Service) recordRecommendations(books []domain.Book) {
	if len(books) == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range books {
		if t := strings.TrimSpace(b.Title); t != "" {
			s.counts[t]++
		}
	}
}

// Stats returns a copy of the per-title recommendation counts for this
// process lifetime.
func (s *Service) Stats() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// Titles lists every catalog title in index order.
func (s *Service) Titles() []string {
	var titles []string
	for _, b := range s.index.Books() {
		if t := strings.TrimSpace(b.Title); t != "" {
			titles = append(titles, t)
		}
	}
	return titles
}

// SimilarByTitle finds the k nearest catalog neighbors of a known book by
// embedding its title and description. The result may include the book
// itself. Unknown titles yield ErrBookNotFound.
func (s *Service) SimilarByTitle(ctx context.Context, title string, k int) ([]SimilarBook, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, domain.ErrBookNotFound
	}
	if k <= 0 {
		k = 10
	}

	var target *domain.Book
	want := domain.NormalizeTitle(title)
	for _, b := range s.index.Books() {
		if domain.NormalizeTitle(b.Title) == want {
			book := b
			target = &book
			break
		}
	}
	if target == nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrBookNotFound, title)
	}

	parts := []string{target.Title}
	if desc := strings.TrimSpace(target.Description); desc != "" {
		if len(desc) > 400 {
			desc = desc[:400]
		}
		parts = append(parts, desc)
	}

	res, err := s.embed.Embed(ctx, strings.Join(parts, ". "))
	if err != nil {
		return nil, fmt.Errorf("embed title text: %w", err)
	}

	hits := s.index.Search(res.Embedding, k)
	similar := make([]SimilarBook, 0, len(hits))
	for _, h := range hits {
		score := 1.0 - h.Distance
		if score < 0 {
			score = 0
		}
		similar = append(similar, SimilarBook{Book: h.Book, Score: score})
	}
	sort.SliceStable(similar, func(i, j int) bool {
		return similar[i].Score > similar[j].Score
	})
	return similar, nil
}
