// Package pipeline orchestrates one recommendation request: sanitize, safety
// gate, mood inference, style mapping, retrieval, context formatting,
// generation, and reconciliation of the generated answer back to the
// verified candidate set.
package pipeline

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
)

const (
	// Retrieval fan-out is fixed and independent of how many books are
	// ultimately shown.
	defaultFanOut      = 10
	defaultTemperature = 0.7
)

// clarifyMessage is the terminal answer for blank queries.
const clarifyMessage = "Could you tell me a bit more about what you'd like to read? " +
	"A genre, a mood, or a book you enjoyed all work."

// Options shape a single pipeline run.
type Options struct {
	Style         string
	ForceNeutral  bool // skip mood inference
	Explain       bool
	SecondOpinion bool
	History       []Turn
}

// Service is the pipeline orchestrator. It holds no per-request state;
// everything lives in the arguments and the result.
type Service struct {
	retriever   Retriever
	generator   Generator
	moods       MoodDetector
	fanOut      int
	temperature float32
	logger      *zap.Logger
}

// New creates a pipeline orchestrator.
func New(retriever Retriever, generator Generator, moods MoodDetector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		retriever:   retriever,
		generator:   generator,
		moods:       moods,
		fanOut:      defaultFanOut,
		temperature: defaultTemperature,
		logger:      logger,
	}
}

// WithFanOut overrides the retrieval fan-out.
func (s *Service) WithFanOut(k int) *Service {
	if k > 0 {
		s.fanOut = k
	}
	return s
}

// Run executes the request state machine. Blank and safety-blocked queries
// terminate early with a well-formed result and no error. Generation
// failures (ErrGenerationTimeout, ErrGenerationFormat) propagate to the
// caller, which owns the catalog-only fallback.
func (s *Service) Run(ctx context.Context, query string, opts Options) (domain.PipelineResult, error) {
	query = strings.TrimSpace(query)

	result := domain.PipelineResult{
		Query: query,
		Style: opts.Style,
		Mood:  domain.MoodNeutral,
	}

	if query == "" {
		result.Answer = clarifyMessage
		return result, nil
	}

	if blockedBySafetyGate(query) {
		s.logger.Info("query blocked by safety gate")
		result.Answer = refusalMessage
		return result, nil
	}

	if !opts.ForceNeutral {
		result.Mood = s.moods.Detect(ctx, query)
	}

	dirs := mapStyle(opts.Style)

	retrieved, err := s.retriever.Retrieve(ctx, query, s.fanOut, true)
	if err != nil {
		return domain.PipelineResult{}, fmt.Errorf("retrieve candidates: %w", err)
	}
	result.Retrieved = retrieved
	result.RetrievedBooks = candidateBooks(retrieved)
	result.Context = formatContext(retrieved)

	gen, err := s.generator.Generate(ctx, domain.GenerationRequest{
		SystemPrompt: buildSystemPrompt(dirs, result.Mood, opts.Explain, opts.SecondOpinion),
		UserPrompt:   buildUserPrompt(query, result.Context, opts.History),
		Temperature:  s.temperature,
	})
	if err != nil {
		return domain.PipelineResult{}, fmt.Errorf("generate answer: %w", err)
	}

	result.Answer = gen.Answer
	result.RawModelOutput = gen.Raw
	result.RecommendedBooks = reconcile(gen.Answer, retrieved)

	s.logger.Debug("pipeline run complete",
		zap.Int("retrieved", len(result.Retrieved)),
		zap.Int("recommended", len(result.RecommendedBooks)),
		zap.String("mood", string(result.Mood)),
	)
	return result, nil
}

func candidateBooks(candidates []domain.RankedCandidate) []domain.Book {
	if len(candidates) == 0 {
		return nil
	}
	books := make([]domain.Book, len(candidates))
	for i, c := range candidates {
		books[i] = c.Book
	}
	return books
}
