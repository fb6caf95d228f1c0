// Package mood infers a coarse emotional category from user text. A keyword
// heuristic answers first; an optional remote classifier is consulted only
// when the heuristic is inconclusive. Detection never fails; anything
// unclassifiable is neutral.
package mood

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
)

var sadWords = []string{
	"sad", "down", "lonely", "tired", "anxious",
	"depressed", "upset", "heartbroken", "empty",
}

var happyWords = []string{
	"happy", "excited", "joy", "joyful", "optimistic",
	"delighted", "glad",
}

// Classifier is an optional fallback sentiment backend.
type Classifier interface {
	Classify(ctx context.Context, text string) (domain.Mood, error)
}

// Detector implements domain.MoodDetector.
type Detector struct {
	classifier Classifier // may be nil: keyword-only mode
	logger     *zap.Logger
}

// New creates a keyword-first detector. classifier may be nil.
func New(classifier Classifier, logger *zap.Logger) *Detector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Detector{classifier: classifier, logger: logger}
}

// Detect returns happy, sad, or neutral. Keyword hits win; the classifier
// is a fallback, and its failure degrades to neutral rather than erroring.
func (d *Detector) Detect(ctx context.Context, text string) domain.Mood {
	t := strings.ToLower(strings.TrimSpace(text))
	if t == "" {
		return domain.MoodNeutral
	}

	for _, w := range sadWords {
		if strings.Contains(t, w) {
			return domain.MoodSad
		}
	}
	for _, w := range happyWords {
		if strings.Contains(t, w) {
			return domain.MoodHappy
		}
	}

	if d.classifier == nil {
		return domain.MoodNeutral
	}

	m, err := d.classifier.Classify(ctx, t)
	if err != nil {
		d.logger.Warn("mood classifier unavailable, defaulting to neutral", zap.Error(err))
		return domain.MoodNeutral
	}
	switch m {
	case domain.MoodHappy, domain.MoodSad:
		return m
	default:
		return domain.MoodNeutral
	}
}
