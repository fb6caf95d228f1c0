package domain

import "context"

// Generator turns a structured prompt into free text. Ordinary backend
// hiccups are absorbed into a user-facing fallback answer; genuine
// unavailability surfaces as ErrGenerationTimeout or ErrGenerationFormat.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (GenerationResult, error)
}

// GenerationRequest is the full prompt handed to the generation backend.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	Temperature  float32
	MaxTokens    int // 0 = backend default
}

// GenerationResult carries the assistant answer plus the untouched model
// output for debugging and audit.
type GenerationResult struct {
	Answer string
	Raw    string
}

// Mood is the coarse emotional category inferred from user text.
type Mood string

// Mood values produced by detection.
const (
	MoodHappy   Mood = "happy"
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
)

// MoodDetector infers a coarse mood from user text. Detection never fails;
// anything unclassifiable is neutral.
type MoodDetector interface {
	Detect(ctx context.Context, text string) Mood
}
