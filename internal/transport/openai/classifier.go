package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shelfdex/shelfdex/internal/domain"
)

const classifierSystemPrompt = "You label the emotional tone of short text. " +
	"Answer with exactly one word: happy, sad, or neutral."

// MoodClassifier is the remote sentiment fallback behind the keyword
// heuristic. It is never on the critical path; callers degrade to neutral
// on any error.
type MoodClassifier struct {
	client *openai.Client
	model  string
}

// NewMoodClassifier creates a single-token sentiment classifier on the
// chat-completions API.
func NewMoodClassifier(apiKey, baseURL, model string) *MoodClassifier {
	clientCfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientCfg.BaseURL = baseURL
	}
	return &MoodClassifier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Classify implements mood.Classifier.
func (c *MoodClassifier) Classify(ctx context.Context, text string) (domain.Mood, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		MaxTokens:   3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: classifierSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
	})
	if err != nil {
		return domain.MoodNeutral, fmt.Errorf("classify mood: %w", err)
	}
	if len(resp.Choices) == 0 {
		return domain.MoodNeutral, fmt.Errorf("classify mood: empty completion")
	}

	label := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	label = strings.Trim(label, ".!\"'")
	switch {
	case strings.HasPrefix(label, "happy"):
		return domain.MoodHappy, nil
	case strings.HasPrefix(label, "sad"):
		return domain.MoodSad, nil
	default:
		return domain.MoodNeutral, nil
	}
}
