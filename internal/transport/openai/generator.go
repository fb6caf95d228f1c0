package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	gobreaker "github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/metrics"
)

// hiccupFallback is the user-facing answer for transient backend errors
// that survive all retries but do not indicate real unavailability.
const hiccupFallback = "I couldn't generate a response just now. " +
	"Please try rephrasing your request or try again."

// Generator is a chat-completions backend. Failure semantics:
//   - the request deadline expiring maps to domain.ErrGenerationTimeout
//   - an open circuit breaker maps to domain.ErrGenerationTimeout
//   - a successful call with blank content maps to domain.ErrGenerationFormat
//   - ordinary API errors that survive the retries yield a friendly
//     fallback answer and no error
type Generator struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
	retries     int
	backoff     time.Duration
	breaker     *gobreaker.CircuitBreaker[openai.ChatCompletionResponse]
	logger      *zap.Logger
}

// GeneratorConfig holds the generation backend settings.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	// Timeout bounds one whole Generate call including retries.
	Timeout time.Duration
	// Retries is the number of additional attempts after the first.
	Retries int
	// Backoff is the base retry delay; attempt n sleeps n times this.
	Backoff time.Duration
	Logger  *zap.Logger
}

// NewGenerator creates a chat-completions generation backend with a
// circuit breaker in front of the API.
func NewGenerator(cfg *GeneratorConfig) *Generator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 700 * time.Millisecond
	}
	retries := cfg.Retries
	if retries < 0 {
		retries = 0
	}

	breaker := gobreaker.NewCircuitBreaker[openai.ChatCompletionResponse](gobreaker.Settings{
		Name:    "generation",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("generation breaker state change",
				zap.String("from", from.String()), zap.String("to", to.String()))
		},
	})

	return &Generator{
		client:      openai.NewClientWithConfig(clientCfg),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     timeout,
		retries:     retries,
		backoff:     backoff,
		breaker:     breaker,
		logger:      logger,
	}
}

// Generate implements domain.Generator.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	temperature := g.temperature
	if req.Temperature > 0 {
		temperature = req.Temperature
	}
	maxTokens := g.maxTokens
	if req.MaxTokens > 0 {
		maxTokens = req.MaxTokens
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: req.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: req.UserPrompt},
		},
	}

	start := time.Now()
	var lastErr error

	for attempt := 0; attempt <= g.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
			case <-time.After(g.backoff * time.Duration(attempt)):
			}
		}
		if ctx.Err() != nil {
			metrics.GenerationRequestsTotal.WithLabelValues(g.model, "timeout").Inc()
			return domain.GenerationResult{}, fmt.Errorf("generation deadline exceeded: %w", domain.ErrGenerationTimeout)
		}

		resp, err := g.breaker.Execute(func() (openai.ChatCompletionResponse, error) {
			return g.client.CreateChatCompletion(ctx, chatReq)
		})
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
				metrics.GenerationRequestsTotal.WithLabelValues(g.model, "timeout").Inc()
				return domain.GenerationResult{}, fmt.Errorf("generation deadline exceeded: %w", domain.ErrGenerationTimeout)
			}
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				metrics.GenerationRequestsTotal.WithLabelValues(g.model, "timeout").Inc()
				return domain.GenerationResult{}, fmt.Errorf("generation backend unavailable: %w", domain.ErrGenerationTimeout)
			}
			lastErr = err
			g.logger.Warn("generation attempt failed",
				zap.Int("attempt", attempt+1), zap.Error(err))
			continue
		}

		metrics.GenerationRequestDuration.WithLabelValues(g.model).Observe(time.Since(start).Seconds())

		content := ""
		if len(resp.Choices) > 0 {
			content = strings.TrimSpace(resp.Choices[0].Message.Content)
		}
		if content == "" {
			metrics.GenerationRequestsTotal.WithLabelValues(g.model, "format").Inc()
			return domain.GenerationResult{}, fmt.Errorf("blank completion: %w", domain.ErrGenerationFormat)
		}

		metrics.GenerationRequestsTotal.WithLabelValues(g.model, "success").Inc()
		return domain.GenerationResult{Answer: content, Raw: content}, nil
	}

	metrics.GenerationRequestsTotal.WithLabelValues(g.model, "error").Inc()
	g.logger.Error("generation failed after retries", zap.Error(lastErr))
	return domain.GenerationResult{Answer: hiccupFallback, Raw: ""}, nil
}

// HealthCheck attempts a minimal completion against the model.
func (g *Generator) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	_, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: 0,
		MaxTokens:   5,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: "ping"},
		},
	})
	if err != nil {
		return fmt.Errorf("generation healthcheck: %w", err)
	}
	return nil
}
