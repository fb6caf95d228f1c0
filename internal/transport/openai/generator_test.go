package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shelfdex/shelfdex/internal/domain"
)

func jsonDecode(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func chatServer(handler http.HandlerFunc) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		handler(w, r)
	}))
}

func chatCompletion(content string) string {
	return fmt.Sprintf(`{
		"id": "cmpl-1", "object": "chat.completion", "model": "test-model",
		"choices": [{"index": 0, "finish_reason": "stop",
			"message": {"role": "assistant", "content": %q}}]
	}`, content)
}

func TestGenerator_Generate(t *testing.T) {
	server := chatServer(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion("* **Dune** is the pick.")))
	})
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})

	result, err := gen.Generate(context.Background(), domain.GenerationRequest{
		SystemPrompt: "system",
		UserPrompt:   "user",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if !strings.Contains(result.Answer, "Dune") {
		t.Errorf("answer = %q", result.Answer)
	}
}

func TestGenerator_BlankContentIsFormatError(t *testing.T) {
	server := chatServer(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion("   ")))
	})
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{APIKey: "k", BaseURL: server.URL, Model: "m"})

	_, err := gen.Generate(context.Background(), domain.GenerationRequest{UserPrompt: "q"})
	if !errors.Is(err, domain.ErrGenerationFormat) {
		t.Fatalf("expected ErrGenerationFormat, got %v", err)
	}
}

func TestGenerator_TimeoutMapsToSentinel(t *testing.T) {
	server := chatServer(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body first so the client's cancellation reaches the
		// handler and it can unblock before server.Close.
		_, _ = io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	})
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "k",
		BaseURL: server.URL,
		Model:   "m",
		Timeout: 50 * time.Millisecond,
	})

	_, err := gen.Generate(context.Background(), domain.GenerationRequest{UserPrompt: "q"})
	if !errors.Is(err, domain.ErrGenerationTimeout) {
		t.Fatalf("expected ErrGenerationTimeout, got %v", err)
	}
}

func TestGenerator_RetriesThenFriendlyFallback(t *testing.T) {
	var calls atomic.Int32
	server := chatServer(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error": {"message": "boom"}}`))
	})
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:  "k",
		BaseURL: server.URL,
		Model:   "m",
		Retries: 2,
		Backoff: time.Millisecond,
	})

	result, err := gen.Generate(context.Background(), domain.GenerationRequest{UserPrompt: "q"})
	if err != nil {
		t.Fatalf("ordinary API errors must not surface, got %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("attempts = %d, want 3", got)
	}
	if !strings.Contains(result.Answer, "try again") {
		t.Errorf("answer = %q, want the friendly fallback", result.Answer)
	}
}

func TestGenerator_RequestOverridesDefaults(t *testing.T) {
	var gotTemp float64
	server := chatServer(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Temperature float64 `json:"temperature"`
		}
		if err := jsonDecode(r, &body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		gotTemp = body.Temperature
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(chatCompletion("ok")))
	})
	defer server.Close()

	gen := NewGenerator(&GeneratorConfig{
		APIKey:      "k",
		BaseURL:     server.URL,
		Model:       "m",
		Temperature: 0.2,
	})

	_, err := gen.Generate(context.Background(), domain.GenerationRequest{
		UserPrompt:  "q",
		Temperature: 0.9,
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if gotTemp < 0.89 || gotTemp > 0.91 {
		t.Errorf("temperature sent = %v, want the request override 0.9", gotTemp)
	}
}
