package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/usecase/health"
	"github.com/shelfdex/shelfdex/internal/usecase/recommend"
)

// --- Mocks ---

type mockFacade struct {
	result     domain.PipelineResult
	err        error
	similar    []recommend.SimilarBook
	similarErr error
	titles     []string
	stats      map[string]int
	lastQuery  string
	lastOpts   recommend.Options
}

func (m *mockFacade) Recommend(_ context.Context, query string, opts recommend.Options) (domain.PipelineResult, error) {
	m.lastQuery = query
	m.lastOpts = opts
	if m.err != nil {
		return domain.PipelineResult{}, m.err
	}
	return m.result, nil
}

func (m *mockFacade) Titles() []string      { return m.titles }
func (m *mockFacade) Stats() map[string]int { return m.stats }

func (m *mockFacade) SimilarByTitle(_ context.Context, _ string, _ int) ([]recommend.SimilarBook, error) {
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return m.similar, nil
}

type mockHealth struct {
	report health.Report
}

func (m *mockHealth) Check(_ context.Context) health.Report { return m.report }

func newTestRouter(f *mockFacade, h *mockHealth, apiKeys ...string) http.Handler {
	if h == nil {
		h = &mockHealth{report: health.Report{Status: health.Healthy}}
	}
	return NewServer(f, h, zap.NewNop()).Router(apiKeys)
}

// --- Tests ---

func TestRecommend_OK(t *testing.T) {
	f := &mockFacade{result: domain.PipelineResult{
		Query:            "cozy mystery",
		Answer:           "* **The Hollow Door** fits.",
		RecommendedBooks: []domain.Book{{Title: "The Hollow Door"}},
		Mood:             domain.MoodNeutral,
	}}
	router := newTestRouter(f, nil)

	body := `{"query": "cozy mystery", "style": "friendly", "use_mood": true}`
	req := httptest.NewRequest("POST", "/recommend", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
	if f.lastQuery != "cozy mystery" || f.lastOpts.Style != "friendly" || !f.lastOpts.UseMood {
		t.Errorf("facade got query %q opts %+v", f.lastQuery, f.lastOpts)
	}

	var resp domain.PipelineResult
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.RecommendedBooks) != 1 {
		t.Errorf("recommended_books = %+v", resp.RecommendedBooks)
	}
}

func TestRecommend_BadBody(t *testing.T) {
	router := newTestRouter(&mockFacade{}, nil)

	req := httptest.NewRequest("POST", "/recommend", strings.NewReader("{not json"))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestRecommend_SentinelMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrEmbeddingUnavailable, http.StatusBadGateway},
		{domain.ErrIndexUnavailable, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		router := newTestRouter(&mockFacade{err: tt.err}, nil)

		req := httptest.NewRequest("POST", "/recommend", strings.NewReader(`{"query": "q"}`))
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != tt.want {
			t.Errorf("%v: status = %d, want %d", tt.err, rr.Code, tt.want)
		}

		var errResp errorResponse
		if err := json.NewDecoder(rr.Body).Decode(&errResp); err != nil {
			t.Fatalf("decode error response: %v", err)
		}
		if errResp.Message == "" || strings.Contains(errResp.Message, "goroutine") {
			t.Errorf("message = %q", errResp.Message)
		}
	}
}

func TestBooks(t *testing.T) {
	router := newTestRouter(&mockFacade{titles: []string{"A", "B"}}, nil)

	req := httptest.NewRequest("GET", "/books", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Titles []string `json:"titles"`
		Count  int      `json:"count"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Count != 2 || len(resp.Titles) != 2 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestSimilar(t *testing.T) {
	f := &mockFacade{similar: []recommend.SimilarBook{
		{Book: domain.Book{Title: "Near"}, Score: 0.9},
	}}
	router := newTestRouter(f, nil)

	req := httptest.NewRequest("GET", "/books/similar?title=Near&k=5", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body.String())
	}
}

func TestSimilar_Validation(t *testing.T) {
	router := newTestRouter(&mockFacade{}, nil)

	for _, target := range []string{"/books/similar", "/books/similar?title=X&k=zero", "/books/similar?title=X&k=-1"} {
		req := httptest.NewRequest("GET", target, http.NoBody)
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, req)

		if rr.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rr.Code)
		}
	}
}

func TestSimilar_UnknownTitle(t *testing.T) {
	router := newTestRouter(&mockFacade{similarErr: domain.ErrBookNotFound}, nil)

	req := httptest.NewRequest("GET", "/books/similar?title=Nope", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

func TestStats(t *testing.T) {
	router := newTestRouter(&mockFacade{stats: map[string]int{"Dune": 3}}, nil)

	req := httptest.NewRequest("GET", "/stats", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var resp struct {
		Counts map[string]int `json:"recommendation_counts"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Counts["Dune"] != 3 {
		t.Errorf("counts = %v", resp.Counts)
	}
}

func TestHealth(t *testing.T) {
	healthy := &mockHealth{report: health.Report{Status: health.Healthy}}
	router := newTestRouter(&mockFacade{}, healthy)

	req := httptest.NewRequest("GET", "/health", http.NoBody)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("healthy: status = %d", rr.Code)
	}

	degraded := &mockHealth{report: health.Report{
		Status: health.Degraded,
		Checks: map[string]health.CheckResult{"index": health.CheckError},
	}}
	router = newTestRouter(&mockFacade{}, degraded)

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("degraded: status = %d, want 503", rr.Code)
	}
}

func TestAuth_ProtectedAndExempt(t *testing.T) {
	router := newTestRouter(&mockFacade{}, nil, "secret")

	// Protected route without a key.
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/books", http.NoBody))
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("no key: status = %d, want 401", rr.Code)
	}

	// Wrong scheme.
	req := httptest.NewRequest("GET", "/books", http.NoBody)
	req.Header.Set("Authorization", "Basic secret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong scheme: status = %d, want 401", rr.Code)
	}

	// Correct key.
	req = httptest.NewRequest("GET", "/books", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", rr.Code)
	}

	// Health is exempt.
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest("GET", "/health", http.NoBody))
	if rr.Code != http.StatusOK {
		t.Errorf("exempt health: status = %d, want 200", rr.Code)
	}
}
