package sdk

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	json "github.com/goccy/go-json"
)

func TestNew_Validation(t *testing.T) {
	if _, err := New(""); err == nil {
		t.Error("New(\"\") should fail")
	}
	c, err := New("http://localhost:8080/")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.baseURL != "http://localhost:8080" {
		t.Errorf("baseURL = %q, trailing slash not stripped", c.baseURL)
	}
}

func TestRecommend(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/recommend" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}

		var req RecommendRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "space opera" || !req.UseMood {
			t.Errorf("request = %+v", req)
		}

		_ = json.NewEncoder(w).Encode(RecommendResult{
			Query:            req.Query,
			Answer:           "* **Leviathan Falls** fits.",
			RecommendedBooks: []Book{{Title: "Leviathan Falls"}},
		})
	}))
	defer server.Close()

	client, err := New(server.URL, WithAPIKey("test-key"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	res, err := client.Recommend(context.Background(), RecommendRequest{
		Query:   "space opera",
		UseMood: true,
	})
	if err != nil {
		t.Fatalf("Recommend: %v", err)
	}
	if len(res.RecommendedBooks) != 1 || res.RecommendedBooks[0].Title != "Leviathan Falls" {
		t.Errorf("result = %+v", res)
	}
}

func TestSimilar_QueryParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/books/similar" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("title") != "Dune" || r.URL.Query().Get("k") != "3" {
			t.Errorf("query = %s", r.URL.RawQuery)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"title":   "Dune",
			"similar": []SimilarBook{{Book: Book{Title: "Dune Messiah"}, Score: 0.91}},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL)
	similar, err := client.Similar(context.Background(), "Dune", 3)
	if err != nil {
		t.Fatalf("Similar: %v", err)
	}
	if len(similar) != 1 || similar[0].Book.Title != "Dune Messiah" {
		t.Errorf("similar = %+v", similar)
	}
}

func TestSimilar_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"code": "not_found", "message": "book not found",
		})
	}))
	defer server.Close()

	client, _ := New(server.URL)
	_, err := client.Similar(context.Background(), "Nope", 0)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsNotFound(err) {
		t.Errorf("IsNotFound = false for %v", err)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Code != "not_found" {
		t.Errorf("err = %v", err)
	}
}

func TestBooksAndStats(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/books":
			_ = json.NewEncoder(w).Encode(map[string]any{"titles": []string{"A", "B"}, "count": 2})
		case "/stats":
			_ = json.NewEncoder(w).Encode(map[string]any{"recommendation_counts": map[string]int{"A": 7}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer server.Close()

	client, _ := New(server.URL)

	titles, err := client.Books(context.Background())
	if err != nil {
		t.Fatalf("Books: %v", err)
	}
	if len(titles) != 2 {
		t.Errorf("titles = %v", titles)
	}

	stats, err := client.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats["A"] != 7 {
		t.Errorf("stats = %v", stats)
	}
}

func TestHealth_Degraded(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(HealthReport{
			Status: "degraded",
			Checks: map[string]string{"index": "error"},
		})
	}))
	defer server.Close()

	client, _ := New(server.URL)
	report, err := client.Health(context.Background())
	if err == nil {
		t.Fatal("expected error for degraded service")
	}
	if report.Status != "degraded" || report.Checks["index"] != "error" {
		t.Errorf("report = %+v", report)
	}
}
