// Package httpapi is the chi HTTP surface over the recommendation facade.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
	"github.com/shelfdex/shelfdex/internal/metrics"
	"github.com/shelfdex/shelfdex/internal/usecase/health"
	"github.com/shelfdex/shelfdex/internal/usecase/pipeline"
	"github.com/shelfdex/shelfdex/internal/usecase/recommend"
)

// Recommender is the facade surface the API depends on.
type Recommender interface {
	Recommend(ctx context.Context, query string, opts recommend.Options) (domain.PipelineResult, error)
	Titles() []string
	Stats() map[string]int
	SimilarByTitle(ctx context.Context, title string, k int) ([]recommend.SimilarBook, error)
}

// HealthChecker aggregates component availability.
type HealthChecker interface {
	Check(ctx context.Context) health.Report
}

// Server holds the API dependencies.
type Server struct {
	facade Recommender
	health HealthChecker
	logger *zap.Logger
}

// NewServer creates the HTTP API server.
func NewServer(facade Recommender, healthSvc HealthChecker, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{facade: facade, health: healthSvc, logger: logger}
}

// Router assembles the full middleware chain and routes. apiKeys empty
// disables authentication.
func (s *Server) Router(apiKeys []string) chi.Router {
	r := chi.NewRouter()
	r.Use(jsonRecoverer(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Post("/recommend", s.handleRecommend)
	r.Get("/books", s.handleBooks)
	r.Get("/books/similar", s.handleSimilar)
	r.Get("/stats", s.handleStats)
	r.Get("/health", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	return r
}

// recommendRequest is the POST /recommend body.
type recommendRequest struct {
	Query         string          `json:"query"`
	Style         string          `json:"style"`
	UseMood       bool            `json:"use_mood"`
	Explain       bool            `json:"explain"`
	SecondOpinion bool            `json:"second_opinion"`
	History       []pipeline.Turn `json:"history"`
}

func (s *Server) handleRecommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	result, err := s.facade.Recommend(r.Context(), req.Query, recommend.Options{
		Style:         req.Style,
		UseMood:       req.UseMood,
		Explain:       req.Explain,
		SecondOpinion: req.SecondOpinion,
		History:       req.History,
	})
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	metrics.RecommendationsTotal.Add(float64(len(result.RecommendedBooks)))
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBooks(w http.ResponseWriter, r *http.Request) {
	titles := s.facade.Titles()
	if titles == nil {
		titles = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"titles": titles, "count": len(titles)})
}

func (s *Server) handleSimilar(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if title == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "title query parameter is required")
		return
	}

	k := 10
	if raw := r.URL.Query().Get("k"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "validation_failed", "k must be a positive integer")
			return
		}
		k = parsed
	}

	similar, err := s.facade.SimilarByTitle(r.Context(), title, k)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	if similar == nil {
		similar = []recommend.SimilarBook{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"title": title, "similar": similar})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"recommendation_counts": s.facade.Stats()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != health.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, report)
}

// handleDomainError maps sentinel errors to HTTP statuses. Raw internal
// error text never reaches a client.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))

	switch {
	case errors.Is(err, domain.ErrBookNotFound):
		writeError(w, http.StatusNotFound, "book_not_found", domain.ErrBookNotFound.Error())
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		writeError(w, http.StatusBadGateway, "embedding_unavailable", domain.ErrEmbeddingUnavailable.Error())
	case errors.Is(err, domain.ErrIndexUnavailable):
		writeError(w, http.StatusServiceUnavailable, "index_unavailable", domain.ErrIndexUnavailable.Error())
	default:
		s.logger.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
