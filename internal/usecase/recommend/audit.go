package recommend

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// auditScoreCap bounds how many candidate scores one entry records.
const auditScoreCap = 5

// AuditLog appends one JSON line per completed interaction. Every failure
// path returns without touching the caller: a broken disk must never break
// a recommendation.
type AuditLog struct {
	mu     sync.Mutex
	path   string
	logger *zap.Logger
}

// auditEntry is the persisted record shape.
type auditEntry struct {
	Timestamp         int64     `json:"timestamp"`
	Query             string    `json:"query"`
	RetrievedTitles   []string  `json:"retrieved_titles"`
	TopScores         []float64 `json:"top_scores"`
	Context           string    `json:"context"`
	Answer            string    `json:"answer"`
	RecommendedTitles []string  `json:"recommended_titles"`
}

// NewAuditLog prepares a JSONL writer under dir. Directory creation
// failures are deferred to Append, which swallows them.
func NewAuditLog(dir string, logger *zap.Logger) *AuditLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditLog{
		path:   filepath.Join(dir, "results.jsonl"),
		logger: logger,
	}
}

// Append records one interaction, best effort.
func (a *AuditLog) Append(result domain.PipelineResult) {
	entry := auditEntry{
		Timestamp: time.Now().Unix(),
		Query:     result.Query,
		Context:   result.Context,
		Answer:    result.Answer,
	}
	for i, c := range result.Retrieved {
		if t := c.Book.Title; t != "" {
			entry.RetrievedTitles = append(entry.RetrievedTitles, t)
		}
		if i < auditScoreCap {
			entry.TopScores = append(entry.TopScores, c.Score)
		}
	}
	for _, b := range result.RecommendedBooks {
		entry.RecommendedTitles = append(entry.RecommendedTitles, b.Title)
	}

	line, err := json.Marshal(entry)
	if err != nil {
		a.logger.Warn("audit entry not serializable", zap.Error(err))
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		a.logger.Warn("audit directory unavailable", zap.Error(err))
		return
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		a.logger.Warn("audit file unavailable", zap.Error(err))
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		a.logger.Warn("audit write failed", zap.Error(err))
	}
}
