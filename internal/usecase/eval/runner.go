package eval

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// Retriever is the ranked search path under evaluation.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int, rerank bool) ([]domain.RankedCandidate, error)
}

// Fixture is one labeled evaluation query.
type Fixture struct {
	Query         string   `json:"query"`
	RelevantBooks []string `json:"relevant_books"`
}

// QueryResult holds the metrics for one fixture.
type QueryResult struct {
	Query          string   `json:"query"`
	Retrieved      []string `json:"retrieved_titles"`
	RecallAtK      float64  `json:"recall_at_k"`
	PrecisionAtK   float64  `json:"precision_at_k"`
	ReciprocalRank float64  `json:"reciprocal_rank"`
}

// Report aggregates a full evaluation run.
type Report struct {
	K                  int           `json:"k"`
	Queries            []QueryResult `json:"queries"`
	MeanRecallAtK      float64       `json:"mean_recall_at_k"`
	MeanPrecisionAtK   float64       `json:"mean_precision_at_k"`
	MeanReciprocalRank float64       `json:"mean_reciprocal_rank"`
}

// LoadFixtures reads a JSON fixture file: an array of query objects.
func LoadFixtures(path string) ([]Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []Fixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return fixtures, nil
}

// Run retrieves every fixture query at depth k and scores the results.
// A retrieval failure aborts the run; partial reports are not useful.
func Run(ctx context.Context, retriever Retriever, fixtures []Fixture, k int) (Report, error) {
	if k <= 0 {
		k = 10
	}
	report := Report{K: k}

	for _, f := range fixtures {
		candidates, err := retriever.Retrieve(ctx, f.Query, k, true)
		if err != nil {
			return Report{}, fmt.Errorf("retrieve %q: %w", f.Query, err)
		}

		titles := make([]string, 0, len(candidates))
		for _, c := range candidates {
			titles = append(titles, c.Book.Title)
		}

		qr := QueryResult{
			Query:          f.Query,
			Retrieved:      titles,
			RecallAtK:      RecallAtK(titles, f.RelevantBooks, k),
			PrecisionAtK:   PrecisionAtK(titles, f.RelevantBooks, k),
			ReciprocalRank: ReciprocalRank(titles, f.RelevantBooks),
		}
		report.Queries = append(report.Queries, qr)
		report.MeanRecallAtK += qr.RecallAtK
		report.MeanPrecisionAtK += qr.PrecisionAtK
		report.MeanReciprocalRank += qr.ReciprocalRank
	}

	if n := float64(len(report.Queries)); n > 0 {
		report.MeanRecallAtK /= n
		report.MeanPrecisionAtK /= n
		report.MeanReciprocalRank /= n
	}
	return report, nil
}
