package eval

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/shelfdex/shelfdex/internal/domain"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestRecallAtK(t *testing.T) {
	retrieved := []string{"A", "B", "C", "D"}

	if got := RecallAtK(retrieved, []string{"A", "C"}, 3); !near(got, 1.0) {
		t.Errorf("recall = %v, want 1.0", got)
	}
	if got := RecallAtK(retrieved, []string{"A", "D"}, 3); !near(got, 0.5) {
		t.Errorf("recall = %v, want 0.5 (D is outside the top 3)", got)
	}
	if got := RecallAtK(retrieved, nil, 3); got != 0 {
		t.Errorf("recall with no relevant titles = %v, want 0", got)
	}
}

func TestRecallAtK_NormalizedMatching(t *testing.T) {
	retrieved := []string{"The Hollow Door"}
	if got := RecallAtK(retrieved, []string{"the hollow door!"}, 1); !near(got, 1.0) {
		t.Errorf("recall = %v, want 1.0 for a punctuation-only difference", got)
	}
}

func TestPrecisionAtK(t *testing.T) {
	retrieved := []string{"A", "B", "C"}

	if got := PrecisionAtK(retrieved, []string{"A", "B"}, 2); !near(got, 1.0) {
		t.Errorf("precision = %v, want 1.0", got)
	}
	if got := PrecisionAtK(retrieved, []string{"A"}, 3); !near(got, 1.0/3.0) {
		t.Errorf("precision = %v, want 1/3", got)
	}
	// Retrieving fewer than k counts the empty slots against precision.
	if got := PrecisionAtK([]string{"A"}, []string{"A"}, 4); !near(got, 0.25) {
		t.Errorf("precision = %v, want 0.25", got)
	}
}

func TestReciprocalRank(t *testing.T) {
	if got := ReciprocalRank([]string{"X", "Y", "A"}, []string{"A"}); !near(got, 1.0/3.0) {
		t.Errorf("rr = %v, want 1/3", got)
	}
	if got := ReciprocalRank([]string{"A"}, []string{"A"}); !near(got, 1.0) {
		t.Errorf("rr = %v, want 1.0", got)
	}
	if got := ReciprocalRank([]string{"X", "Y"}, []string{"A"}); got != 0 {
		t.Errorf("rr = %v, want 0 when nothing relevant is retrieved", got)
	}
}

type fixedRetriever struct {
	byQuery map[string][]string
}

func (f *fixedRetriever) Retrieve(_ context.Context, query string, _ int, _ bool) ([]domain.RankedCandidate, error) {
	var out []domain.RankedCandidate
	for _, title := range f.byQuery[query] {
		out = append(out, domain.RankedCandidate{Book: domain.Book{Title: title}})
	}
	return out, nil
}

func TestRun(t *testing.T) {
	r := &fixedRetriever{byQuery: map[string][]string{
		"perfect": {"A", "B"},
		"miss":    {"X", "Y"},
	}}
	fixtures := []Fixture{
		{Query: "perfect", RelevantBooks: []string{"A", "B"}},
		{Query: "miss", RelevantBooks: []string{"A"}},
	}

	report, err := Run(context.Background(), r, fixtures, 2)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(report.Queries) != 2 {
		t.Fatalf("queries = %d, want 2", len(report.Queries))
	}
	if !near(report.MeanRecallAtK, 0.5) {
		t.Errorf("mean recall = %v, want 0.5", report.MeanRecallAtK)
	}
	if !near(report.MeanPrecisionAtK, 0.5) {
		t.Errorf("mean precision = %v, want 0.5", report.MeanPrecisionAtK)
	}
	if !near(report.MeanReciprocalRank, 0.5) {
		t.Errorf("mean rr = %v, want 0.5", report.MeanReciprocalRank)
	}
}

func TestLoadFixtures(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "eval_queries.json")
	content := `[{"query": "cozy fantasy romance", "relevant_books": ["Book A"]}]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	fixtures, err := LoadFixtures(path)
	if err != nil {
		t.Fatalf("LoadFixtures: %v", err)
	}
	if len(fixtures) != 1 || fixtures[0].Query != "cozy fantasy romance" {
		t.Errorf("fixtures = %+v", fixtures)
	}

	if _, err := LoadFixtures(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("missing file must error")
	}
}
