package domain

// SearchHit is the raw output of a nearest-neighbor query, before reranking.
type SearchHit struct {
	Book     Book
	Distance float64 // L2 distance, >= 0, ascending = more similar
}

// RankedCandidate is a search hit after the reranking pass. Score is the
// final blended ranking value in [0, 1]; Similarity is the monotone
// transform of Distance shared by all candidates of one query.
type RankedCandidate struct {
	Book       Book    `json:"book"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

// QueryFilters are soft numeric constraints parsed out of the query text.
// They attenuate candidate scores and never hard-exclude anything.
type QueryFilters struct {
	MinPages  *int
	MaxPages  *int
	MinRating *float64
}

// IsZero reports whether no constraint was parsed.
func (f QueryFilters) IsZero() bool {
	return f.MinPages == nil && f.MaxPages == nil && f.MinRating == nil
}

// VectorIndexProvider is the single capability every retriever variant
// depends on: k-nearest-neighbor search plus read-only catalog access.
type VectorIndexProvider interface {
	// Search returns up to k hits ordered by ascending distance.
	// An empty index yields an empty slice, never an error.
	Search(vector []float32, k int) []SearchHit

	// Len returns the number of indexed books.
	Len() int

	// Dim returns the embedding dimension of the index.
	Dim() int

	// Books returns a copy of all catalog metadata in index order.
	Books() []Book
}
