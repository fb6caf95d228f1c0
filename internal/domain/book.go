package domain

import "strings"

// Book is a catalog item. Books are created at index-build time and never
// mutated afterwards; every position in the vector index maps to exactly
// one Book.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Genres      []string `json:"genres,omitempty"`
	Rating      *float64 `json:"rating,omitempty"` // 0..5, nil when unknown
	Pages       *int     `json:"pages,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Description string   `json:"description,omitempty"` // retrieval text used for embedding
}

// RatingOrZero returns the rating, treating a missing rating as 0.
func (b Book) RatingOrZero() float64 {
	if b.Rating == nil {
		return 0
	}
	return *b.Rating
}

// NormalizeTitle canonicalizes a title for equality matching:
// lower-cased, surrounding punctuation stripped, inner whitespace collapsed.
func NormalizeTitle(title string) string {
	t := strings.TrimSpace(strings.ToLower(title))
	t = strings.Trim(t, `"'.,:;!?*_-`)
	return strings.Join(strings.Fields(t), " ")
}
