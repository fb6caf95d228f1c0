package pipeline

import (
	"fmt"
	"strings"

	"github.com/shelfdex/shelfdex/internal/domain"
)

const (
	maxContextDocs  = 5
	maxSnippetChars = 400
)

// formatContext renders candidates as bounded fixed-field text blocks for
// the generation backend. Internal ranking scores are deliberately absent:
// the generator must argue from metadata, not from our numbers.
func formatContext(candidates []domain.RankedCandidate) string {
	var b strings.Builder
	for i, c := range candidates {
		if i >= maxContextDocs {
			break
		}
		book := c.Book

		genres := "Unknown"
		if len(book.Genres) > 0 {
			genres = strings.Join(book.Genres, ", ")
		}
		rating := "N/A"
		if book.Rating != nil {
			rating = fmt.Sprintf("%.2f", *book.Rating)
		}

		fmt.Fprintf(&b, "[BOOK %d]\n", i+1)
		fmt.Fprintf(&b, "Title: %s\n", book.Title)
		fmt.Fprintf(&b, "Author: %s\n", book.Author)
		fmt.Fprintf(&b, "Genres: %s\n", genres)
		fmt.Fprintf(&b, "Rating: %s\n", rating)
		fmt.Fprintf(&b, "Description: %s\n\n", truncateSnippet(book.Description, maxSnippetChars))
	}
	return strings.TrimRight(b.String(), "\n")
}

// truncateSnippet cuts at a word boundary and marks the cut with an
// ellipsis.
func truncateSnippet(text string, limit int) string {
	t := strings.TrimSpace(text)
	if len(t) <= limit {
		return t
	}
	cut := t[:limit]
	if i := strings.LastIndex(cut, " "); i > 0 {
		cut = cut[:i]
	}
	return cut + "..."
}
