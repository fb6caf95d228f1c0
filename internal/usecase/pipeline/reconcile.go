package pipeline

import (
	"regexp"
	"strings"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// A claimed recommendation: a leading bullet (asterisk, dash, or dot)
// followed by a bolded title segment.
var titleMarker = regexp.MustCompile(`(?m)^\s*[*\-•]\s*\*\*(.+?)\*\*`)

// extractClaimedTitles pulls the titles the generated answer claims to
// recommend, deduplicated case-insensitively in first-seen order.
func extractClaimedTitles(answer string) []string {
	var titles []string
	seen := make(map[string]struct{})

	for _, m := range titleMarker.FindAllStringSubmatch(answer, -1) {
		title := strings.TrimSpace(m[1])
		// Bold segments sometimes include the author; the title is the part
		// before " by ".
		if i := strings.Index(strings.ToLower(title), " by "); i > 0 {
			title = strings.TrimSpace(title[:i])
		}
		key := domain.NormalizeTitle(title)
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		titles = append(titles, title)
	}
	return titles
}

// reconcile matches claimed titles against the retrieved candidate set by
// normalized title equality. Titles the generator invented match nothing
// and are silently dropped: the pipeline never reports a book it cannot
// verify came from the catalog.
func reconcile(answer string, retrieved []domain.RankedCandidate) []domain.Book {
	byTitle := make(map[string]domain.Book, len(retrieved))
	for _, c := range retrieved {
		key := domain.NormalizeTitle(c.Book.Title)
		if _, ok := byTitle[key]; !ok {
			byTitle[key] = c.Book
		}
	}

	var books []domain.Book
	for _, claimed := range extractClaimedTitles(answer) {
		if book, ok := byTitle[domain.NormalizeTitle(claimed)]; ok {
			books = append(books, book)
		}
	}
	return books
}
