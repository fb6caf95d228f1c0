package retrieval

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// Soft numeric constraints recognized in free text. The first matching
// pattern per field wins; anything unparseable leaves the field unset.
var (
	maxPagesWordy  = regexp.MustCompile(`(?:under|below|less than)\s+(\d+)\s+pages`)
	maxPagesSigned = regexp.MustCompile(`<\s*(\d+)\s*pages`)
	minPagesWordy  = regexp.MustCompile(`(?:over|more than|at least)\s+(\d+)\s+pages`)
	minPagesSigned = regexp.MustCompile(`>\s*(\d+)\s*pages`)

	minRatingStars  = regexp.MustCompile(`(?:above|over|at least)\s+(\d+(?:\.\d+)?)\s+stars?`)
	minRatingWord   = regexp.MustCompile(`rat(?:ing|ed)\s+(?:above|over|at least)\s+(\d+(?:\.\d+)?)`)
	minRatingSigned = regexp.MustCompile(`>=\s*(\d+(?:\.\d+)?)\s*stars?`)
)

// ParseFilters extracts soft numeric constraints from a natural-language
// query. Pure function: same input, same output, and never an error;
// numeric parse failures simply leave the field unset.
func ParseFilters(query string) domain.QueryFilters {
	q := strings.ToLower(query)
	var f domain.QueryFilters

	if n, ok := firstInt(q, maxPagesWordy, maxPagesSigned); ok {
		f.MaxPages = &n
	}
	if n, ok := firstInt(q, minPagesWordy, minPagesSigned); ok {
		f.MinPages = &n
	}
	if r, ok := firstFloat(q, minRatingStars, minRatingWord, minRatingSigned); ok {
		f.MinRating = &r
	}
	return f
}

func firstInt(q string, patterns ...*regexp.Regexp) (int, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}

func firstFloat(q string, patterns ...*regexp.Regexp) (float64, bool) {
	for _, re := range patterns {
		m := re.FindStringSubmatch(q)
		if m == nil {
			continue
		}
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			return v, true
		}
	}
	return 0, false
}
