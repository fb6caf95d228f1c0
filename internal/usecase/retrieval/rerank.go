package retrieval

import (
	"math"
	"sort"
	"strings"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// Fixed blend weights. They sum to 1.0, so the combined score stays in
// [0, 1] before penalties; penalties only ever shrink it.
const (
	weightSimilarity = 0.60
	weightRating     = 0.15
	weightGenre      = 0.10
	weightTheme      = 0.10
	weightTone       = 0.05

	// Soft filter violations attenuate, never exclude.
	filterPenalty = 0.6
	// A cozy request paired with dark candidate text. The reverse direction
	// is intentionally not penalized.
	toneMismatchPenalty = 0.8

	themeCap = 3
	toneCap  = 2
)

// similarityFromDistance converts an L2 distance into a similarity in
// (0, 1]. 1/(1+d) is used rather than 1-d: it stays positive for any
// distance, and within one query any monotone transform ranks identically.
func similarityFromDistance(distance float64) float64 {
	return 1.0 / (1.0 + distance)
}

// rerank scores each hit with the five-signal weighted sum, applies soft
// filter and tone penalties, and sorts by descending score. The sort is
// stable: ties keep the original ascending-distance order, so identical
// inputs always produce identical output order.
func (s *Service) rerank(query string, hits []domain.SearchHit, filters domain.QueryFilters) []domain.RankedCandidate {
	q := strings.ToLower(query)
	qTokens := tokenSet(q)

	out := make([]domain.RankedCandidate, 0, len(hits))
	for _, hit := range hits {
		book := hit.Book
		text := strings.ToLower(book.Description)

		similarity := similarityFromDistance(hit.Distance)
		ratingNorm := clamp01(book.RatingOrZero() / 5.0)
		genreNorm := genreOverlap(qTokens, book.Genres)
		themeNorm := math.Min(1.0, float64(matchedCategories(s.themes, q, text))/themeCap)
		toneNorm := math.Min(1.0, float64(matchedCategories(s.tones, q, text))/toneCap)

		score := weightSimilarity*similarity +
			weightRating*ratingNorm +
			weightGenre*genreNorm +
			weightTheme*themeNorm +
			weightTone*toneNorm

		score *= penalties(book, filters)

		if containsAny(q, s.tones["cozy"]) && containsAny(text, s.tones["dark"]) {
			score *= toneMismatchPenalty
		}

		out = append(out, domain.RankedCandidate{
			Book:       book,
			Distance:   hit.Distance,
			Similarity: similarity,
			Score:      score,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})
	return out
}

// penalties multiplies one ×0.6 factor per violated soft filter. The
// factors stack independently. Books without page data are never penalized
// on page filters.
func penalties(book domain.Book, filters domain.QueryFilters) float64 {
	factor := 1.0
	if filters.MinRating != nil && book.RatingOrZero() < *filters.MinRating {
		factor *= filterPenalty
	}
	if book.Pages != nil {
		if filters.MaxPages != nil && *book.Pages > *filters.MaxPages {
			factor *= filterPenalty
		}
		if filters.MinPages != nil && *book.Pages < *filters.MinPages {
			factor *= filterPenalty
		}
	}
	return factor
}

// genreOverlap is |query tokens ∩ genre tokens| / (|query tokens| + 1).
// Genre tokens come from lower-cased whitespace splitting of the labels.
func genreOverlap(qTokens map[string]struct{}, genres []string) float64 {
	if len(qTokens) == 0 || len(genres) == 0 {
		return 0
	}
	genreTokens := tokenSet(strings.ToLower(strings.Join(genres, " ")))
	overlap := 0
	for tok := range genreTokens {
		if _, ok := qTokens[tok]; ok {
			overlap++
		}
	}
	return float64(overlap) / float64(len(qTokens)+1)
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.Fields(text)
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
