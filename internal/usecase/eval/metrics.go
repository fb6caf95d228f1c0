// Package eval measures retrieval quality against labeled fixtures.
// Titles compare by normalized form so fixtures do not have to match
// catalog punctuation exactly.
package eval

import "github.com/shelfdex/shelfdex/internal/domain"

// RecallAtK is the fraction of relevant titles found in the top k
// retrieved titles. No relevant titles yields 0.
func RecallAtK(retrieved, relevant []string, k int) float64 {
	if len(relevant) == 0 || k <= 0 {
		return 0
	}
	top := normalizedSet(truncate(retrieved, k))
	hits := 0
	for _, r := range relevant {
		if _, ok := top[domain.NormalizeTitle(r)]; ok {
			hits++
		}
	}
	return float64(hits) / float64(len(relevant))
}

// PrecisionAtK is the fraction of the top k retrieved titles that are
// relevant. The divisor is k itself, so retrieving fewer than k counts
// missing slots as misses.
func PrecisionAtK(retrieved, relevant []string, k int) float64 {
	if k <= 0 {
		return 0
	}
	rel := normalizedSet(relevant)
	hits := 0
	for _, t := range truncate(retrieved, k) {
		if _, ok := rel[domain.NormalizeTitle(t)]; ok {
			hits++
		}
	}
	return float64(hits) / float64(k)
}

// ReciprocalRank is 1/rank of the first relevant retrieved title, or 0
// when none of the retrieved titles is relevant.
func ReciprocalRank(retrieved, relevant []string) float64 {
	rel := normalizedSet(relevant)
	for i, t := range retrieved {
		if _, ok := rel[domain.NormalizeTitle(t)]; ok {
			return 1 / float64(i+1)
		}
	}
	return 0
}

func truncate(titles []string, k int) []string {
	if len(titles) > k {
		return titles[:k]
	}
	return titles
}

func normalizedSet(titles []string) map[string]struct{} {
	set := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		if key := domain.NormalizeTitle(t); key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
