package retrieval

import (
	"fmt"
	"strings"
)

// KeywordTable maps a category name to the words that signal it. Tables are
// loaded once at startup (config may override the defaults) and validated so
// a category can never be silently unmatched because its word list is empty.
type KeywordTable map[string][]string

// Validate rejects tables with empty categories or empty word lists.
func (t KeywordTable) Validate() error {
	if len(t) == 0 {
		return fmt.Errorf("keyword table is empty")
	}
	for category, words := range t {
		if len(words) == 0 {
			return fmt.Errorf("keyword category %q has no words", category)
		}
		for _, w := range words {
			if strings.TrimSpace(w) == "" {
				return fmt.Errorf("keyword category %q contains a blank word", category)
			}
		}
	}
	return nil
}

// DefaultThemes returns the built-in theme keyword groups.
func DefaultThemes() KeywordTable {
	return KeywordTable{
		"mystery":          {"mystery", "detective", "murder", "crime", "whodunit"},
		"fantasy":          {"fantasy", "magic", "dragon", "wizard", "sorcery"},
		"academy":          {"academy", "school", "university", "boarding", "campus"},
		"politics":         {"politics", "political", "empire", "rebellion", "intrigue"},
		"scifi":            {"sci-fi", "science", "space", "galaxy", "starship", "alien"},
		"post-apocalyptic": {"post-apocalyptic", "apocalypse", "wasteland", "survivors", "dystopian"},
		"found-family":     {"found-family", "crew", "companions", "misfits", "belonging"},
		"historical":       {"historical", "history", "war", "victorian", "medieval"},
		"romance":          {"romance", "love", "romantic", "relationship"},
	}
}

// DefaultTones returns the built-in tone keyword groups.
func DefaultTones() KeywordTable {
	return KeywordTable{
		"cozy":        {"cozy", "comforting", "gentle", "heartwarming", "wholesome"},
		"dark":        {"dark", "grim", "bleak", "brutal", "disturbing"},
		"atmospheric": {"atmospheric", "moody", "haunting", "evocative"},
		"fast-paced":  {"fast-paced", "thrilling", "gripping", "page-turner"},
		"slow-burn":   {"slow-burn", "slow", "reflective", "meditative", "quiet"},
	}
}

// matchedCategories counts the categories with at least one word present in
// both texts. Word presence is substring containment over lower-cased text,
// same as the mood heuristic.
func matchedCategories(table KeywordTable, query, text string) int {
	count := 0
	for _, words := range table {
		if containsAny(query, words) && containsAny(text, words) {
			count++
		}
	}
	return count
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
