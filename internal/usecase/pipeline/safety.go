package pipeline

import "strings"

// Phrases that divert a request away from the catalog entirely. The check
// runs before retrieval and generation; nothing downstream ever sees a
// blocked query.
var blockedPhrases = []string{
	"self-harm",
	"self harm",
	"hurt myself",
	"kill myself",
	"end my life",
	"suicide",
}

// refusalMessage is the supportive redirect returned for blocked queries.
const refusalMessage = "I'm not able to help with that here, but you don't have " +
	"to go through this alone. Please consider reaching out to someone you " +
	"trust or a local support line — in many countries you can call or text 988."

// blockedBySafetyGate reports whether the query contains any blocked phrase.
func blockedBySafetyGate(query string) bool {
	q := strings.ToLower(query)
	for _, phrase := range blockedPhrases {
		if strings.Contains(q, phrase) {
			return true
		}
	}
	return false
}
