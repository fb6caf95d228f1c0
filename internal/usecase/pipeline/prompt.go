package pipeline

import (
	"fmt"
	"strings"

	"github.com/shelfdex/shelfdex/internal/domain"
)

// historyTurns caps how much prior conversation reaches the prompt.
const historyTurns = 6

// Turn is one prior conversation message.
type Turn struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

const systemBase = "You are a book recommendation assistant operating on top of " +
	"a retrieval system. You must ONLY recommend books from the provided " +
	"retrieved list. Do NOT invent authors, titles, plots, or metadata. " +
	"If no books match, state this clearly and suggest the closest fits. " +
	"Your answers must remain grounded in the retrieved context."

// buildSystemPrompt combines the grounding rules with the style, mood,
// and mode directives for this request.
func buildSystemPrompt(d directives, mood domain.Mood, explain, secondOpinion bool) string {
	parts := []string{systemBase}

	switch d.personality {
	case "friendly":
		parts = append(parts, "Use a warm, friendly, and accessible tone.")
	case "academic":
		parts = append(parts, "Use a formal and academically appropriate tone.")
	}

	switch d.terseness {
	case "short":
		parts = append(parts, "Keep answers extremely concise (1-2 sentences per book).")
	case "detailed":
		parts = append(parts, "Provide detailed explanations (3-4 sentences per book).")
	}

	switch mood {
	case domain.MoodSad:
		parts = append(parts, "The reader seems to be feeling low; acknowledge that gently and favor comforting or uplifting picks where the retrieved list allows.")
	case domain.MoodHappy:
		parts = append(parts, "The reader is in high spirits; match their energy.")
	}

	if explain {
		parts = append(parts, "For every recommended book, explain which parts of the request it satisfies.")
	}
	if secondOpinion {
		parts = append(parts, "After the main picks, add one alternative from the list the reader might not expect, marked as a second opinion.")
	}

	return strings.Join(parts, " ")
}

// buildUserPrompt assembles history, query, context, and the task
// instruction. The bullet-bold answer format is required so recommended
// titles can be reconciled against the retrieved set afterwards.
func buildUserPrompt(query, context string, history []Turn) string {
	var b strings.Builder

	if len(history) > 0 {
		start := 0
		if len(history) > historyTurns {
			start = len(history) - historyTurns
		}
		b.WriteString("CONVERSATION SO FAR:\n")
		for _, turn := range history[start:] {
			fmt.Fprintf(&b, "%s: %s\n", strings.ToUpper(turn.Role), turn.Content)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "USER QUERY:\n%s\n\n", query)

	if context != "" {
		fmt.Fprintf(&b, "RETRIEVED BOOKS (you MUST recommend only from these):\n%s\n\n", context)
	} else {
		b.WriteString("RETRIEVED BOOKS: none were found for this query.\n\n")
	}

	b.WriteString("TASK:\n" +
		"From the retrieved books, recommend 2-3 that best match the query. " +
		"Start each recommendation on its own line as: * **Title** followed by " +
		"a short explanation. Only mention books that appear in the list above.")

	return b.String()
}
