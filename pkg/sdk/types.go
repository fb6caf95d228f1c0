package sdk

// Book is one catalog entry as returned by the API.
type Book struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Author      string   `json:"author"`
	Genres      []string `json:"genres,omitempty"`
	Rating      *float64 `json:"rating,omitempty"`
	Pages       *int     `json:"pages,omitempty"`
	Year        *int     `json:"year,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Description string   `json:"description,omitempty"`
}

// Turn is one prior conversation message, role "user" or "assistant".
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// RecommendRequest is the POST /recommend body.
type RecommendRequest struct {
	Query         string `json:"query"`
	Style         string `json:"style,omitempty"`
	UseMood       bool   `json:"use_mood,omitempty"`
	Explain       bool   `json:"explain,omitempty"`
	SecondOpinion bool   `json:"second_opinion,omitempty"`
	History       []Turn `json:"history,omitempty"`
}

// RankedCandidate is one scored retrieval hit.
type RankedCandidate struct {
	Book       Book    `json:"book"`
	Distance   float64 `json:"distance"`
	Similarity float64 `json:"similarity"`
	Score      float64 `json:"score"`
}

// RecommendResult mirrors the server's pipeline result. RecommendedBooks
// is always a subset of RetrievedBooks.
type RecommendResult struct {
	Query            string            `json:"query"`
	Retrieved        []RankedCandidate `json:"retrieved"`
	RetrievedBooks   []Book            `json:"retrieved_books"`
	RecommendedBooks []Book            `json:"recommended_books"`
	Context          string            `json:"context"`
	Answer           string            `json:"answer"`
	RawModelOutput   string            `json:"raw_model_output,omitempty"`
	Style            string            `json:"style,omitempty"`
	Mood             string            `json:"mood,omitempty"`
}

// SimilarBook is one neighbor from a title-based lookup.
type SimilarBook struct {
	Book  Book    `json:"book"`
	Score float64 `json:"score"`
}

// HealthReport is the GET /health body. Status is "ok" or "degraded".
type HealthReport struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
