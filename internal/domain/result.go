package domain

// PipelineResult is the structured outcome of one recommendation request.
// RecommendedBooks is always a subset of RetrievedBooks: a title the
// generator mentions is only reported after it has been reconciled against
// the retrieved candidate set.
type PipelineResult struct {
	Query            string            `json:"query"`
	Retrieved        []RankedCandidate `json:"retrieved"`
	RetrievedBooks   []Book            `json:"retrieved_books"`
	RecommendedBooks []Book            `json:"recommended_books"`
	Context          string            `json:"context"`
	Answer           string            `json:"answer"`
	RawModelOutput   string            `json:"raw_model_output,omitempty"`
	Style            string            `json:"style,omitempty"`
	Mood             Mood              `json:"mood,omitempty"`
}
