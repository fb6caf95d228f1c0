package domain

import "errors"

var (
	// ErrEmptyQuery signals a blank query; recovered locally with a
	// clarification message.
	ErrEmptyQuery = errors.New("empty query")
	// ErrSafetyBlocked signals a query refused by the safety gate.
	ErrSafetyBlocked = errors.New("query blocked by safety gate")

	// ErrIndexUnavailable signals that the vector index cannot serve searches.
	ErrIndexUnavailable = errors.New("vector index unavailable")
	// ErrEmbeddingUnavailable signals an embedding provider failure.
	ErrEmbeddingUnavailable = errors.New("embedding provider unavailable")

	// ErrGenerationTimeout signals that the generation backend did not answer
	// within the configured deadline.
	ErrGenerationTimeout = errors.New("generation timed out")
	// ErrGenerationFormat signals an empty or unusable generation response.
	ErrGenerationFormat = errors.New("generation response malformed")

	// ErrDimensionMismatch signals a vector whose length differs from the
	// index dimension. Index-build time only.
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
	// ErrLengthMismatch signals vectors and metadata of different lengths.
	ErrLengthMismatch = errors.New("vectors and metadata length mismatch")

	// ErrArtifactNotFound signals a missing persistence artifact at load time.
	ErrArtifactNotFound = errors.New("index artifact not found")
	// ErrCorruptArtifact signals undecodable or disagreeing artifacts.
	ErrCorruptArtifact = errors.New("index artifact corrupt")

	// ErrBookNotFound signals a title absent from the catalog.
	ErrBookNotFound = errors.New("book not found")
)
