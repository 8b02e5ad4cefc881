package domain

import "errors"

// Errors returned by the index and query pipeline. Callers match them with
// errors.Is; the concrete cause is wrapped alongside.
var (
	// ErrIndexUnavailable indicates the corpus could not be read for a required
	// build, or the index artifacts are missing when a load was requested.
	ErrIndexUnavailable = errors.New("index unavailable")

	// ErrIndexCorrupt indicates persisted artifacts exist but fail to load or
	// do not agree with each other.
	ErrIndexCorrupt = errors.New("index corrupt")

	// ErrEmbeddingFailure indicates the embedding model failed.
	ErrEmbeddingFailure = errors.New("embedding failure")

	// ErrGenerationFailure indicates the language model failed.
	ErrGenerationFailure = errors.New("generation failure")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")
)
