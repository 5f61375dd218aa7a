package scheme

import "errors"

var (
	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrEmbedderRequired is returned when the provider has no embedder.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrCorpusRequired is returned when Query is called without a corpus.
	ErrCorpusRequired = errors.New("corpus required")

	// ErrInvalidMaxAttempts is returned when a retry budget is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be greater than 0")
)
