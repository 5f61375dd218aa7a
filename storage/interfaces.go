package storage

import (
	"context"

	"github.com/poiesic/agrivoice/core"
)

// EmbeddingCache persists text embeddings keyed by model and text.
// Vectors from different models never mix.
// Implementations must be thread-safe and support concurrent access.
type EmbeddingCache interface {
	// GetEmbeddings looks up the vectors for texts.
	// The result is index-aligned with texts; misses are nil entries.
	GetEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error)

	// PutEmbeddings stores vectors for texts, overwriting existing entries.
	// texts and vectors must be the same length.
	PutEmbeddings(ctx context.Context, model string, texts []string, vectors [][]float32) error

	// ClearEmbeddings removes every entry for model, or for all models when
	// model is empty. Returns the number of entries removed.
	ClearEmbeddings(ctx context.Context, model string) (int, error)

	// CountEmbeddings returns the number of entries stored for model, or for
	// all models when model is empty.
	CountEmbeddings(ctx context.Context, model string) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}

// ManifestRepository stores what the embedding cache was last built for.
type ManifestRepository interface {
	// SaveManifest persists the manifest, stamping UpdatedAt.
	SaveManifest(ctx context.Context, manifest *core.Manifest) error

	// LoadManifest returns the stored manifest.
	// Returns nil, nil if no manifest exists.
	LoadManifest(ctx context.Context) (*core.Manifest, error)
}
