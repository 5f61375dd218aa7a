package badger

import (
	"fmt"

	"github.com/poiesic/agrivoice/core"
)

// Key prefixes for different data types
const (
	embeddingPrefix = "embcache"
	manifestKey     = "manifest:corpus"
)

// makeEmbeddingModelPrefix generates the prefix shared by all entries of a model.
// The model name is hashed so names containing ':' cannot overlap.
// Format: prefix:modelID:
func makeEmbeddingModelPrefix(model string) []byte {
	return []byte(fmt.Sprintf("%s:%d:", embeddingPrefix, core.IDFromContent(model)))
}

// makeEmbeddingKey generates the key for the embedding of text under model.
// Format: prefix:modelID:textID
func makeEmbeddingKey(model, text string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%d", embeddingPrefix, core.IDFromContent(model), core.IDFromContent(text)))
}

// makeEmbeddingScanPrefix returns the prefix for one model, or for every
// model when model is empty.
func makeEmbeddingScanPrefix(model string) []byte {
	if model == "" {
		return []byte(embeddingPrefix + ":")
	}
	return makeEmbeddingModelPrefix(model)
}
