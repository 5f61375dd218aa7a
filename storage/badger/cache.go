// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/agrivoice/storage"
)

// EmbeddingCache implements storage.EmbeddingCache for BadgerDB.
type EmbeddingCache struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// newEmbeddingCache is an internal constructor that returns the concrete type.
func newEmbeddingCache(backend *Backend) (*EmbeddingCache, error) {
	if backend == nil {
		return nil, errors.New("backend is required")
	}
	return &EmbeddingCache{
		backend: backend,
		logger:  slog.Default().With("component", "embedding-cache"),
	}, nil
}

// NewEmbeddingCache creates a new embedding cache on backend.
//
// Returns storage.EmbeddingCache interface to enforce abstraction.
func NewEmbeddingCache(backend *Backend) (storage.EmbeddingCache, error) {
	return newEmbeddingCache(backend)
}

// GetEmbeddings looks up the vectors for texts. Misses are nil entries.
// An entry whose stored text differs from the requested text is a miss.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	vectors := make([][]float32, len(texts))
	hits := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeEmbeddingKey(model, text))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				stored, vec, err := storage.UnmarshalCacheEntry(val)
				if err != nil {
					c.logger.Warn("skipping unreadable cache entry", "index", i, "error", err)
					return nil
				}
				if stored != text {
					c.logger.Debug("embedding key collision", "index", i)
					return nil
				}
				vectors[i] = vec
				hits++
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("embedding cache lookup", "model", model, "requested", len(texts), "hits", hits)
	return vectors, nil
}

// PutEmbeddings stores vectors for texts, overwriting existing entries.
func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, model string, texts []string, vectors [][]float32) error {
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(texts) != len(vectors) {
		return fmt.Errorf("%w: %d texts, %d vectors", storage.ErrLengthMismatch, len(texts), len(vectors))
	}
	if len(texts) == 0 {
		return nil
	}

	wb := c.backend.NewWriteBatch()
	defer wb.Cancel()
	for i, text := range texts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := wb.Set(makeEmbeddingKey(model, text), storage.MarshalCacheEntry(text, vectors[i])); err != nil {
			return err
		}
	}
	if err := wb.Flush(); err != nil {
		return err
	}

	c.logger.Debug("stored embeddings", "model", model, "count", len(texts))
	return nil
}

// ClearEmbeddings removes every entry for model, or all entries when model is empty.
func (c *EmbeddingCache) ClearEmbeddings(ctx context.Context, model string) (int, error) {
	keys, err := c.scanKeys(ctx, model)
	if err != nil {
		return 0, err
	}
	if len(keys) == 0 {
		return 0, nil
	}

	wb := c.backend.NewWriteBatch()
	defer wb.Cancel()
	for _, key := range keys {
		if err := wb.Delete(key); err != nil {
			return 0, err
		}
	}
	if err := wb.Flush(); err != nil {
		return 0, err
	}

	c.logger.Info("cleared embedding cache", "model", model, "removed", len(keys))
	return len(keys), nil
}

// CountEmbeddings returns the number of entries for model, or all entries when model is empty.
func (c *EmbeddingCache) CountEmbeddings(ctx context.Context, model string) (int, error) {
	keys, err := c.scanKeys(ctx, model)
	return len(keys), err
}

// scanKeys returns copies of the keys stored for model.
func (c *EmbeddingCache) scanKeys(ctx context.Context, model string) ([][]byte, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var keys [][]byte
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = makeEmbeddingScanPrefix(model)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return keys, nil
}

// Close is a no-op; the backend is owned and closed by the caller.
func (c *EmbeddingCache) Close() error {
	return nil
}
