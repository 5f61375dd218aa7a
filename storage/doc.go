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

// Package storage provides the persistence layer for AgriVoice.
//
// The scheme corpus itself is small and lives in memory. What is worth
// persisting is the embedding of each scheme context, since re-embedding the
// corpus on every start costs one round trip to the embedding service per
// batch. This package defines the cache interfaces and the on-disk encoding;
// the storage/badger package implements them on BadgerDB.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces:
//
//	cache, err := badger.NewEmbeddingCache(backend)  // returns storage.EmbeddingCache
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/lib/agrivoice/cache", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := badger.NewEmbeddingCache(backend)
//	defer cache.Close()
//
// Use in tests with in-memory storage:
//
//	cache, manifests, backend, err := badger.NewMemoryCache()
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
