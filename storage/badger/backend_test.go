package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/poiesic/agrivoice/core"
	"github.com/poiesic/agrivoice/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenBackend_InMemory(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	assert.False(t, backend.IsClosed())
}

func TestOpenBackend_FileSystem(t *testing.T) {
	tmpDir := filepath.Join(t.TempDir(), "cache")
	backend, err := OpenBackend(tmpDir, false)
	require.NoError(t, err)
	require.NotNil(t, backend)
	defer backend.Close()

	info, err := os.Stat(tmpDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestOpenBackend_NotADirectory(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "file.txt")
	require.NoError(t, os.WriteFile(tmpFile, []byte("x"), 0644))

	_, err := OpenBackend(tmpFile, false)
	assert.Error(t, err)
}

func TestBackendClose(t *testing.T) {
	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	assert.False(t, backend.IsClosed())
	require.NoError(t, backend.Close())
	assert.True(t, backend.IsClosed())
}

func TestEmbeddingCache_PutGet(t *testing.T) {
	cache, _, backend, err := NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	texts := []string{"PM-KISAN Income support", "PMFBY Crop insurance"}
	vectors := [][]float32{{1, 0}, {0, 1}}

	require.NoError(t, cache.PutEmbeddings(ctx, "all-minilm", texts, vectors))

	got, err := cache.GetEmbeddings(ctx, "all-minilm", []string{texts[1], "missing", texts[0]})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []float32{0, 1}, got[0])
	assert.Nil(t, got[1])
	assert.Equal(t, []float32{1, 0}, got[2])

	// Other models never see these vectors
	other, err := cache.GetEmbeddings(ctx, "nomic-embed-text", texts)
	require.NoError(t, err)
	assert.Nil(t, other[0])
	assert.Nil(t, other[1])
}

func TestEmbeddingCache_UnreadableEntryIsMiss(t *testing.T) {
	cache, _, backend, err := NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, cache.PutEmbeddings(ctx, "all-minilm", []string{"good"}, [][]float32{{1, 0}}))
	require.NoError(t, backend.WithTransaction(ctx, func(tx *badgerdb.Txn) error {
		return tx.Set(makeEmbeddingKey("all-minilm", "bad"), []byte{0x05, 'b'})
	}))

	got, err := cache.GetEmbeddings(ctx, "all-minilm", []string{"bad", "good"})
	require.NoError(t, err)
	assert.Nil(t, got[0])
	assert.Equal(t, []float32{1, 0}, got[1])
}

func TestEmbeddingCache_Overwrite(t *testing.T) {
	cache, _, backend, err := NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, cache.PutEmbeddings(ctx, "m", []string{"a"}, [][]float32{{1}}))
	require.NoError(t, cache.PutEmbeddings(ctx, "m", []string{"a"}, [][]float32{{2}}))

	got, err := cache.GetEmbeddings(ctx, "m", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []float32{2}, got[0])

	count, err := cache.CountEmbeddings(ctx, "m")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEmbeddingCache_LengthMismatch(t *testing.T) {
	cache, _, backend, err := NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	err = cache.PutEmbeddings(context.Background(), "m", []string{"a", "b"}, [][]float32{{1}})
	assert.ErrorIs(t, err, storage.ErrLengthMismatch)
}

func TestEmbeddingCache_Clear(t *testing.T) {
	cache, _, backend, err := NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, cache.PutEmbeddings(ctx, "m1", []string{"a", "b"}, [][]float32{{1}, {2}}))
	require.NoError(t, cache.PutEmbeddings(ctx, "m2", []string{"a"}, [][]float32{{3}}))

	total, err := cache.CountEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, total)

	removed, err := cache.ClearEmbeddings(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	got, err := cache.GetEmbeddings(ctx, "m2", []string{"a"})
	require.NoError(t, err)
	assert.Equal(t, []float32{3}, got[0])

	removed, err = cache.ClearEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	total, err = cache.CountEmbeddings(ctx, "")
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestEmbeddingCache_Persists(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	backend, err := OpenBackend(dir, false)
	require.NoError(t, err)
	cache, err := NewEmbeddingCache(backend)
	require.NoError(t, err)
	require.NoError(t, cache.PutEmbeddings(ctx, "m", []string{"रुणं"}, [][]float32{{0.5, 0.25}}))
	require.NoError(t, backend.Close())

	backend, err = OpenBackend(dir, false)
	require.NoError(t, err)
	defer backend.Close()
	cache, err = NewEmbeddingCache(backend)
	require.NoError(t, err)

	got, err := cache.GetEmbeddings(ctx, "m", []string{"रुणं"})
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, got[0])
}

func TestEmbeddingCache_Closed(t *testing.T) {
	cache, manifests, backend, err := NewMemoryCache()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	ctx := context.Background()
	_, err = cache.GetEmbeddings(ctx, "m", []string{"a"})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.ErrorIs(t, cache.PutEmbeddings(ctx, "m", []string{"a"}, [][]float32{{1}}), storage.ErrStorageClosed)
	_, err = manifests.LoadManifest(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestManifestRepository(t *testing.T) {
	_, manifests, backend, err := NewMemoryCache()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	manifest, err := manifests.LoadManifest(ctx)
	require.NoError(t, err)
	assert.Nil(t, manifest)

	before := time.Now().UTC()
	require.NoError(t, manifests.SaveManifest(ctx, &core.Manifest{
		Model:       "all-minilm",
		Fingerprint: core.IDFromContent("corpus"),
		Records:     3,
		Source:      "embedded",
	}))

	manifest, err = manifests.LoadManifest(ctx)
	require.NoError(t, err)
	require.NotNil(t, manifest)
	assert.Equal(t, "all-minilm", manifest.Model)
	assert.Equal(t, 3, manifest.Records)
	assert.Equal(t, core.IDFromContent("corpus"), manifest.Fingerprint)
	assert.False(t, manifest.UpdatedAt.Before(before.Add(-time.Second)))
}

func TestEmbeddingKeys(t *testing.T) {
	assert.NotEqual(t, makeEmbeddingKey("a", "x"), makeEmbeddingKey("b", "x"))
	assert.NotEqual(t, makeEmbeddingKey("m", "x"), makeEmbeddingKey("m", "y"))
	assert.Equal(t, []byte("embcache:"), makeEmbeddingScanPrefix(""))
	assert.True(t, len(makeEmbeddingKey("m", "x")) > len(makeEmbeddingModelPrefix("m")))
}
