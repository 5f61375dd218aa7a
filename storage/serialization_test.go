package storage

import (
	"math"
	"testing"
	"time"

	com "github.com/mus-format/common-go"
	"github.com/mus-format/mus-go"
	"github.com/poiesic/agrivoice/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalVector(t *testing.T) {
	tests := []struct {
		name string
		vec  []float32
	}{
		{"empty", []float32{}},
		{"unit", []float32{1, 0}},
		{"negative and fractional", []float32{-0.25, 0.5, 3.75}},
		{"extremes", []float32{math.MaxFloat32, math.SmallestNonzeroFloat32, float32(math.Inf(-1))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := MarshalVector(tt.vec)
			// one length byte plus four bytes per element
			assert.Len(t, data, 1+len(tt.vec)*4)

			decoded, err := UnmarshalVector(data)
			require.NoError(t, err)
			assert.Equal(t, tt.vec, decoded)
		})
	}
}

func TestUnmarshalVector_TooLong(t *testing.T) {
	// varint length 0x0FFFFFFF
	_, err := UnmarshalVector([]byte{0xFF, 0xFF, 0xFF, 0x7F})
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, com.ErrTooLargeLength)
}

func TestMarshalUnmarshalCacheEntry(t *testing.T) {
	tests := []struct {
		name string
		text string
		vec  []float32
	}{
		{"ascii", "PM-KISAN Income support", []float32{0.25, -1.5, 3}},
		{"telugu", "రైతులకు రుణం", []float32{1}},
		{"empty text", "", []float32{0.5}},
		{"empty vector", "text", []float32{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, vec, err := UnmarshalCacheEntry(MarshalCacheEntry(tt.text, tt.vec))
			require.NoError(t, err)
			assert.Equal(t, tt.text, text)
			assert.Equal(t, tt.vec, vec)
		})
	}
}

func TestUnmarshalCacheEntry_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"text overflows", []byte{10, 'a'}},
		{"missing vector", []byte{1, 'a'}},
		{"ragged vector", []byte{1, 'a', 1, 2, 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := UnmarshalCacheEntry(tt.data)
			assert.ErrorIs(t, err, ErrSerializationFailed)
			assert.ErrorIs(t, err, mus.ErrTooSmallByteSlice)
		})
	}
}

func TestMarshalUnmarshalManifest(t *testing.T) {
	manifest := &core.Manifest{
		Model:       "all-minilm",
		Fingerprint: core.IDFromContent("corpus"),
		Records:     12,
		Source:      "data/gov_schemes.csv",
		UpdatedAt:   time.Now().UTC().Truncate(time.Microsecond),
	}

	decoded, err := UnmarshalManifest(MarshalManifest(manifest))
	require.NoError(t, err)
	assert.Equal(t, manifest.Model, decoded.Model)
	assert.Equal(t, manifest.Fingerprint, decoded.Fingerprint)
	assert.Equal(t, manifest.Records, decoded.Records)
	assert.Equal(t, manifest.Source, decoded.Source)
	assert.True(t, manifest.UpdatedAt.Equal(decoded.UpdatedAt))
	assert.Equal(t, time.UTC, decoded.UpdatedAt.Location())
}

func TestUnmarshalManifest_Truncated(t *testing.T) {
	data := MarshalManifest(&core.Manifest{Model: "all-minilm", Records: 3, UpdatedAt: time.Now()})

	_, err := UnmarshalManifest(data[:len(data)-2])
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, mus.ErrTooSmallByteSlice)
}
