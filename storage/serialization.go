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

package storage

import (
	"fmt"

	com "github.com/mus-format/common-go"
	slops "github.com/mus-format/mus-go/options/slice"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/poiesic/agrivoice/core"
)

// MaxVectorDimension bounds the length of a decoded vector so a corrupt
// length prefix cannot trigger a huge allocation.
const MaxVectorDimension = 1 << 16

var vectorMUS = ord.NewValidSliceSer[float32](raw.Float32,
	slops.WithLenValidator[float32](com.ValidatorFn[int](validateVectorLength)))

func validateVectorLength(length int) error {
	if length > MaxVectorDimension {
		return com.ErrTooLargeLength
	}
	return nil
}

// MarshalVector serializes a vector as a length-prefixed run of raw float32 values.
func MarshalVector(vec []float32) []byte {
	buf := make([]byte, vectorMUS.Size(vec))
	vectorMUS.Marshal(vec, buf)
	return buf
}

// UnmarshalVector deserializes a vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	vec, _, err := vectorMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return vec, nil
}

// MarshalCacheEntry serializes the source text followed by its vector.
func MarshalCacheEntry(text string, vec []float32) []byte {
	buf := make([]byte, ord.String.Size(text)+vectorMUS.Size(vec))
	n := ord.String.Marshal(text, buf)
	vectorMUS.Marshal(vec, buf[n:])
	return buf
}

// UnmarshalCacheEntry deserializes a cache entry from bytes.
func UnmarshalCacheEntry(data []byte) (string, []float32, error) {
	text, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	vec, err := UnmarshalVector(data[n:])
	if err != nil {
		return "", nil, err
	}
	return text, vec, nil
}

// MarshalManifest serializes a Manifest to bytes.
func MarshalManifest(manifest *core.Manifest) []byte {
	buf := make([]byte, core.ManifestMUS.Size(*manifest))
	core.ManifestMUS.Marshal(*manifest, buf)
	return buf
}

// UnmarshalManifest deserializes a Manifest from bytes.
func UnmarshalManifest(data []byte) (*core.Manifest, error) {
	manifest, _, err := core.ManifestMUS.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, err)
	}
	return &manifest, nil
}
