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

package core

import (
	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

var (
	// IDMUS serializes an ID as a varint.
	IDMUS = idMUS{}

	// ManifestMUS serializes a Manifest field by field in declaration order.
	ManifestMUS = manifestMUS{}
)

var (
	_ mus.Serializer[ID]       = IDMUS
	_ mus.Serializer[Manifest] = ManifestMUS
)

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	uv, n, err := varint.Uint64.Unmarshal(bs)
	return ID(uv), n, err
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

type manifestMUS struct{}

func (s manifestMUS) Marshal(v Manifest, bs []byte) (n int) {
	n = ord.String.Marshal(v.Model, bs)
	n += IDMUS.Marshal(v.Fingerprint, bs[n:])
	n += varint.PositiveInt.Marshal(v.Records, bs[n:])
	n += ord.String.Marshal(v.Source, bs[n:])
	return n + raw.TimeUnixMicroUTC.Marshal(v.UpdatedAt, bs[n:])
}

func (s manifestMUS) Unmarshal(bs []byte) (v Manifest, n int, err error) {
	v.Model, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Fingerprint, n1, err = IDMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Records, n1, err = varint.PositiveInt.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Source, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.UpdatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:])
	n += n1
	return
}

func (s manifestMUS) Size(v Manifest) (size int) {
	size = ord.String.Size(v.Model)
	size += IDMUS.Size(v.Fingerprint)
	size += varint.PositiveInt.Size(v.Records)
	size += ord.String.Size(v.Source)
	return size + raw.TimeUnixMicroUTC.Size(v.UpdatedAt)
}

func (s manifestMUS) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = IDMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = varint.PositiveInt.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = raw.TimeUnixMicroUTC.Skip(bs[n:])
	n += n1
	return
}
