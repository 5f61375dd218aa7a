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

import "errors"

// Scheme lookup errors
var (
	// ErrDataLoad indicates the scheme corpus is missing, empty or malformed,
	// or could not be embedded. Fatal at startup.
	ErrDataLoad = errors.New("scheme data load failed")

	// ErrEmptyQuery indicates the user question is empty or whitespace only.
	ErrEmptyQuery = errors.New("question cannot be empty")

	// ErrEmbedding indicates the embedding backend failed.
	ErrEmbedding = errors.New("embedding service unavailable")

	// ErrTranslation indicates the translation backend failed.
	// Callers fall back to the untranslated text.
	ErrTranslation = errors.New("translation failed")

	// ErrEmptyCorpus indicates a corpus was constructed without records.
	ErrEmptyCorpus = errors.New("corpus cannot be empty")

	// ErrCorpusMisaligned indicates records and embeddings differ in length.
	ErrCorpusMisaligned = errors.New("corpus records and embeddings are not aligned")

	// ErrInvalidSchemeRow indicates a reference row failed validation.
	ErrInvalidSchemeRow = errors.New("invalid scheme row")
)

// Assistant feature errors
var (
	// ErrInvalidLocale indicates an unsupported language was requested.
	ErrInvalidLocale = errors.New("unsupported locale")

	// ErrInvalidSoilSample indicates a soil measurement is out of range.
	ErrInvalidSoilSample = errors.New("invalid soil sample")

	// ErrUnknownPest indicates the pest is not in the treatment table.
	ErrUnknownPest = errors.New("unknown pest")

	// ErrInvalidArea indicates a non-positive treatment area.
	ErrInvalidArea = errors.New("area must be greater than zero")

	// ErrWeatherUnavailable indicates the weather service returned no data.
	ErrWeatherUnavailable = errors.New("weather information not available")

	// ErrPrediction indicates the crop classifier failed.
	ErrPrediction = errors.New("crop prediction failed")

	// ErrSpeech indicates speech synthesis or transcription failed.
	ErrSpeech = errors.New("speech service failed")
)
