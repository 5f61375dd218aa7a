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

package ai

import (
	"context"
	"io"
)

// Embedder generates vector embeddings from text.
// Implementations must be thread-safe for concurrent use and deterministic
// for the same input and model version.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	// The returned vector represents the semantic meaning of the text.
	// Returns an error if the embedding generation fails.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a batch.
	// Batch processing is more efficient than calling EmbedText multiple times.
	// The returned slice contains embeddings in the same order as the input texts.
	// Returns an error if any embedding generation fails.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)

	// Model returns the identifier of the embedding model.
	// Vectors from different models are never compared.
	Model() string
}

// Translator translates text between languages.
// Implementations must be thread-safe for concurrent use.
type Translator interface {
	// Translate translates text from the source language to the target language.
	// Languages are ISO 639-1 codes; source may be AutoDetect.
	// Returns an error if the translation fails. Callers decide whether to
	// fall back to the untranslated text.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// Synthesizer converts text to speech.
type Synthesizer interface {
	// Synthesize returns MP3 encoded audio of text spoken in the given language.
	Synthesize(ctx context.Context, text, language string) ([]byte, error)
}

// Transcriber converts speech to text.
type Transcriber interface {
	// Transcribe returns the text spoken in audio. filename carries the audio
	// format through its extension (e.g. "question.wav"). language is an
	// ISO 639-1 hint and may be empty.
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error)
}

// AIProvider aggregates AI services for convenient initialization and lifecycle management.
// A provider creates and manages the service instances, ensuring they share
// configuration and resources appropriately.
type AIProvider interface {
	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Translator returns the translation service.
	Translator() Translator

	// Synthesizer returns the text-to-speech service.
	Synthesizer() Synthesizer

	// Transcriber returns the speech-to-text service.
	Transcriber() Transcriber

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
