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
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	EmbeddingHost string

	// TranslatorHost is the base URL for the chat model used for translation.
	// Example: "http://localhost:11434/v1" for local OpenAI-compatible server
	TranslatorHost string

	// SpeechHost is the base URL for the text-to-speech and transcription API.
	// Example: "https://api.openai.com/v1"
	SpeechHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "all-minilm", "text-embedding-3-small"
	EmbeddingModel string

	// TranslatorModel is the chat model identifier to use for translation.
	// Example: "qwen2.5:3b", "gpt-4o-mini"
	TranslatorModel string

	// SpeechModel is the text-to-speech model identifier.
	// Example: "tts-1"
	SpeechModel string

	// SpeechVoice is the voice used for synthesized answers.
	// Example: "alloy"
	SpeechVoice string

	// TranscriptionModel is the speech-to-text model identifier.
	// Example: "whisper-1"
	TranscriptionModel string

	// APIKey is sent to the embedding and translation hosts.
	// Local servers accept any value.
	APIKey string

	// SpeechAPIKey is sent to the speech host. Empty disables speech.
	SpeechAPIKey string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithTranslatorHost sets the translation service host URL.
func WithTranslatorHost(host string) ConfigOption {
	return func(c *Config) {
		c.TranslatorHost = host
	}
}

// WithSpeechHost sets the speech service host URL.
func WithSpeechHost(host string) ConfigOption {
	return func(c *Config) {
		c.SpeechHost = host
	}
}

// WithHost sets both embedding and translator hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
		c.TranslatorHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTranslatorModel sets the translation model identifier.
func WithTranslatorModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranslatorModel = model
	}
}

// WithSpeechModel sets the text-to-speech model and voice.
func WithSpeechModel(model, voice string) ConfigOption {
	return func(c *Config) {
		c.SpeechModel = model
		c.SpeechVoice = voice
	}
}

// WithTranscriptionModel sets the speech-to-text model identifier.
func WithTranscriptionModel(model string) ConfigOption {
	return func(c *Config) {
		c.TranscriptionModel = model
	}
}

// WithAPIKey sets the key for the embedding and translation hosts.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithSpeechAPIKey sets the key for the speech host.
func WithSpeechAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.SpeechAPIKey = key
	}
}

// DefaultConfig returns a Config with sensible defaults for local OpenAI-compatible services.
// By default, both embedding and translation use the same host. Speech is
// disabled until a SpeechAPIKey is supplied.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		EmbeddingHost:      defaultHost,
		TranslatorHost:     defaultHost,
		SpeechHost:         "https://api.openai.com/v1",
		EmbeddingModel:     "all-minilm",
		TranslatorModel:    "qwen2.5:3b",
		SpeechModel:        "tts-1",
		SpeechVoice:        "alloy",
		TranscriptionModel: "whisper-1",
		APIKey:             "none",
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// SpeechEnabled reports whether speech services can be created.
func (c *Config) SpeechEnabled() bool {
	return c.SpeechAPIKey != ""
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
	c.TranslatorHost = normalizeHost(c.TranslatorHost)
	c.SpeechHost = normalizeHost(c.SpeechHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.TranslatorHost == "" {
		return errors.New("ai config: TranslatorHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.TranslatorModel == "" {
		return errors.New("ai config: TranslatorModel is required")
	}
	if c.SpeechEnabled() {
		if c.SpeechHost == "" {
			return errors.New("ai config: SpeechHost is required when speech is enabled")
		}
		if c.SpeechModel == "" || c.SpeechVoice == "" {
			return errors.New("ai config: SpeechModel and SpeechVoice are required when speech is enabled")
		}
		if c.TranscriptionModel == "" {
			return errors.New("ai config: TranscriptionModel is required when speech is enabled")
		}
	}
	return nil
}
