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

package openai

import (
	"log/slog"

	"github.com/poiesic/agrivoice/ai"
)

// Provider implements ai.AIProvider using OpenAI-compatible services.
// Speech services are nil when no speech key is configured.
type Provider struct {
	config      *ai.Config
	embedder    *Embedder
	translator  *Translator
	synthesizer *Synthesizer
	transcriber *Transcriber
	logger      *slog.Logger
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.AIProvider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	translator, err := newTranslator(config)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config:     config,
		embedder:   embedder,
		translator: translator,
		logger:     slog.Default().With("component", "openai-provider"),
	}

	if config.SpeechEnabled() {
		if p.synthesizer, err = newSynthesizer(config); err != nil {
			return nil, err
		}
		if p.transcriber, err = newTranscriber(config); err != nil {
			return nil, err
		}
	} else {
		p.logger.Info("speech key not set, voice answers disabled")
	}

	return p, nil
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Translator returns the translation service.
func (p *Provider) Translator() ai.Translator {
	return p.translator
}

// Synthesizer returns the text-to-speech service, or nil when speech is disabled.
func (p *Provider) Synthesizer() ai.Synthesizer {
	if p.synthesizer == nil {
		return nil
	}
	return p.synthesizer
}

// Transcriber returns the speech-to-text service, or nil when speech is disabled.
func (p *Provider) Transcriber() ai.Transcriber {
	if p.transcriber == nil {
		return nil
	}
	return p.transcriber
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
