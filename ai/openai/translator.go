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
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"github.com/poiesic/agrivoice/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// maxTranslationAttempts bounds re-asking the model after malformed JSON.
const maxTranslationAttempts = 3

// ErrEmptyTranslation is returned when the model answers with no text.
var ErrEmptyTranslation = errors.New("model returned an empty translation")

// Translator implements ai.Translator using OpenAI-compatible chat APIs.
type Translator struct {
	client llms.Model
	logger *slog.Logger
}

// translation is the wrapper structure for the LLM's JSON response.
type translation struct {
	Text string `json:"translation"`
}

// newTranslator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranslator(config *ai.Config) (*Translator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.TranslatorHost),
		openai.WithToken(apiToken(config.APIKey)),
		openai.WithModel(config.TranslatorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Translator{
		client: client,
		logger: slog.Default().With("component", "openai-translator"),
	}, nil
}

// NewTranslator creates a new translator using the provided configuration.
//
// Returns ai.Translator interface to enforce abstraction.
func NewTranslator(config *ai.Config) (ai.Translator, error) {
	return newTranslator(config)
}

// Translate translates text from source to target using a chat model.
// Text that is already in the target language is returned unchanged by the model.
func (t *Translator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if strings.TrimSpace(text) == "" || source == target {
		return text, nil
	}

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildTranslationPrompt(source, target))},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(text)},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxTranslationAttempts; attempt++ {
		response, err := t.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			t.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return "", err
		}
		if len(response.Choices) < 1 {
			return "", ErrEmptyTranslation
		}

		raw := cleanModelOutput(response.Choices[0].Content)
		var result translation
		if err := json.Unmarshal([]byte(repairJSON(raw)), &result); err != nil {
			lastErr = err
			t.logger.Warn("error parsing translator response",
				"attempt", attempt+1,
				"response", raw,
				"err", err)
			continue
		}

		translated := strings.TrimSpace(result.Text)
		if translated == "" {
			return "", ErrEmptyTranslation
		}
		t.logger.Debug("translated text", "source", source, "target", target, "length", len(translated))
		return translated, nil
	}

	t.logger.Error("failed to parse translator response after retries", "err", lastErr)
	return "", lastErr
}
