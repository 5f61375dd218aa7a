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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/poiesic/agrivoice/ai"
	goopenai "github.com/sashabaranov/go-openai"
)

// ErrSpeechDisabled is returned when speech services are requested without a key.
var ErrSpeechDisabled = errors.New("speech services are not configured")

// newAudioClient builds a go-openai client for the speech host.
func newAudioClient(config *ai.Config) (*goopenai.Client, error) {
	if !config.SpeechEnabled() {
		return nil, ErrSpeechDisabled
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	clientConfig := goopenai.DefaultConfig(config.SpeechAPIKey)
	clientConfig.BaseURL = config.SpeechHost
	return goopenai.NewClientWithConfig(clientConfig), nil
}

// Synthesizer implements ai.Synthesizer using the OpenAI speech endpoint.
type Synthesizer struct {
	client *goopenai.Client
	model  goopenai.SpeechModel
	voice  goopenai.SpeechVoice
	logger *slog.Logger
}

func newSynthesizer(config *ai.Config) (*Synthesizer, error) {
	client, err := newAudioClient(config)
	if err != nil {
		return nil, err
	}
	return &Synthesizer{
		client: client,
		model:  goopenai.SpeechModel(config.SpeechModel),
		voice:  goopenai.SpeechVoice(config.SpeechVoice),
		logger: slog.Default().With("component", "openai-synthesizer"),
	}, nil
}

// NewSynthesizer creates a new text-to-speech service.
//
// Returns ai.Synthesizer interface to enforce abstraction.
func NewSynthesizer(config *ai.Config) (ai.Synthesizer, error) {
	return newSynthesizer(config)
}

// Synthesize returns MP3 audio of text. The voice model infers pronunciation
// from the script, so language is only logged.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("nothing to synthesize")
	}
	s.logger.Debug("synthesizing speech", "language", language, "length", len(text))

	response, err := s.client.CreateSpeech(ctx, goopenai.CreateSpeechRequest{
		Model:          s.model,
		Input:          text,
		Voice:          s.voice,
		ResponseFormat: goopenai.SpeechResponseFormatMp3,
	})
	if err != nil {
		s.logger.Error("failed to synthesize speech", "err", err)
		return nil, err
	}
	defer func() { _ = response.Close() }()

	audio, err := io.ReadAll(response)
	if err != nil {
		return nil, fmt.Errorf("reading speech response: %w", err)
	}
	return audio, nil
}

// Transcriber implements ai.Transcriber using the OpenAI transcription endpoint.
type Transcriber struct {
	client *goopenai.Client
	model  string
	logger *slog.Logger
}

func newTranscriber(config *ai.Config) (*Transcriber, error) {
	client, err := newAudioClient(config)
	if err != nil {
		return nil, err
	}
	return &Transcriber{
		client: client,
		model:  config.TranscriptionModel,
		logger: slog.Default().With("component", "openai-transcriber"),
	}, nil
}

// NewTranscriber creates a new speech-to-text service.
//
// Returns ai.Transcriber interface to enforce abstraction.
func NewTranscriber(config *ai.Config) (ai.Transcriber, error) {
	return newTranscriber(config)
}

// Transcribe returns the text spoken in audio.
func (t *Transcriber) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	if filename == "" {
		filename = "audio.wav"
	}
	t.logger.Debug("transcribing audio", "file", filename, "language", language)

	response, err := t.client.CreateTranscription(ctx, goopenai.AudioRequest{
		Model:    t.model,
		FilePath: filename,
		Reader:   audio,
		Language: language,
	})
	if err != nil {
		t.logger.Error("failed to transcribe audio", "err", err)
		return "", err
	}
	return strings.TrimSpace(response.Text), nil
}
