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

package agrivoice

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/poiesic/agrivoice/ai"
	"github.com/poiesic/agrivoice/ai/openai"
	"github.com/poiesic/agrivoice/core"
	"github.com/poiesic/agrivoice/crop"
	"github.com/poiesic/agrivoice/dataset"
	"github.com/poiesic/agrivoice/dosage"
	"github.com/poiesic/agrivoice/scheme"
	"github.com/poiesic/agrivoice/storage"
	"github.com/poiesic/agrivoice/storage/badger"
	"github.com/poiesic/agrivoice/weather"
)

// Answer is a rendered reply in the farmer's language.
type Answer struct {
	Text   string
	Locale core.Locale
	Audio  []byte      // MP3, nil when not requested or synthesis failed
	Match  *core.Match // scheme answers only
}

// Assistant loads the scheme corpus once and answers scheme, weather, crop
// and dosage questions. It is safe for concurrent use.
type Assistant struct {
	backend    *badger.Backend
	cache      storage.EmbeddingCache
	manifests  storage.ManifestRepository
	provider   ai.AIProvider
	matcher    *scheme.Matcher
	corpus     atomic.Pointer[core.Corpus]
	rows       []core.SchemeRow
	source     string
	weather    weather.Provider
	classifier crop.Classifier
	treatments *dosage.Table
	logger     *slog.Logger
}

// Option configures an Assistant.
type Option func(*assistantOptions)

type assistantOptions struct {
	aiConfig       *ai.Config
	provider       ai.AIProvider
	cachePath      string
	rows           []core.SchemeRow
	schemesPath    string
	treatmentsPath string
	weather        weather.Provider
	classifier     crop.Classifier
	matcherOpts    []scheme.Option
	logger         *slog.Logger
}

// WithAIConfig sets the configuration for the OpenAI-compatible provider.
func WithAIConfig(cfg *ai.Config) Option {
	return func(o *assistantOptions) {
		o.aiConfig = cfg
	}
}

// WithProvider uses provider instead of building one from the AI config.
// The Assistant takes ownership and closes it.
func WithProvider(provider ai.AIProvider) Option {
	return func(o *assistantOptions) {
		o.provider = provider
	}
}

// WithCachePath stores the embedding cache in a Badger directory.
// Without it the cache lives in memory.
func WithCachePath(path string) Option {
	return func(o *assistantOptions) {
		o.cachePath = path
	}
}

// WithSchemesFile loads the scheme table from a CSV file.
func WithSchemesFile(path string) Option {
	return func(o *assistantOptions) {
		o.schemesPath = path
	}
}

// WithSchemeRows uses rows as the scheme table.
func WithSchemeRows(rows []core.SchemeRow) Option {
	return func(o *assistantOptions) {
		o.rows = rows
	}
}

// WithTreatmentsFile loads the pest treatment table from a YAML file.
func WithTreatmentsFile(path string) Option {
	return func(o *assistantOptions) {
		o.treatmentsPath = path
	}
}

// WithWeather enables weather reports.
func WithWeather(provider weather.Provider) Option {
	return func(o *assistantOptions) {
		o.weather = provider
	}
}

// WithClassifier enables crop recommendations.
func WithClassifier(classifier crop.Classifier) Option {
	return func(o *assistantOptions) {
		o.classifier = classifier
	}
}

// WithMatcherOptions passes options to the scheme matcher.
func WithMatcherOptions(opts ...scheme.Option) Option {
	return func(o *assistantOptions) {
		o.matcherOpts = append(o.matcherOpts, opts...)
	}
}

// WithLogger sets the logger for the assistant and its components.
func WithLogger(logger *slog.Logger) Option {
	return func(o *assistantOptions) {
		o.logger = logger
	}
}

// NewAssistant opens the embedding cache, connects the AI provider and loads
// the scheme corpus. A corpus that cannot be loaded is fatal.
func NewAssistant(ctx context.Context, opts ...Option) (*Assistant, error) {
	options := &assistantOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	logger := options.logger

	// An injected provider is owned from here on, even when setup fails.
	fail := func(err error) (*Assistant, error) {
		if options.provider != nil {
			options.provider.Close()
		}
		return nil, err
	}

	rows, source, err := loadRows(options)
	if err != nil {
		return fail(err)
	}
	treatments, err := dosage.LoadFile(options.treatmentsPath)
	if err != nil {
		return fail(err)
	}

	backend, err := badger.OpenBackend(options.cachePath, options.cachePath == "")
	if err != nil {
		return fail(err)
	}

	cache, err := badger.NewEmbeddingCache(backend)
	if err != nil {
		backend.Close()
		return fail(err)
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			backend.Close()
			return nil, err
		}
	}

	matcherOpts := append([]scheme.Option{scheme.WithCache(cache), scheme.WithLogger(logger)}, options.matcherOpts...)
	matcher, err := scheme.NewMatcher(provider, matcherOpts...)
	if err != nil {
		provider.Close()
		backend.Close()
		return nil, err
	}

	a := &Assistant{
		backend:    backend,
		cache:      cache,
		manifests:  badger.NewManifestRepository(backend),
		provider:   provider,
		matcher:    matcher,
		rows:       rows,
		source:     source,
		weather:    options.weather,
		classifier: options.classifier,
		treatments: treatments,
		logger:     logger.With("component", "assistant"),
	}

	if _, err := a.loadCorpus(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func loadRows(options *assistantOptions) ([]core.SchemeRow, string, error) {
	if options.rows != nil {
		return options.rows, "inline", nil
	}
	rows, err := dataset.LoadSchemesFile(options.schemesPath)
	if err != nil {
		return nil, "", err
	}
	if options.schemesPath == "" {
		return rows, dataset.DefaultSource, nil
	}
	return rows, options.schemesPath, nil
}

// loadCorpus embeds the scheme rows, publishes the corpus and records a manifest.
func (a *Assistant) loadCorpus(ctx context.Context) (*core.Corpus, error) {
	start := time.Now()
	corpus, err := a.matcher.Load(ctx, a.rows)
	if err != nil {
		return nil, err
	}
	a.corpus.Store(corpus)

	manifest := &core.Manifest{
		Model:       corpus.Model(),
		Fingerprint: corpus.Fingerprint(),
		Records:     corpus.Len(),
		Source:      a.source,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := a.manifests.SaveManifest(ctx, manifest); err != nil {
		a.logger.Warn("failed to save corpus manifest", "err", err)
	}
	a.logger.Info("scheme corpus ready",
		"records", corpus.Len(),
		"model", corpus.Model(),
		"source", a.source,
		"elapsed", time.Since(start))
	return corpus, nil
}

// Reembed discards cached vectors for the current model and rebuilds the
// corpus. Queries running concurrently keep using the previous corpus.
func (a *Assistant) Reembed(ctx context.Context) (*core.Corpus, error) {
	cleared, err := a.cache.ClearEmbeddings(ctx, a.matcher.Model())
	if err != nil {
		return nil, err
	}
	a.logger.Info("cleared cached embeddings", "count", cleared, "model", a.matcher.Model())
	return a.loadCorpus(ctx)
}

// Corpus returns the current scheme corpus.
func (a *Assistant) Corpus() *core.Corpus {
	return a.corpus.Load()
}

// Manifest returns the record of the last corpus load.
func (a *Assistant) Manifest(ctx context.Context) (*core.Manifest, error) {
	return a.manifests.LoadManifest(ctx)
}

// Pests lists the pests the dosage table knows.
func (a *Assistant) Pests() []string {
	return a.treatments.Pests()
}

// AskScheme finds the scheme closest to question and describes it in locale.
func (a *Assistant) AskScheme(ctx context.Context, question string, locale core.Locale, withAudio bool) (*Answer, error) {
	if !locale.Valid() {
		return nil, core.ErrInvalidLocale
	}
	match, err := a.matcher.Query(ctx, a.corpus.Load(), question)
	if err != nil {
		return nil, err
	}

	answer := &Answer{
		Text:   a.localize(ctx, match.Description, locale),
		Locale: locale,
		Match:  match,
	}
	a.speak(ctx, answer, withAudio)
	return answer, nil
}

// AskSchemeAudio transcribes a spoken question and answers it with AskScheme.
func (a *Assistant) AskSchemeAudio(ctx context.Context, audio io.Reader, filename string, locale core.Locale, withAudio bool) (*Answer, error) {
	if !locale.Valid() {
		return nil, core.ErrInvalidLocale
	}
	transcriber := a.provider.Transcriber()
	if transcriber == nil {
		return nil, fmt.Errorf("%w: transcription is not configured", core.ErrSpeech)
	}

	question, err := transcriber.Transcribe(ctx, audio, filename, locale.Code())
	if err != nil {
		a.logger.Error("transcription failed", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrSpeech, err)
	}
	a.logger.Debug("transcribed question", "locale", locale.Code(), "question", question)
	return a.AskScheme(ctx, question, locale, withAudio)
}

// Weather reports current conditions for location. A failed lookup returns
// an error wrapping core.ErrWeatherUnavailable; weather.Unavailable renders
// the matching message.
func (a *Assistant) Weather(ctx context.Context, location string, locale core.Locale, withAudio bool) (*Answer, error) {
	if !locale.Valid() {
		return nil, core.ErrInvalidLocale
	}
	if a.weather == nil {
		return nil, fmt.Errorf("%w: weather service is not configured", core.ErrWeatherUnavailable)
	}

	report, err := a.weather.Current(ctx, location)
	if err != nil {
		return nil, err
	}

	answer := &Answer{Text: weather.Format(report, locale), Locale: locale}
	a.speak(ctx, answer, withAudio)
	return answer, nil
}

// RecommendCrop asks the classifier for the best crop for sample.
func (a *Assistant) RecommendCrop(ctx context.Context, sample crop.SoilSample, locale core.Locale, withAudio bool) (*Answer, error) {
	if !locale.Valid() {
		return nil, core.ErrInvalidLocale
	}
	if err := sample.Validate(); err != nil {
		return nil, err
	}
	if a.classifier == nil {
		return nil, fmt.Errorf("%w: crop classifier is not configured", core.ErrPrediction)
	}

	label, err := a.classifier.Predict(ctx, sample)
	if err != nil {
		if errors.Is(err, core.ErrInvalidSoilSample) || errors.Is(err, core.ErrPrediction) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", core.ErrPrediction, err)
	}

	answer := &Answer{Text: crop.Message(label, locale), Locale: locale}
	a.speak(ctx, answer, withAudio)
	return answer, nil
}

// Dosage computes the treatment quantity for pest over area hectares.
func (a *Assistant) Dosage(ctx context.Context, pest string, area float64, locale core.Locale, withAudio bool) (*Answer, error) {
	if !locale.Valid() {
		return nil, core.ErrInvalidLocale
	}
	d, err := a.treatments.Compute(pest, area)
	if err != nil {
		return nil, err
	}

	answer := &Answer{Text: d.Line(locale), Locale: locale}
	a.speak(ctx, answer, withAudio)
	return answer, nil
}

// localize translates English text into locale, keeping the English text
// when translation fails.
func (a *Assistant) localize(ctx context.Context, text string, locale core.Locale) string {
	if locale == core.LocaleEnglish {
		return text
	}
	translator := a.provider.Translator()
	if translator == nil {
		return text
	}
	translated, err := translator.Translate(ctx, text, ai.WorkingLanguage, locale.Code())
	if err != nil || translated == "" {
		a.logger.Warn("answer translation failed, replying in English", "locale", locale.Code(), "err", err)
		return text
	}
	return translated
}

// speak attaches synthesized audio. Failures leave the answer without audio.
func (a *Assistant) speak(ctx context.Context, answer *Answer, withAudio bool) {
	if !withAudio {
		return
	}
	synthesizer := a.provider.Synthesizer()
	if synthesizer == nil {
		a.logger.Warn("speech requested but synthesis is not configured")
		return
	}
	audio, err := synthesizer.Synthesize(ctx, answer.Text, answer.Locale.Code())
	if err != nil {
		a.logger.Warn("speech synthesis failed", "locale", answer.Locale.Code(), "err", err)
		return
	}
	answer.Audio = audio
}

// Close releases the matcher pool, the AI provider and the cache.
func (a *Assistant) Close() error {
	a.matcher.Release()

	if err := a.provider.Close(); err != nil {
		a.logger.Error("error closing AI provider", "err", err)
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Error("error closing embedding cache", "err", err)
		return err
	}
	if err := a.backend.Close(); err != nil {
		a.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
