package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/agrivoice"
	"github.com/poiesic/agrivoice/api"
	"github.com/poiesic/agrivoice/core"
	"github.com/poiesic/agrivoice/crop"
	"github.com/poiesic/agrivoice/dataset"
	"github.com/poiesic/agrivoice/internal/config"
	"github.com/poiesic/agrivoice/internal/progress"
	"github.com/poiesic/agrivoice/scheme"
	"github.com/poiesic/agrivoice/storage/badger"
	"github.com/poiesic/agrivoice/weather"
	"github.com/urfave/cli/v2"
)

// openAssistant builds an assistant from the loaded configuration. Weather
// and crop services are enabled only when configured.
func openAssistant(ctx context.Context, cfg *config.AppConfig) (*agrivoice.Assistant, error) {
	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid AI configuration: %w", err)
	}
	provider, err := newProvider(aiConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create AI provider: %w", err)
	}

	opts := []agrivoice.Option{
		agrivoice.WithProvider(provider),
		agrivoice.WithCachePath(cfg.Data.CacheDir),
		agrivoice.WithSchemesFile(cfg.Data.SchemesFile),
		agrivoice.WithTreatmentsFile(cfg.Data.TreatmentsFile),
		agrivoice.WithMatcherOptions(matcherOptions(cfg)...),
	}

	if cfg.Weather.APIKey != "" {
		client, err := weather.NewClient(cfg.Weather.APIKey,
			weather.WithBaseURL(cfg.Weather.BaseURL),
			weather.WithHTTPClient(newHTTPClient(cfg.Weather.Timeout)))
		if err != nil {
			provider.Close()
			return nil, err
		}
		opts = append(opts, agrivoice.WithWeather(client))
	}
	if cfg.Crop.Endpoint != "" {
		classifier, err := crop.NewHTTPClassifier(cfg.Crop.Endpoint,
			crop.WithHTTPClient(newHTTPClient(cfg.Crop.Timeout)))
		if err != nil {
			provider.Close()
			return nil, err
		}
		opts = append(opts, agrivoice.WithClassifier(classifier))
	}

	return agrivoice.NewAssistant(ctx, opts...)
}

func matcherOptions(cfg *config.AppConfig) []scheme.Option {
	opts := []scheme.Option{
		scheme.WithBatchSize(cfg.Pool.BatchSize),
		scheme.WithRetry(cfg.Pool.MaxAttempts, cfg.Pool.RetryDelay),
	}
	if cfg.Pool.Size > 0 {
		opts = append(opts, scheme.WithPoolSize(cfg.Pool.Size))
	}
	return opts
}

func serveCommand(c *cli.Context) error {
	cfg := appConfig(c)
	if c.IsSet("host") {
		cfg.Server.Host = c.String("host")
	}
	if c.IsSet("port") {
		cfg.Server.Port = c.Int("port")
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	assistant, err := openAssistant(ctx, cfg)
	if err != nil {
		return err
	}
	defer assistant.Close()

	addr := net.JoinHostPort(cfg.Server.Host, strconv.Itoa(cfg.Server.Port))
	server := api.NewServer(addr, assistant,
		api.WithAllowedOrigins(cfg.Server.AllowedOrigins...),
		api.WithLogger(slog.Default()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("usage: agrivoice ask <question...>")
	}
	return runAnswer(c, func(ctx context.Context, a *agrivoice.Assistant, locale core.Locale, withAudio bool) (*agrivoice.Answer, error) {
		return a.AskScheme(ctx, question, locale, withAudio)
	})
}

func weatherCommand(c *cli.Context) error {
	location := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(location) == "" {
		return fmt.Errorf("usage: agrivoice weather <location>")
	}
	return runAnswer(c, func(ctx context.Context, a *agrivoice.Assistant, locale core.Locale, withAudio bool) (*agrivoice.Answer, error) {
		answer, err := a.Weather(ctx, location, locale, withAudio)
		if errors.Is(err, core.ErrWeatherUnavailable) {
			return nil, fmt.Errorf("%s: %w", weather.Unavailable(location, locale), err)
		}
		return answer, err
	})
}

func cropCommand(c *cli.Context) error {
	sample := crop.SoilSample{
		N:           c.Float64("n"),
		P:           c.Float64("p"),
		K:           c.Float64("k"),
		Temperature: c.Float64("temperature"),
		Humidity:    c.Float64("humidity"),
		PH:          c.Float64("ph"),
		Rainfall:    c.Float64("rainfall"),
	}
	if err := sample.Validate(); err != nil {
		return err
	}
	return runAnswer(c, func(ctx context.Context, a *agrivoice.Assistant, locale core.Locale, withAudio bool) (*agrivoice.Answer, error) {
		return a.RecommendCrop(ctx, sample, locale, withAudio)
	})
}

func dosageCommand(c *cli.Context) error {
	return runAnswer(c, func(ctx context.Context, a *agrivoice.Assistant, locale core.Locale, withAudio bool) (*agrivoice.Answer, error) {
		return a.Dosage(ctx, c.String("pest"), c.Float64("area"), locale, withAudio)
	})
}

type answerFunc func(ctx context.Context, a *agrivoice.Assistant, locale core.Locale, withAudio bool) (*agrivoice.Answer, error)

// runAnswer opens an assistant, produces one answer, prints it and writes
// the audio file when --audio-out is given.
func runAnswer(c *cli.Context, fn answerFunc) error {
	locale, err := core.ParseLocale(c.String("locale"))
	if err != nil {
		return err
	}
	audioOut := c.String("audio-out")

	assistant, err := openAssistant(c.Context, appConfig(c))
	if err != nil {
		return err
	}
	defer assistant.Close()

	answer, err := fn(c.Context, assistant, locale, audioOut != "")
	if err != nil {
		return err
	}

	fmt.Fprintln(c.App.Writer, answer.Text)
	if answer.Match != nil {
		fmt.Fprintf(c.App.Writer, "scheme: %s (index %d, score %.4f)\n",
			answer.Match.Record.Name, answer.Match.Index, answer.Match.Score)
	}

	if audioOut != "" {
		if len(answer.Audio) == 0 {
			slog.Warn("no audio produced", "path", audioOut)
			return nil
		}
		if err := os.WriteFile(audioOut, answer.Audio, 0644); err != nil {
			return fmt.Errorf("failed to write audio: %w", err)
		}
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	ctx := c.Context
	cfg := appConfig(c)

	if cfg.Data.CacheDir == "" {
		return fmt.Errorf("a cache directory is required (--cache-dir or AGRIVOICE_DATA_CACHE_DIR)")
	}
	batchSize := c.Int("batch-size")
	if batchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	maxAttempts := c.Int("max-attempts")
	if maxAttempts <= 0 {
		return fmt.Errorf("max-attempts must be greater than 0")
	}
	reportInterval := c.Int("report-interval")
	if reportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	rows, err := dataset.LoadSchemesFile(cfg.Data.SchemesFile)
	if err != nil {
		return err
	}

	aiConfig := cfg.AIConfig()
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}
	provider, err := newProvider(aiConfig)
	if err != nil {
		return fmt.Errorf("failed to create AI provider: %w", err)
	}
	defer provider.Close()

	backend, err := badger.OpenBackend(cfg.Data.CacheDir, false)
	if err != nil {
		return fmt.Errorf("failed to open cache: %w", err)
	}
	defer backend.Close()

	cache, err := badger.NewEmbeddingCache(backend)
	if err != nil {
		return err
	}
	manifests := badger.NewManifestRepository(backend)

	tracker := progress.NewTracker(c.App.ErrWriter, "Embedding", "schemes", len(rows), reportInterval)
	opts := append(matcherOptions(cfg),
		scheme.WithCache(cache),
		scheme.WithBatchSize(batchSize),
		scheme.WithRetry(maxAttempts, cfg.Pool.RetryDelay),
		scheme.WithLoadProgress(tracker.Increment))
	matcher, err := scheme.NewMatcher(provider, opts...)
	if err != nil {
		return err
	}
	defer matcher.Release()

	cleared, err := cache.ClearEmbeddings(ctx, matcher.Model())
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	tracker.Start()
	corpus, err := matcher.Load(ctx, rows)
	if err != nil {
		return err
	}
	tracker.Finish()

	source := cfg.Data.SchemesFile
	if source == "" {
		source = dataset.DefaultSource
	}
	if err := manifests.SaveManifest(ctx, &core.Manifest{
		Model:       corpus.Model(),
		Fingerprint: corpus.Fingerprint(),
		Records:     corpus.Len(),
		Source:      source,
		UpdatedAt:   time.Now().UTC(),
	}); err != nil {
		return fmt.Errorf("failed to save manifest: %w", err)
	}

	fmt.Fprintf(c.App.Writer, "Re-embedded %d schemes with %s in %s (%d cached vectors discarded)\n",
		corpus.Len(), corpus.Model(), tracker.Elapsed().Round(time.Millisecond), cleared)
	return nil
}
