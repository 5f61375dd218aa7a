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

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/agrivoice/ai"
	"github.com/poiesic/agrivoice/ai/openai"
	"github.com/poiesic/agrivoice/internal/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

// newProvider builds the AI provider. Tests replace it with a mock.
var newProvider = func(cfg *ai.Config) (ai.AIProvider, error) {
	return openai.NewProvider(cfg)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func localeFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "locale",
		Usage: "Answer language (en, te, hi)",
		Value: "en",
	}
}

func audioOutFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "audio-out",
		Usage: "Write the spoken answer to this MP3 file",
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "agrivoice",
		Usage: "Multilingual assistant for farmers: schemes, weather, crops and pest dosage",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Load environment variables from this file if it exists",
				Value: ".env",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Embedding cache directory (default: in memory)",
			},
			&cli.StringFlag{
				Name:  "schemes",
				Usage: "Scheme table CSV (default: built-in table)",
			},
			&cli.StringFlag{
				Name:  "treatments",
				Usage: "Pest treatment table YAML (default: built-in table)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "host",
						Usage: "Address to bind to",
					},
					&cli.IntFlag{
						Name:  "port",
						Usage: "Port to listen on",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Find the government scheme that answers a question",
				ArgsUsage: "<question...>",
				Action:    askCommand,
				Flags:     []cli.Flag{localeFlag(), audioOutFlag()},
			},
			{
				Name:      "weather",
				Usage:     "Show current weather for a city, PIN code or lat,lon",
				ArgsUsage: "<location>",
				Action:    weatherCommand,
				Flags:     []cli.Flag{localeFlag(), audioOutFlag()},
			},
			{
				Name:   "crop",
				Usage:  "Recommend a crop for a soil sample",
				Action: cropCommand,
				Flags: []cli.Flag{
					&cli.Float64Flag{Name: "n", Usage: "Nitrogen (0-200)", Required: true},
					&cli.Float64Flag{Name: "p", Usage: "Phosphorus (0-200)", Required: true},
					&cli.Float64Flag{Name: "k", Usage: "Potassium (0-200)", Required: true},
					&cli.Float64Flag{Name: "temperature", Usage: "Temperature in °C (0-50)", Required: true},
					&cli.Float64Flag{Name: "humidity", Usage: "Relative humidity in % (0-100)", Required: true},
					&cli.Float64Flag{Name: "ph", Usage: "Soil pH (0-14)", Required: true},
					&cli.Float64Flag{Name: "rainfall", Usage: "Rainfall in mm (0-500)", Required: true},
					localeFlag(),
					audioOutFlag(),
				},
			},
			{
				Name:   "dosage",
				Usage:  "Compute the treatment quantity for a pest",
				Action: dosageCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "pest", Usage: "Pest name", Required: true},
					&cli.Float64Flag{Name: "area", Usage: "Field area in hectares", Required: true},
					localeFlag(),
					audioOutFlag(),
				},
			},
			{
				Name:   "reembed",
				Usage:  "Clear and rebuild the embedding cache for the scheme table",
				Action: reembedCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of schemes per embedding call",
						Value: config.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "max-attempts",
						Usage: "Maximum attempts per embedding batch",
						Value: 3,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N schemes",
						Value: 10,
					},
				},
			},
		},
	}
}

// setup loads configuration, applies global flag overrides and installs the logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("env-file"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
	if c.IsSet("cache-dir") {
		cfg.Data.CacheDir = c.String("cache-dir")
	}
	if c.IsSet("schemes") {
		cfg.Data.SchemesFile = c.String("schemes")
	}
	if c.IsSet("treatments") {
		cfg.Data.TreatmentsFile = c.String("treatments")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = &cfg
	return nil
}

func newLogger(levelStr string) (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(levelStr) {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})), nil
}

func appConfig(c *cli.Context) *config.AppConfig {
	return c.App.Metadata[configKey].(*config.AppConfig)
}
