// Package config reads AgriVoice settings from the environment.
package config

import (
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/poiesic/agrivoice/ai"
)

// Prefix is prepended to every environment variable, e.g. AGRIVOICE_SERVER_PORT.
const Prefix = "AGRIVOICE"

// Defaults mirrored by the struct tags below.
const (
	DefaultHost      = "0.0.0.0"
	DefaultPort      = 8080
	DefaultLogLevel  = "info"
	DefaultBatchSize = 32
	DefaultTimeout   = 10 * time.Second
)

// AppConfig holds all environment-based configuration.
// Nested structs use an underscore delimiter (e.g. AGRIVOICE_AI_EMBEDDING_MODEL).
type AppConfig struct {
	// LogLevel is debug, info, warn or error.
	// Env: AGRIVOICE_LOG_LEVEL (default: info)
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Server  ServerEnv  `envconfig:"SERVER"`
	AI      AIEnv      `envconfig:"AI"`
	Weather WeatherEnv `envconfig:"WEATHER"`
	Crop    CropEnv    `envconfig:"CROP"`
	Data    DataEnv    `envconfig:"DATA"`
	Pool    PoolEnv    `envconfig:"POOL"`
}

// ServerEnv configures the HTTP API.
type ServerEnv struct {
	// Env: AGRIVOICE_SERVER_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Env: AGRIVOICE_SERVER_PORT (default: 8080)
	Port int `envconfig:"PORT" default:"8080"`

	// AllowedOrigins is a comma-separated CORS origin list.
	// Env: AGRIVOICE_SERVER_ALLOWED_ORIGINS (default: *)
	AllowedOrigins []string `envconfig:"ALLOWED_ORIGINS" default:"*"`

	// Env: AGRIVOICE_SERVER_SHUTDOWN_TIMEOUT (default: 10s)
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// AIEnv configures the embedding, translation and speech services.
type AIEnv struct {
	// Host is used for both embeddings and translation unless overridden.
	// Env: AGRIVOICE_AI_HOST (default: http://localhost:11434/v1)
	Host string `envconfig:"HOST" default:"http://localhost:11434/v1"`

	// Env: AGRIVOICE_AI_EMBEDDING_HOST
	EmbeddingHost string `envconfig:"EMBEDDING_HOST"`

	// Env: AGRIVOICE_AI_TRANSLATOR_HOST
	TranslatorHost string `envconfig:"TRANSLATOR_HOST"`

	// Env: AGRIVOICE_AI_EMBEDDING_MODEL (default: all-minilm)
	EmbeddingModel string `envconfig:"EMBEDDING_MODEL" default:"all-minilm"`

	// Env: AGRIVOICE_AI_TRANSLATOR_MODEL (default: qwen2.5:3b)
	TranslatorModel string `envconfig:"TRANSLATOR_MODEL" default:"qwen2.5:3b"`

	// Env: AGRIVOICE_AI_API_KEY (default: none)
	APIKey string `envconfig:"API_KEY" default:"none"`

	// Env: AGRIVOICE_AI_SPEECH_HOST (default: https://api.openai.com/v1)
	SpeechHost string `envconfig:"SPEECH_HOST" default:"https://api.openai.com/v1"`

	// Env: AGRIVOICE_AI_SPEECH_MODEL (default: tts-1)
	SpeechModel string `envconfig:"SPEECH_MODEL" default:"tts-1"`

	// Env: AGRIVOICE_AI_SPEECH_VOICE (default: alloy)
	SpeechVoice string `envconfig:"SPEECH_VOICE" default:"alloy"`

	// Env: AGRIVOICE_AI_TRANSCRIPTION_MODEL (default: whisper-1)
	TranscriptionModel string `envconfig:"TRANSCRIPTION_MODEL" default:"whisper-1"`

	// SpeechAPIKey enables speech. Falls back to OPENAI_API_KEY.
	// Env: AGRIVOICE_AI_SPEECH_API_KEY
	SpeechAPIKey string `envconfig:"SPEECH_API_KEY"`
}

// WeatherEnv configures the weather client.
type WeatherEnv struct {
	// Env: AGRIVOICE_WEATHER_BASE_URL (default: https://api.weatherapi.com/v1)
	BaseURL string `envconfig:"BASE_URL" default:"https://api.weatherapi.com/v1"`

	// APIKey enables weather reports. Falls back to WEATHER_API_KEY.
	// Env: AGRIVOICE_WEATHER_API_KEY
	APIKey string `envconfig:"API_KEY"`

	// Env: AGRIVOICE_WEATHER_TIMEOUT (default: 10s)
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// CropEnv configures the crop classifier client.
type CropEnv struct {
	// Endpoint enables crop recommendations.
	// Env: AGRIVOICE_CROP_ENDPOINT
	Endpoint string `envconfig:"ENDPOINT"`

	// Env: AGRIVOICE_CROP_TIMEOUT (default: 10s)
	Timeout time.Duration `envconfig:"TIMEOUT" default:"10s"`
}

// DataEnv locates the reference tables and the embedding cache.
type DataEnv struct {
	// SchemesFile is a CSV scheme table. Empty uses the built-in table.
	// Env: AGRIVOICE_DATA_SCHEMES_FILE
	SchemesFile string `envconfig:"SCHEMES_FILE"`

	// TreatmentsFile is a YAML pest treatment table. Empty uses the built-in table.
	// Env: AGRIVOICE_DATA_TREATMENTS_FILE
	TreatmentsFile string `envconfig:"TREATMENTS_FILE"`

	// CacheDir holds the embedding cache. Empty keeps it in memory.
	// Env: AGRIVOICE_DATA_CACHE_DIR
	CacheDir string `envconfig:"CACHE_DIR"`
}

// PoolEnv configures corpus embedding concurrency.
type PoolEnv struct {
	// Size is the number of concurrent embedding batches. 0 picks NumCPU/2.
	// Env: AGRIVOICE_POOL_SIZE (default: 0)
	Size int `envconfig:"SIZE" default:"0"`

	// Env: AGRIVOICE_POOL_BATCH_SIZE (default: 32)
	BatchSize int `envconfig:"BATCH_SIZE" default:"32"`

	// MaxAttempts bounds the tries per corpus embedding batch. Queries are
	// never retried.
	// Env: AGRIVOICE_POOL_MAX_ATTEMPTS (default: 1)
	MaxAttempts int `envconfig:"MAX_ATTEMPTS" default:"1"`

	// Env: AGRIVOICE_POOL_RETRY_DELAY (default: 500ms)
	RetryDelay time.Duration `envconfig:"RETRY_DELAY" default:"500ms"`
}

// LoadFromEnv loads configuration from AGRIVOICE_ environment variables.
func LoadFromEnv() (AppConfig, error) {
	var cfg AppConfig
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return AppConfig{}, err
	}
	if cfg.Weather.APIKey == "" {
		cfg.Weather.APIKey = os.Getenv("WEATHER_API_KEY")
	}
	if cfg.AI.SpeechAPIKey == "" {
		cfg.AI.SpeechAPIKey = os.Getenv("OPENAI_API_KEY")
	}
	return cfg, nil
}

// AIConfig converts the AI section into an ai.Config.
func (c AppConfig) AIConfig() *ai.Config {
	embeddingHost := c.AI.Host
	if c.AI.EmbeddingHost != "" {
		embeddingHost = c.AI.EmbeddingHost
	}
	translatorHost := c.AI.Host
	if c.AI.TranslatorHost != "" {
		translatorHost = c.AI.TranslatorHost
	}
	return ai.NewConfig(
		ai.WithEmbeddingHost(embeddingHost),
		ai.WithTranslatorHost(translatorHost),
		ai.WithEmbeddingModel(c.AI.EmbeddingModel),
		ai.WithTranslatorModel(c.AI.TranslatorModel),
		ai.WithAPIKey(c.AI.APIKey),
		ai.WithSpeechHost(c.AI.SpeechHost),
		ai.WithSpeechModel(c.AI.SpeechModel, c.AI.SpeechVoice),
		ai.WithTranscriptionModel(c.AI.TranscriptionModel),
		ai.WithSpeechAPIKey(c.AI.SpeechAPIKey),
	)
}
