package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/agrivoice/ai"
	"github.com/poiesic/agrivoice/ai/mock"
	"github.com/poiesic/agrivoice/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// useMockProvider swaps the AI provider for a mock for the duration of the test.
func useMockProvider(t *testing.T) *mock.MockProvider {
	t.Helper()
	provider := mock.NewMockProvider().(*mock.MockProvider)
	original := newProvider
	newProvider = func(*ai.Config) (ai.AIProvider, error) {
		return provider, nil
	}
	t.Cleanup(func() { newProvider = original })
	return provider
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	envFile := filepath.Join(t.TempDir(), "missing.env")
	err := app.Run(append([]string{"agrivoice", "--env-file", envFile}, args...))
	return out.String(), err
}

func findStringFlag(flags []cli.Flag, name string) *cli.StringFlag {
	for _, flag := range flags {
		if f, ok := flag.(*cli.StringFlag); ok && f.Name == name {
			return f
		}
	}
	return nil
}

func findCommand(app *cli.App, name string) *cli.Command {
	for _, cmd := range app.Commands {
		if cmd.Name == name {
			return cmd
		}
	}
	return nil
}

func TestAppFlags(t *testing.T) {
	app := newApp()

	t.Run("env-file defaults to .env", func(t *testing.T) {
		f := findStringFlag(app.Flags, "env-file")
		require.NotNil(t, f)
		assert.Equal(t, ".env", f.Value)
	})

	t.Run("cache-dir has no default value", func(t *testing.T) {
		f := findStringFlag(app.Flags, "cache-dir")
		require.NotNil(t, f)
		assert.Empty(t, f.Value)
	})

	t.Run("answer commands default to English", func(t *testing.T) {
		for _, name := range []string{"ask", "weather", "crop", "dosage"} {
			cmd := findCommand(app, name)
			require.NotNil(t, cmd, name)
			f := findStringFlag(cmd.Flags, "locale")
			require.NotNil(t, f, name)
			assert.Equal(t, "en", f.Value, name)
		}
	})
}

func TestNewLogger(t *testing.T) {
	for _, level := range []string{"debug", "info", "WARN", "error", ""} {
		logger, err := newLogger(level)
		require.NoError(t, err, level)
		assert.NotNil(t, logger)
	}

	_, err := newLogger("verbose")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestInvalidLogLevel(t *testing.T) {
	useMockProvider(t)

	_, err := runApp(t, "--log-level", "loud", "dosage", "--pest", "aphids", "--area", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestDosageCommand(t *testing.T) {
	useMockProvider(t)

	t.Run("prints the dosage line", func(t *testing.T) {
		out, err := runApp(t, "dosage", "--pest", "Aphids", "--area", "2")
		require.NoError(t, err)
		assert.Contains(t, out, "Imidacloprid")
	})

	t.Run("pest is required", func(t *testing.T) {
		_, err := runApp(t, "dosage", "--area", "2")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "pest")
	})

	t.Run("unknown pest fails", func(t *testing.T) {
		_, err := runApp(t, "dosage", "--pest", "dragons", "--area", "2")
		require.Error(t, err)
	})

	t.Run("invalid locale fails", func(t *testing.T) {
		_, err := runApp(t, "dosage", "--pest", "aphids", "--area", "2", "--locale", "fr")
		require.Error(t, err)
	})
}

func TestAskCommand(t *testing.T) {
	provider := useMockProvider(t)

	t.Run("prints the matched scheme", func(t *testing.T) {
		out, err := runApp(t, "ask", "how", "do", "I", "get", "crop", "insurance")
		require.NoError(t, err)
		assert.Contains(t, out, "scheme: ")
		assert.Contains(t, out, "score ")
	})

	t.Run("writes audio", func(t *testing.T) {
		audioPath := filepath.Join(t.TempDir(), "answer.mp3")
		_, err := runApp(t, "ask", "--audio-out", audioPath, "loan")
		require.NoError(t, err)

		data, err := os.ReadFile(audioPath)
		require.NoError(t, err)
		assert.Contains(t, string(data), "mp3:en:")
		assert.Positive(t, provider.GetMockSynthesizer().CallCount())
	})

	t.Run("question is required", func(t *testing.T) {
		_, err := runApp(t, "ask")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "usage")
	})
}

func TestCropCommand(t *testing.T) {
	useMockProvider(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"crop": "rice"})
	}))
	defer server.Close()
	t.Setenv("AGRIVOICE_CROP_ENDPOINT", server.URL)

	soil := []string{"--n", "90", "--p", "42", "--k", "43", "--temperature", "20.8",
		"--humidity", "82", "--ph", "6.5", "--rainfall", "202.9"}

	t.Run("prints the recommendation", func(t *testing.T) {
		out, err := runApp(t, append([]string{"crop"}, soil...)...)
		require.NoError(t, err)
		assert.Contains(t, out, "rice")
	})

	t.Run("rejects out of range values", func(t *testing.T) {
		args := append([]string{"crop"}, soil...)
		args = append(args, "--ph", "15")
		_, err := runApp(t, args...)
		require.Error(t, err)
	})

	t.Run("all features are required", func(t *testing.T) {
		_, err := runApp(t, "crop", "--n", "90")
		require.Error(t, err)
	})
}

func TestWeatherCommand(t *testing.T) {
	useMockProvider(t)
	t.Setenv("AGRIVOICE_WEATHER_API_KEY", "")
	t.Setenv("WEATHER_API_KEY", "")

	_, err := runApp(t, "weather", "Guntur")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Guntur")
}

func TestReembedCommand(t *testing.T) {
	t.Run("requires a cache directory", func(t *testing.T) {
		useMockProvider(t)
		t.Setenv("AGRIVOICE_DATA_CACHE_DIR", "")

		_, err := runApp(t, "reembed")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cache directory")
	})

	t.Run("rejects invalid batch size", func(t *testing.T) {
		useMockProvider(t)

		_, err := runApp(t, "--cache-dir", t.TempDir(), "reembed", "--batch-size", "0")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch-size")
	})

	t.Run("rebuilds cache and manifest", func(t *testing.T) {
		provider := useMockProvider(t)
		cacheDir := t.TempDir()

		out, err := runApp(t, "--cache-dir", cacheDir, "reembed", "--batch-size", "4")
		require.NoError(t, err)
		assert.Contains(t, out, "Re-embedded")
		embedded := provider.GetMockEmbedder().TextCount()
		assert.Positive(t, embedded)

		// A second run discards the cached vectors and embeds everything again.
		out, err = runApp(t, "--cache-dir", cacheDir, "reembed")
		require.NoError(t, err)
		assert.Contains(t, out, "cached vectors discarded")
		assert.Equal(t, 2*embedded, provider.GetMockEmbedder().TextCount())

		backend, err := badger.OpenBackend(cacheDir, false)
		require.NoError(t, err)
		defer backend.Close()
		manifest, err := badger.NewManifestRepository(backend).LoadManifest(t.Context())
		require.NoError(t, err)
		assert.Equal(t, embedded, manifest.Records)
		assert.Equal(t, "embedded:gov_schemes.csv", manifest.Source)
	})
}
