package weather

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/agrivoice/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hyderabadResponse = `{
  "location": {"name": "Hyderabad", "region": "Telangana", "country": "India"},
  "current": {
    "last_updated": "2025-06-01 14:30",
    "temp_c": 34.0,
    "humidity": 41,
    "wind_kph": 15.5,
    "condition": {"text": "Partly cloudy"}
  }
}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient("test-key", WithBaseURL(server.URL), WithHTTPClient(server.Client()))
	require.NoError(t, err)
	return client
}

func TestNewClient(t *testing.T) {
	t.Run("requires key", func(t *testing.T) {
		_, err := NewClient("")
		assert.ErrorIs(t, err, ErrAPIKeyRequired)
	})

	t.Run("rejects empty base URL", func(t *testing.T) {
		_, err := NewClient("k", WithBaseURL(""))
		assert.Error(t, err)
	})

	t.Run("defaults", func(t *testing.T) {
		client, err := NewClient("k")
		require.NoError(t, err)
		assert.Equal(t, DefaultBaseURL, client.baseURL)
	})
}

func TestClientCurrent(t *testing.T) {
	t.Run("parses report", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/current.json", r.URL.Path)
			assert.Equal(t, "test-key", r.URL.Query().Get("key"))
			assert.Equal(t, "Hyderabad", r.URL.Query().Get("q"))
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(hyderabadResponse))
		})

		report, err := client.Current(context.Background(), " Hyderabad ")
		require.NoError(t, err)
		assert.Equal(t, &Report{
			City:        "Hyderabad",
			Region:      "Telangana",
			Country:     "India",
			Condition:   "Partly cloudy",
			TempC:       34,
			Humidity:    41,
			WindKPH:     15.5,
			LastUpdated: "2025-06-01 14:30",
		}, report)
	})

	t.Run("coordinates are passed through", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "17.38,78.48", r.URL.Query().Get("q"))
			_, _ = w.Write([]byte(hyderabadResponse))
		})

		_, err := client.Current(context.Background(), "17.38,78.48")
		require.NoError(t, err)
	})

	t.Run("non-200 is unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":1006,"message":"No matching location found."}}`))
		})

		_, err := client.Current(context.Background(), "Atlantis")
		assert.ErrorIs(t, err, core.ErrWeatherUnavailable)
	})

	t.Run("malformed body is unavailable", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`not json`))
		})

		_, err := client.Current(context.Background(), "Hyderabad")
		assert.ErrorIs(t, err, core.ErrWeatherUnavailable)
	})

	t.Run("empty location", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			t.Error("no request expected")
		})

		_, err := client.Current(context.Background(), "  ")
		assert.ErrorIs(t, err, core.ErrWeatherUnavailable)
	})
}

func TestFormat(t *testing.T) {
	report := &Report{
		City:      "Guntur",
		Region:    "Andhra Pradesh",
		Country:   "India",
		Condition: "Sunny",
		TempC:     36.2,
		Humidity:  30,
		WindKPH:   12,
	}

	t.Run("english", func(t *testing.T) {
		assert.Equal(t,
			"Weather in Guntur, Andhra Pradesh, India:\nCondition: Sunny\nTemperature: 36.2°C\nHumidity: 30%\nWind Speed: 12 kph",
			Format(report, core.LocaleEnglish))
	})

	t.Run("telugu", func(t *testing.T) {
		text := Format(report, core.LocaleTelugu)
		assert.Contains(t, text, "Guntur లో వాతావరణ నివేదిక")
		assert.Contains(t, text, "తేమ: 30%")
		assert.Contains(t, text, "గాలివేగం: 12 కి.మీ/గం")
		assert.NotContains(t, text, "Andhra Pradesh")
		assert.NotContains(t, text, "%!")
	})

	t.Run("hindi", func(t *testing.T) {
		text := Format(report, core.LocaleHindi)
		assert.Contains(t, text, "Guntur में मौसम की जानकारी")
		assert.Contains(t, text, "तापमान: 36.2°C")
		assert.NotContains(t, text, "%!")
	})
}

func TestUnavailable(t *testing.T) {
	assert.Equal(t, "❌ Weather information not available for 'Atlantis'.", Unavailable("Atlantis", core.LocaleEnglish))
	assert.Contains(t, Unavailable("Atlantis", core.LocaleTelugu), "'Atlantis' యొక్క")
	assert.Contains(t, Unavailable("Atlantis", core.LocaleHindi), "'Atlantis' के मौसम")
}
