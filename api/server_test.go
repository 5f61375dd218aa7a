package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/poiesic/agrivoice"
	"github.com/poiesic/agrivoice/ai/mock"
	"github.com/poiesic/agrivoice/core"
	"github.com/poiesic/agrivoice/crop"
	"github.com/poiesic/agrivoice/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	loanRow  = core.SchemeRow{Name: "A", Description: "Farmers get loan"}
	toolsRow = core.SchemeRow{Name: "B", Description: "Farmers get tools"}
)

type stubWeather struct{}

func (stubWeather) Current(_ context.Context, location string) (*weather.Report, error) {
	if location != "Nellore" {
		return nil, core.ErrWeatherUnavailable
	}
	return &weather.Report{City: "Nellore", Region: "Andhra Pradesh", Country: "India", Condition: "Clear", TempC: 31, Humidity: 60, WindKPH: 9}, nil
}

type stubClassifier struct{}

func (stubClassifier) Predict(context.Context, crop.SoilSample) (string, error) {
	return "maize", nil
}

func newTestServer(t *testing.T) (*Server, *mock.MockProvider) {
	t.Helper()
	embedder := mock.NewMockEmbedder().
		WithVector(core.NewSchemeRecord(loanRow).Context, []float32{1, 0}).
		WithVector(core.NewSchemeRecord(toolsRow).Context, []float32{0, 1}).
		WithVector("loan", []float32{1, 0})
	translator := mock.NewMockTranslator().
		WithPhrase("Farmers get loan", "hi", "किसानों को ऋण")
	provider := mock.NewMockProviderWithServices(embedder, translator).(*mock.MockProvider)

	assistant, err := agrivoice.NewAssistant(context.Background(),
		agrivoice.WithProvider(provider),
		agrivoice.WithSchemeRows([]core.SchemeRow{loanRow, toolsRow}),
		agrivoice.WithWeather(stubWeather{}),
		agrivoice.WithClassifier(stubClassifier{}),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = assistant.Close() })

	return NewServer(":0", assistant), provider
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decodeAnswer(t *testing.T, w *httptest.ResponseRecorder) AnswerResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp AnswerResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder, status int) JSONAPIError {
	t.Helper()
	require.Equal(t, status, w.Code, w.Body.String())
	assert.Equal(t, "application/vnd.api+json", w.Header().Get("Content-Type"))
	var resp JSONAPIErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Errors, 1)
	return resp.Errors[0]
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, HealthResponse{Status: "ok", Schemes: 2, Model: "mock-embedder"}, resp)
}

func TestQueryScheme(t *testing.T) {
	t.Run("english", func(t *testing.T) {
		s, _ := newTestServer(t)

		resp := decodeAnswer(t, do(t, s, http.MethodPost, "/api/v1/schemes/query", `{"question":"loan"}`))
		assert.Equal(t, "Farmers get loan", resp.Text)
		assert.Equal(t, "en", resp.Locale)
		require.NotNil(t, resp.Match)
		assert.Equal(t, "A", resp.Match.Name)
		assert.Equal(t, 0, resp.Match.Index)
		assert.Empty(t, resp.Audio)
	})

	t.Run("hindi with audio", func(t *testing.T) {
		s, _ := newTestServer(t)

		resp := decodeAnswer(t, do(t, s, http.MethodPost, "/api/v1/schemes/query",
			`{"question":"loan","locale":"हिन्दी","audio":true}`))
		assert.Equal(t, "किसानों को ऋण", resp.Text)
		assert.Equal(t, "hi", resp.Locale)
		assert.Equal(t, []byte("mp3:hi:किसानों को ऋण"), resp.Audio)
	})

	t.Run("empty question", func(t *testing.T) {
		s, _ := newTestServer(t)

		apiErr := decodeError(t, do(t, s, http.MethodPost, "/api/v1/schemes/query", `{"question":"  "}`), http.StatusBadRequest)
		assert.Equal(t, "Validation Error", apiErr.Title)
		assert.NotEmpty(t, apiErr.ID)
	})

	t.Run("invalid json", func(t *testing.T) {
		s, _ := newTestServer(t)
		decodeError(t, do(t, s, http.MethodPost, "/api/v1/schemes/query", `{`), http.StatusBadRequest)
	})

	t.Run("unknown locale", func(t *testing.T) {
		s, _ := newTestServer(t)
		decodeError(t, do(t, s, http.MethodPost, "/api/v1/schemes/query", `{"question":"loan","locale":"fr"}`), http.StatusBadRequest)
	})

	t.Run("oversized body", func(t *testing.T) {
		s, _ := newTestServer(t)
		body := `{"question":"` + strings.Repeat("a", maxJSONBytes) + `"}`
		apiErr := decodeError(t, do(t, s, http.MethodPost, "/api/v1/schemes/query", body), http.StatusRequestEntityTooLarge)
		assert.Equal(t, "Request Too Large", apiErr.Title)
	})

	t.Run("embedding outage", func(t *testing.T) {
		s, provider := newTestServer(t)
		provider.GetMockEmbedder().EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, errors.New("connection refused")
		}

		apiErr := decodeError(t, do(t, s, http.MethodPost, "/api/v1/schemes/query", `{"question":"loan"}`), http.StatusServiceUnavailable)
		assert.Equal(t, "Service Unavailable", apiErr.Title)
	})
}

func TestTranscribeScheme(t *testing.T) {
	newUpload := func(t *testing.T, audio string, fields map[string]string) *http.Request {
		t.Helper()
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		if audio != "" {
			part, err := mw.CreateFormFile("audio", "question.wav")
			require.NoError(t, err)
			_, err = part.Write([]byte(audio))
			require.NoError(t, err)
		}
		for k, v := range fields {
			require.NoError(t, mw.WriteField(k, v))
		}
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/schemes/transcribe", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		return req
	}

	t.Run("answers spoken question", func(t *testing.T) {
		s, provider := newTestServer(t)

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, newUpload(t, "loan", map[string]string{"locale": "en"}))

		resp := decodeAnswer(t, w)
		assert.Equal(t, "Farmers get loan", resp.Text)
		assert.Equal(t, "loan", resp.Match.Question)
		assert.Equal(t, 1, provider.GetMockTranscriber().CallCount())
	})

	t.Run("missing file", func(t *testing.T) {
		s, _ := newTestServer(t)

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, newUpload(t, "", map[string]string{"locale": "en"}))
		decodeError(t, w, http.StatusBadRequest)
	})

	t.Run("invalid reply flag", func(t *testing.T) {
		s, _ := newTestServer(t)

		w := httptest.NewRecorder()
		s.Handler().ServeHTTP(w, newUpload(t, "loan", map[string]string{"audio_reply": "maybe"}))
		decodeError(t, w, http.StatusBadRequest)
	})
}

func TestWeather(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("report", func(t *testing.T) {
		resp := decodeAnswer(t, do(t, s, http.MethodGet, "/api/v1/weather?location=Nellore&locale=te", ""))
		assert.Contains(t, resp.Text, "Nellore లో వాతావరణ నివేదిక")
		assert.Equal(t, "te", resp.Locale)
	})

	t.Run("unavailable renders localized message", func(t *testing.T) {
		apiErr := decodeError(t, do(t, s, http.MethodGet, "/api/v1/weather?location=Atlantis&locale=hi", ""), http.StatusServiceUnavailable)
		assert.Equal(t, weather.Unavailable("Atlantis", core.LocaleHindi), apiErr.Detail)
	})
}

func TestRecommendCrop(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("recommendation", func(t *testing.T) {
		resp := decodeAnswer(t, do(t, s, http.MethodPost, "/api/v1/crops/recommend",
			`{"n":80,"p":40,"k":40,"temperature":25,"humidity":70,"ph":6.5,"rainfall":100}`))
		assert.Equal(t, "Recommended crop: maize", resp.Text)
	})

	t.Run("out of range sample", func(t *testing.T) {
		decodeError(t, do(t, s, http.MethodPost, "/api/v1/crops/recommend",
			`{"n":80,"p":40,"k":40,"temperature":25,"humidity":70,"ph":19,"rainfall":100}`), http.StatusBadRequest)
	})
}

func TestDosage(t *testing.T) {
	s, _ := newTestServer(t)

	t.Run("line", func(t *testing.T) {
		resp := decodeAnswer(t, do(t, s, http.MethodPost, "/api/v1/dosage", `{"pest":"thrips","area":0.5}`))
		assert.Equal(t, "Apply 500 ml of Fipronil 5% SC for thrips on 0.5 hectares.", resp.Text)
	})

	t.Run("unknown pest", func(t *testing.T) {
		decodeError(t, do(t, s, http.MethodPost, "/api/v1/dosage", `{"pest":"dragon","area":1}`), http.StatusBadRequest)
	})

	t.Run("invalid area", func(t *testing.T) {
		decodeError(t, do(t, s, http.MethodPost, "/api/v1/dosage", `{"pest":"thrips","area":-2}`), http.StatusBadRequest)
	})
}

func TestPests(t *testing.T) {
	s, _ := newTestServer(t)

	w := do(t, s, http.MethodGet, "/api/v1/pests", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PestsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Pests, "thrips")
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/schemes/query", nil)
	req.Header.Set("Origin", "https://kisan.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{core.ErrEmptyQuery, http.StatusBadRequest},
		{core.ErrInvalidLocale, http.StatusBadRequest},
		{core.ErrInvalidSoilSample, http.StatusBadRequest},
		{core.ErrUnknownPest, http.StatusBadRequest},
		{core.ErrInvalidArea, http.StatusBadRequest},
		{core.ErrEmbedding, http.StatusServiceUnavailable},
		{core.ErrWeatherUnavailable, http.StatusServiceUnavailable},
		{core.ErrPrediction, http.StatusServiceUnavailable},
		{core.ErrSpeech, http.StatusServiceUnavailable},
		{core.ErrDataLoad, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			status, _ := statusFor(tt.err)
			assert.Equal(t, tt.want, status)
		})
	}
}
