package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/poiesic/agrivoice/core"
	"github.com/poiesic/agrivoice/crop"
	"github.com/poiesic/agrivoice/weather"
)

const (
	// maxAudioBytes bounds uploaded questions.
	maxAudioBytes = 10 << 20

	// maxJSONBytes bounds JSON request bodies.
	maxJSONBytes = 1 << 20
)

func (s *Server) schemeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/query", s.queryScheme)
	router.Post("/transcribe", s.transcribeScheme)
	return router
}

// health handles GET /health.
func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if corpus := s.assistant.Corpus(); corpus != nil {
		resp.Schemes = corpus.Len()
		resp.Model = corpus.Model()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// queryScheme handles POST /api/v1/schemes/query.
func (s *Server) queryScheme(w http.ResponseWriter, r *http.Request) {
	var body SchemeQueryRequest
	if !s.decode(w, r, &body) {
		return
	}
	locale, ok := s.locale(w, r, body.Locale)
	if !ok {
		return
	}

	answer, err := s.assistant.AskScheme(r.Context(), body.Question, locale, body.Audio)
	if err != nil {
		WriteError(w, r, err, "", s.logger)
		return
	}
	WriteJSON(w, http.StatusOK, newAnswerResponse(answer))
}

// transcribeScheme handles POST /api/v1/schemes/transcribe with a multipart
// "audio" file and optional "locale" and "audio_reply" fields.
func (s *Server) transcribeScheme(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxAudioBytes)
	if err := r.ParseMultipartForm(maxAudioBytes); err != nil {
		WriteError(w, r, bodyError(err), "", s.logger)
		return
	}
	file, header, err := r.FormFile("audio")
	if err != nil {
		WriteError(w, r, fmt.Errorf("%w: audio file is required", ErrBadRequest), "", s.logger)
		return
	}
	defer file.Close()

	locale, ok := s.locale(w, r, r.FormValue("locale"))
	if !ok {
		return
	}
	withAudio, ok := s.flag(w, r, r.FormValue("audio_reply"))
	if !ok {
		return
	}

	answer, err := s.assistant.AskSchemeAudio(r.Context(), file, header.Filename, locale, withAudio)
	if err != nil {
		WriteError(w, r, err, "", s.logger)
		return
	}
	WriteJSON(w, http.StatusOK, newAnswerResponse(answer))
}

// weather handles GET /api/v1/weather?location=&locale=&audio=.
func (s *Server) weather(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	locale, ok := s.locale(w, r, query.Get("locale"))
	if !ok {
		return
	}
	withAudio, ok := s.flag(w, r, query.Get("audio"))
	if !ok {
		return
	}
	location := query.Get("location")

	answer, err := s.assistant.Weather(r.Context(), location, locale, withAudio)
	if err != nil {
		WriteError(w, r, err, weather.Unavailable(location, locale), s.logger)
		return
	}
	WriteJSON(w, http.StatusOK, newAnswerResponse(answer))
}

// recommendCrop handles POST /api/v1/crops/recommend.
func (s *Server) recommendCrop(w http.ResponseWriter, r *http.Request) {
	var body CropRequest
	if !s.decode(w, r, &body) {
		return
	}
	locale, ok := s.locale(w, r, body.Locale)
	if !ok {
		return
	}

	sample := crop.SoilSample{
		N:           body.N,
		P:           body.P,
		K:           body.K,
		Temperature: body.Temperature,
		Humidity:    body.Humidity,
		PH:          body.PH,
		Rainfall:    body.Rainfall,
	}
	answer, err := s.assistant.RecommendCrop(r.Context(), sample, locale, body.Audio)
	if err != nil {
		WriteError(w, r, err, "", s.logger)
		return
	}
	WriteJSON(w, http.StatusOK, newAnswerResponse(answer))
}

// dosage handles POST /api/v1/dosage.
func (s *Server) dosage(w http.ResponseWriter, r *http.Request) {
	var body DosageRequest
	if !s.decode(w, r, &body) {
		return
	}
	locale, ok := s.locale(w, r, body.Locale)
	if !ok {
		return
	}

	answer, err := s.assistant.Dosage(r.Context(), body.Pest, body.Area, locale, body.Audio)
	if err != nil {
		WriteError(w, r, err, "", s.logger)
		return
	}
	WriteJSON(w, http.StatusOK, newAnswerResponse(answer))
}

// pests handles GET /api/v1/pests.
func (s *Server) pests(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, PestsResponse{Pests: s.assistant.Pests()})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, maxJSONBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		WriteError(w, r, bodyError(fmt.Errorf("invalid JSON body: %w", err)), "", s.logger)
		return false
	}
	return true
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return fmt.Errorf("%w: limit is %d bytes", ErrRequestTooLarge, tooLarge.Limit)
	}
	return fmt.Errorf("%w: %w", ErrBadRequest, err)
}

// locale parses a locale code or label. Empty means English.
func (s *Server) locale(w http.ResponseWriter, r *http.Request, value string) (core.Locale, bool) {
	if value == "" {
		return core.LocaleEnglish, true
	}
	locale, err := core.ParseLocale(value)
	if err != nil {
		WriteError(w, r, err, "", s.logger)
		return 0, false
	}
	return locale, true
}

func (s *Server) flag(w http.ResponseWriter, r *http.Request, value string) (bool, bool) {
	if value == "" {
		return false, true
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		WriteError(w, r, fmt.Errorf("%w: invalid boolean %q", ErrBadRequest, value), "", s.logger)
		return false, false
	}
	return b, true
}
