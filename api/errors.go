package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/poiesic/agrivoice/core"
)

var (
	// ErrBadRequest marks malformed request bodies and parameters.
	ErrBadRequest = errors.New("bad request")

	// ErrRequestTooLarge marks request bodies over the size limit.
	ErrRequestTooLarge = errors.New("request body too large")
)

// JSONAPIError represents a JSON:API error object.
type JSONAPIError struct {
	Status string `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail,omitempty"`
	ID     string `json:"id,omitempty"`
}

// JSONAPIErrorResponse wraps the error objects.
type JSONAPIErrorResponse struct {
	Errors []JSONAPIError `json:"errors"`
}

// statusFor maps domain errors onto HTTP status codes and titles.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrRequestTooLarge):
		return http.StatusRequestEntityTooLarge, "Request Too Large"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, core.ErrEmptyQuery),
		errors.Is(err, core.ErrInvalidLocale),
		errors.Is(err, core.ErrInvalidSoilSample),
		errors.Is(err, core.ErrUnknownPest),
		errors.Is(err, core.ErrInvalidArea):
		return http.StatusBadRequest, "Validation Error"
	case errors.Is(err, core.ErrEmbedding),
		errors.Is(err, core.ErrWeatherUnavailable),
		errors.Is(err, core.ErrPrediction),
		errors.Is(err, core.ErrSpeech):
		return http.StatusServiceUnavailable, "Service Unavailable"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// WriteError writes a JSON:API formatted error. detail overrides the error
// text when non-empty.
func WriteError(w http.ResponseWriter, r *http.Request, err error, detail string, logger *slog.Logger) {
	status, title := statusFor(err)
	if detail == "" {
		detail = err.Error()
	}
	requestID := middleware.GetReqID(r.Context())

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			"request_id", requestID,
			"status", status,
			"err", err,
			"path", r.URL.Path,
		)
	}

	w.Header().Set("Content-Type", "application/vnd.api+json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(JSONAPIErrorResponse{
		Errors: []JSONAPIError{{
			Status: http.StatusText(status),
			Title:  title,
			Detail: detail,
			ID:     requestID,
		}},
	})
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
