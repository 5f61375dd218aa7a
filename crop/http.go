package crop

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/poiesic/agrivoice/core"
)

const defaultTimeout = 10 * time.Second

var (
	// ErrEndpointRequired is returned when no classifier URL is configured.
	ErrEndpointRequired = errors.New("classifier endpoint is required")
)

// HTTPClassifier calls a model-serving endpoint that accepts
// {"features": [N, P, K, temperature, humidity, ph, rainfall]} and answers
// {"crop": "<label>"}.
type HTTPClassifier struct {
	endpoint   string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures an HTTPClassifier.
type Option func(*HTTPClassifier) error

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *HTTPClassifier) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *HTTPClassifier) error {
		c.logger = logger
		return nil
	}
}

// NewHTTPClassifier creates a classifier client for endpoint.
func NewHTTPClassifier(endpoint string, opts ...Option) (Classifier, error) {
	return newHTTPClassifier(endpoint, opts...)
}

func newHTTPClassifier(endpoint string, opts ...Option) (*HTTPClassifier, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, ErrEndpointRequired
	}
	c := &HTTPClassifier{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "crop")
	return c, nil
}

type predictRequest struct {
	Features []float64 `json:"features"`
}

type predictResponse struct {
	Crop string `json:"crop"`
}

// Predict validates the sample and asks the remote classifier for a label.
func (c *HTTPClassifier) Predict(ctx context.Context, sample SoilSample) (string, error) {
	if err := sample.Validate(); err != nil {
		return "", err
	}

	payload, err := json.Marshal(predictRequest{Features: sample.Features()})
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrPrediction, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %w", core.ErrPrediction, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("classifier request failed", "err", err)
		return "", fmt.Errorf("%w: %w", core.ErrPrediction, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("classifier rejected sample", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("%w: status %d", core.ErrPrediction, resp.StatusCode)
	}

	var out predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decoding response: %w", core.ErrPrediction, err)
	}
	label := strings.TrimSpace(out.Crop)
	if label == "" {
		return "", fmt.Errorf("%w: empty label", core.ErrPrediction)
	}

	c.logger.Debug("crop predicted", "crop", label)
	return label, nil
}
