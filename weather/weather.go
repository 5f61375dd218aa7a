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

// Package weather fetches current conditions from a weatherapi.com compatible
// service and renders them per locale.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/poiesic/agrivoice/core"
)

// DefaultBaseURL is the public weatherapi.com endpoint.
const DefaultBaseURL = "https://api.weatherapi.com/v1"

const defaultTimeout = 10 * time.Second

var (
	// ErrAPIKeyRequired is returned when the client is created without a key.
	ErrAPIKeyRequired = errors.New("weather API key is required")
)

// Report holds the current conditions for a location.
type Report struct {
	City        string
	Region      string
	Country     string
	Condition   string
	TempC       float64
	Humidity    int
	WindKPH     float64
	LastUpdated string
}

// Provider looks up current weather.
type Provider interface {
	Current(ctx context.Context, location string) (*Report, error)
}

// Client queries the current.json endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client) error

// WithBaseURL overrides the service endpoint.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) error {
		if baseURL == "" {
			return errors.New("base URL cannot be empty")
		}
		c.baseURL = strings.TrimSuffix(baseURL, "/")
		return nil
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) error {
		if client == nil {
			return errors.New("http client cannot be nil")
		}
		c.httpClient = client
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		c.logger = logger
		return nil
	}
}

// NewClient creates a weather client for the given API key.
func NewClient(apiKey string, opts ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, ErrAPIKeyRequired
	}
	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	c.logger = c.logger.With("component", "weather")
	return c, nil
}

type currentResponse struct {
	Location struct {
		Name    string `json:"name"`
		Region  string `json:"region"`
		Country string `json:"country"`
	} `json:"location"`
	Current struct {
		LastUpdated string  `json:"last_updated"`
		TempC       float64 `json:"temp_c"`
		Humidity    int     `json:"humidity"`
		WindKPH     float64 `json:"wind_kph"`
		Condition   struct {
			Text string `json:"text"`
		} `json:"condition"`
	} `json:"current"`
}

// Current fetches the current conditions. location may be a city name, a
// PIN code or "lat,lon". Any non-200 answer yields ErrWeatherUnavailable.
func (c *Client) Current(ctx context.Context, location string) (*Report, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, fmt.Errorf("%w: location is empty", core.ErrWeatherUnavailable)
	}

	query := url.Values{}
	query.Set("key", c.apiKey)
	query.Set("q", location)
	endpoint := c.baseURL + "/current.json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrWeatherUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("weather request failed", "location", location, "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrWeatherUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.Warn("weather lookup rejected", "location", location, "status", resp.StatusCode)
		return nil, fmt.Errorf("%w: status %d", core.ErrWeatherUnavailable, resp.StatusCode)
	}

	var body currentResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %w", core.ErrWeatherUnavailable, err)
	}

	report := &Report{
		City:        body.Location.Name,
		Region:      body.Location.Region,
		Country:     body.Location.Country,
		Condition:   body.Current.Condition.Text,
		TempC:       body.Current.TempC,
		Humidity:    body.Current.Humidity,
		WindKPH:     body.Current.WindKPH,
		LastUpdated: body.Current.LastUpdated,
	}
	c.logger.Debug("weather fetched", "location", location, "city", report.City, "temp_c", report.TempC)
	return report, nil
}
