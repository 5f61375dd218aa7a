// Package api serves the assistant over HTTP.
package api

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/poiesic/agrivoice"
	"github.com/poiesic/agrivoice/core"
	"github.com/poiesic/agrivoice/crop"
)

// Assistant is the behavior the HTTP handlers need from agrivoice.Assistant.
type Assistant interface {
	AskScheme(ctx context.Context, question string, locale core.Locale, withAudio bool) (*agrivoice.Answer, error)
	AskSchemeAudio(ctx context.Context, audio io.Reader, filename string, locale core.Locale, withAudio bool) (*agrivoice.Answer, error)
	Weather(ctx context.Context, location string, locale core.Locale, withAudio bool) (*agrivoice.Answer, error)
	RecommendCrop(ctx context.Context, sample crop.SoilSample, locale core.Locale, withAudio bool) (*agrivoice.Answer, error)
	Dosage(ctx context.Context, pest string, area float64, locale core.Locale, withAudio bool) (*agrivoice.Answer, error)
	Pests() []string
	Corpus() *core.Corpus
}

var _ Assistant = (*agrivoice.Assistant)(nil)

// Server represents the HTTP API server.
type Server struct {
	router         chi.Router
	httpServer     *http.Server
	assistant      Assistant
	allowedOrigins []string
	requestTimeout time.Duration
	logger         *slog.Logger
	addr           string
}

// Option configures a Server.
type Option func(*Server)

// WithAllowedOrigins sets the CORS origins. Default is "*".
func WithAllowedOrigins(origins ...string) Option {
	return func(s *Server) {
		if len(origins) > 0 {
			s.allowedOrigins = origins
		}
	}
}

// WithRequestTimeout bounds the time spent on each API request.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		s.requestTimeout = d
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates an API server for assistant listening on addr.
func NewServer(addr string, assistant Assistant, opts ...Option) *Server {
	s := &Server{
		assistant:      assistant,
		allowedOrigins: []string{"*"},
		requestTimeout: 60 * time.Second,
		logger:         slog.Default(),
		addr:           addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("component", "api")

	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(Logging(s.logger))
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	router.Get("/health", s.health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.requestTimeout))
		r.Mount("/schemes", s.schemeRoutes())
		r.Get("/weather", s.weather)
		r.Post("/crops/recommend", s.recommendCrop)
		r.Post("/dosage", s.dosage)
		r.Get("/pests", s.pests)
	})

	s.router = router
	s.httpServer = &http.Server{
		Addr:              s.addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      s.requestTimeout + 10*time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the server address.
func (s *Server) Addr() string {
	return s.addr
}
