// Package server provides HTTP server setup, routing, and middleware.
package server

import (
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"reqlog/internal/config"
	"reqlog/internal/echo"
	"reqlog/internal/health"
	"reqlog/internal/metrics"
)

// Server holds the HTTP server and its dependencies.
type Server struct {
	cfg      *config.Config
	logger   zerolog.Logger
	router   *http.ServeMux
	registry *prometheus.Registry
	metrics  *metrics.HTTPMetrics
}

// New creates a new Server with all routes configured.
func New(cfg *config.Config, logger zerolog.Logger) *Server {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	s := &Server{
		cfg:      cfg,
		logger:   logger,
		router:   http.NewServeMux(),
		registry: registry,
		metrics:  metrics.NewHTTPMetrics(registry),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.HandleFunc("GET /health", health.HandleHealth)

	s.router.HandleFunc("POST /echo", echo.HandleEcho)
	s.router.HandleFunc("GET /echo/{size}", echo.HandleSize)

	s.router.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	if s.cfg.EnablePprof {
		s.logger.Info().Msg("Pprof enabled")
		s.router.HandleFunc("/debug/pprof/", pprof.Index)
		s.router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		s.router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		s.router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		s.router.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
}

// Handler returns the HTTP handler with all middleware applied.
func (s *Server) Handler() http.Handler {
	if !s.cfg.HTTPLogging {
		return s.router
	}

	s.logger.Info().
		Int("body_limit", s.cfg.LogBodyLimit).
		Strs("redact_headers", s.cfg.RedactHeaders).
		Msg("HTTP logging enabled")

	opts := []Option{
		WithMetrics(s.metrics),
		WithRedactedHeaders(s.cfg.RedactHeaders...),
		WithBodyLimit(s.cfg.LogBodyLimit),
	}
	if s.cfg.RequestIDHeader != "" {
		opts = append(opts, WithRequestID(s.cfg.RequestIDHeader))
	}
	return NewRequestLogger(s.logger, opts...).Middleware(s.router)
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	s.logger.Info().
		Str("listen_addr", s.cfg.ListenAddr).
		Bool("http_logging", s.cfg.HTTPLogging).
		Msg("Starting server")

	return http.ListenAndServe(s.cfg.ListenAddr, s.Handler())
}
