// Request logging demo server
//
// This is the main entry point for a small HTTP server whose router is
// wrapped by the request/response logging middleware.
//
// Usage:
//
//	LISTEN_ADDR=:8080 LOG_LEVEL=debug go run ./cmd/api
//
// Environment Variables:
//   - LISTEN_ADDR: Address to listen on (default: ":8080")
//   - LOG_LEVEL: zerolog level; "debug" adds header and body records (default: "info")
//   - LOG_CONSOLE: Human-readable console output instead of JSON (default: true)
//   - HTTP_LOGGING: Enable the request/response logger (default: true)
//   - ENABLE_PPROF: Mount /debug/pprof (default: false)
//   - LOG_BODY_LIMIT: Max logged body bytes, 0 for no limit (default: 0)
//   - LOG_REDACT_HEADERS: Comma-separated headers logged as [REDACTED] (default: "Authorization,Cookie")
//   - REQUEST_ID_HEADER: Request ID header, empty to disable (default: "X-Request-ID")
package main

import (
	"io"
	"os"

	"reqlog/internal/config"
	"reqlog/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Config error")
	}

	logger := setupLogging(cfg)

	srv := server.New(cfg, logger)

	log.Fatal().Err(srv.ListenAndServe()).Msg("Server error")
}

func setupLogging(cfg *config.Config) zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	var out io.Writer = os.Stdout
	if cfg.LogConsole {
		out = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}

	logger := zerolog.New(out).Level(level).With().Timestamp().Logger()
	log.Logger = logger
	if err != nil {
		logger.Warn().Str("log_level", cfg.LogLevel).Msg("Unknown log level, using info")
	}
	return logger
}
