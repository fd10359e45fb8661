// Package config handles configuration loading from environment variables.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ListenAddr is the address:port the server listens on.
	ListenAddr string `env:"LISTEN_ADDR" envDefault:":8080"`

	// LogLevel is a zerolog level name (trace, debug, info, warn, error).
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// LogConsole selects the human-readable console writer over JSON lines.
	LogConsole bool `env:"LOG_CONSOLE" envDefault:"true"`

	// HTTPLogging wraps the router with the request/response logger.
	HTTPLogging bool `env:"HTTP_LOGGING" envDefault:"true"`

	EnablePprof bool `env:"ENABLE_PPROF" envDefault:"false"`

	// LogBodyLimit caps the logged response body text. Zero logs it whole.
	LogBodyLimit int `env:"LOG_BODY_LIMIT" envDefault:"0"`

	// RedactHeaders lists request headers whose values are never logged.
	RedactHeaders []string `env:"LOG_REDACT_HEADERS" envSeparator:"," envDefault:"Authorization,Cookie"`

	// RequestIDHeader enables request ID propagation when non-empty.
	RequestIDHeader string `env:"REQUEST_ID_HEADER" envDefault:"X-Request-ID"`
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	// A .env file is optional; it only matters for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.LogBodyLimit < 0 {
		return nil, fmt.Errorf("LOG_BODY_LIMIT must not be negative, got %d", cfg.LogBodyLimit)
	}

	return cfg, nil
}
