// Package server provides HTTP server setup, routing, and middleware.
package server

import (
	"fmt"
	"maps"
	"net/http"
	"runtime/debug"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/valyala/bytebufferpool"

	"reqlog/internal/metrics"
)

// RedactedValue replaces the value of any header configured for redaction.
const RedactedValue = "[REDACTED]"

// DefaultRequestIDHeader is the header used by WithRequestID when given "".
const DefaultRequestIDHeader = "X-Request-ID"

// RequestLogger logs every request, buffers the response produced by the
// next handler, logs its status, timing and body, then forwards it unchanged.
type RequestLogger struct {
	logger          zerolog.Logger
	metrics         *metrics.HTTPMetrics
	redacted        map[string]struct{}
	bodyLimit       int
	requestIDHeader string
}

// Option configures a RequestLogger.
type Option func(*RequestLogger)

// WithMetrics records per-request Prometheus metrics.
func WithMetrics(m *metrics.HTTPMetrics) Option {
	return func(l *RequestLogger) {
		l.metrics = m
	}
}

// WithRedactedHeaders logs the named request headers as RedactedValue.
// Names are matched case-insensitively.
func WithRedactedHeaders(names ...string) Option {
	return func(l *RequestLogger) {
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			l.redacted[http.CanonicalHeaderKey(name)] = struct{}{}
		}
	}
}

// WithBodyLimit truncates the logged body text to n bytes. The forwarded
// response is never truncated. n <= 0 logs the body in full.
func WithBodyLimit(n int) Option {
	return func(l *RequestLogger) {
		l.bodyLimit = n
	}
}

// WithRequestID tags every record with a request ID taken from header, or a
// fresh UUID when the client sent none. The ID is echoed on the response.
func WithRequestID(header string) Option {
	return func(l *RequestLogger) {
		if header == "" {
			header = DefaultRequestIDHeader
		}
		l.requestIDHeader = http.CanonicalHeaderKey(header)
	}
}

// NewRequestLogger creates a RequestLogger writing to logger.
func NewRequestLogger(logger zerolog.Logger, opts ...Option) *RequestLogger {
	l := &RequestLogger{
		logger:   logger,
		redacted: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Middleware wraps next. next is called exactly once per request.
//
// If next panics, the buffered response is discarded, a single error record
// is written and the panic continues with its original value.
func (l *RequestLogger) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		logger := l.logger
		if l.requestIDHeader != "" {
			id := r.Header.Get(l.requestIDHeader)
			if id == "" {
				id = uuid.NewString()
			}
			w.Header().Set(l.requestIDHeader, id)
			logger = logger.With().Str("request_id", id).Logger()
		}

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msgf("Incoming Request: %s %s", r.Method, r.URL.Path)
		l.logHeaders(logger, r)

		capture := &captureWriter{buf: bytebufferpool.Get()}
		completed := false
		defer func() {
			bytebufferpool.Put(capture.buf)
			capture.buf = nil
			if !completed {
				l.failed(logger, recover(), time.Since(start))
			}
		}()

		next.ServeHTTP(capture.wrap(w), r)
		elapsed := time.Since(start)
		completed = true

		if capture.hijacked {
			logger.Info().
				Int64("elapsed_ms", elapsed.Milliseconds()).
				Msg("Connection hijacked")
			return
		}

		status := capture.statusCode()
		logger.Info().
			Int("status", status).
			Msgf("Response Status: %d", status)
		logger.Info().
			Int64("elapsed_ms", elapsed.Milliseconds()).
			Msgf("Execution Time: %d ms", elapsed.Milliseconds())
		l.logBody(logger, capture.buf.B)

		if l.metrics != nil {
			l.metrics.Observe(r.Method, status, elapsed, capture.buf.Len())
		}

		w.WriteHeader(status)
		if capture.buf.Len() > 0 {
			if _, err := capture.buf.WriteTo(w); err != nil {
				logger.Warn().Err(err).Msg("Response copy failed")
			}
		}
	})
}

// failed runs on the panic path. It is deferred, so it must re-panic for the
// failure to reach net/http.
func (l *RequestLogger) failed(logger zerolog.Logger, p any, elapsed time.Duration) {
	if p == nil {
		// runtime.Goexit, e.g. t.FailNow in a test handler.
		return
	}
	if l.metrics != nil {
		l.metrics.ObservePanic()
	}
	if p != http.ErrAbortHandler {
		logger.Error().
			Str("panic", fmt.Sprint(p)).
			Int64("elapsed_ms", elapsed.Milliseconds()).
			Bytes("stack", debug.Stack()).
			Msg("Request Failed")
	}
	panic(p)
}

// logHeaders writes one record per request header. net/http moves Host out
// of r.Header into r.Host, so it is put back for logging.
func (l *RequestLogger) logHeaders(logger zerolog.Logger, r *http.Request) {
	if !debugEnabled(logger) {
		return
	}
	h := r.Header
	if _, ok := h["Host"]; !ok && r.Host != "" {
		h = h.Clone()
		if h == nil {
			h = make(http.Header, 1)
		}
		h["Host"] = []string{r.Host}
	}
	for _, key := range slices.Sorted(maps.Keys(h)) {
		value := strings.Join(h[key], ",")
		if _, ok := l.redacted[http.CanonicalHeaderKey(key)]; ok {
			value = RedactedValue
		}
		logger.Debug().
			Str("key", key).
			Str("value", value).
			Msgf("Header: %s = %s", key, value)
	}
}

func (l *RequestLogger) logBody(logger zerolog.Logger, body []byte) {
	if !debugEnabled(logger) {
		return
	}
	truncated := false
	if l.bodyLimit > 0 && len(body) > l.bodyLimit {
		body = body[:l.bodyLimit]
		truncated = true
	}
	text := string(body)
	e := logger.Debug().Str("body", text)
	if truncated {
		e = e.Bool("body_truncated", true)
	}
	e.Msgf("Response Body: %s", text)
}

func debugEnabled(logger zerolog.Logger) bool {
	return logger.GetLevel() <= zerolog.DebugLevel && zerolog.GlobalLevel() <= zerolog.DebugLevel
}
