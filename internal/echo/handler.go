// Package echo serves endpoints that return caller-chosen response bodies.
package echo

import (
	"errors"
	"io"
	"net/http"
	"strconv"
)

// MaxPayloadBytes bounds both echoed and generated bodies.
const MaxPayloadBytes int64 = 25 * 1024 * 1024

// pattern is repeated to fill generated bodies.
const pattern = "abcdefghijklmnopqrstuvwxyz0123456789\n"

// HandleEcho handles POST /echo by writing the request body back.
func HandleEcho(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxPayloadBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// HandleSize handles GET /echo/{size} by writing size bytes of a repeating
// printable pattern.
func HandleSize(w http.ResponseWriter, r *http.Request) {
	size, err := strconv.ParseInt(r.PathValue("size"), 10, 64)
	if err != nil || size < 0 || size > MaxPayloadBytes {
		http.Error(w, "Invalid size", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Length", strconv.FormatInt(size, 10))

	_, _ = io.CopyN(w, &patternReader{}, size)
}

// patternReader yields pattern forever.
type patternReader struct {
	off int
}

func (p *patternReader) Read(b []byte) (int, error) {
	n := 0
	for n < len(b) {
		c := copy(b[n:], pattern[p.off:])
		n += c
		p.off = (p.off + c) % len(pattern)
	}
	return n, nil
}
