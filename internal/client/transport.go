// ABOUTME: Request logging transport with correlation IDs
// ABOUTME: Logs method, path, status, and latency of every outgoing API call

package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// LoggingTransport wraps an http.RoundTripper, tagging each request with an
// X-Request-ID header and logging its outcome at debug level.
type LoggingTransport struct {
	next http.RoundTripper
}

// NewLoggingTransport wraps next (http.DefaultTransport when nil)
func NewLoggingTransport(next http.RoundTripper) *LoggingTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &LoggingTransport{next: next}
}

// RoundTrip implements http.RoundTripper
func (t *LoggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	requestID := uuid.NewString()

	// RoundTrippers must not modify the caller's request
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", requestID)

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		slog.Debug("API request failed",
			"request_id", requestID,
			"method", req.Method,
			"path", req.URL.Path,
			"error", err,
			"latency_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	slog.Debug("API request completed",
		"request_id", requestID,
		"method", req.Method,
		"path", req.URL.Path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}
