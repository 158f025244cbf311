package transport

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the per-request correlation ID.
const RequestIDHeader = "X-Request-ID"

// RequestIDTransport tags every outgoing request with an X-Request-ID and
// logs the outcome. A caller-supplied ID is kept; retries re-use the ID of
// the original request so both attempts correlate in server logs.
type RequestIDTransport struct {
	next http.RoundTripper
	log  zerolog.Logger
}

// NewRequestIDTransport wraps next with request tagging.
func NewRequestIDTransport(next http.RoundTripper, log zerolog.Logger) *RequestIDTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &RequestIDTransport{next: next, log: log}
}

// RoundTrip implements http.RoundTripper.
func (t *RequestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req
	requestID := req.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
		out = req.Clone(req.Context())
		out.Header.Set(RequestIDHeader, requestID)
	}

	logger := t.log.With().Str("request_id", requestID).Logger()

	start := time.Now()
	resp, err := t.next.RoundTrip(out)
	elapsed := time.Since(start)

	if err != nil {
		logger.Warn().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Dur("duration", elapsed).
			Err(err).
			Msg("request failed in transport")
		return nil, err
	}

	event := logger.Debug()
	if resp.StatusCode >= 400 {
		event = logger.Info()
	}
	event.
		Str("method", req.Method).
		Str("path", req.URL.Path).
		Int("status", resp.StatusCode).
		Dur("duration", elapsed).
		Bool("retry", Retried(req.Context())).
		Msg("request completed")

	return resp, nil
}
