package transport

import (
	"context"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fintrack/sessionkit"
)

type retryMarkerKey struct{}

// markRetried stamps a context so the recovery stage can recognize a
// request it already re-issued. The marker is the per-request attempt
// bound: one refresh-and-retry cycle, never two.
func markRetried(ctx context.Context) context.Context {
	return context.WithValue(ctx, retryMarkerKey{}, true)
}

// Retried reports whether the request behind ctx already went through a
// refresh-and-retry cycle.
func Retried(ctx context.Context) bool {
	v, _ := ctx.Value(retryMarkerKey{}).(bool)
	return v
}

// AuthTransport is the attach and recovery stage. Protected requests get
// the current bearer credential; a 401 answer triggers exactly one
// refresh-and-retry cycle before the failure is surfaced.
type AuthTransport struct {
	next    http.RoundTripper
	session *sessionkit.Session
	log     zerolog.Logger
}

// NewAuthTransport wraps next with the attach and recovery stage.
func NewAuthTransport(session *sessionkit.Session, next http.RoundTripper, log zerolog.Logger) *AuthTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &AuthTransport{next: next, session: session, log: log}
}

// RoundTrip implements http.RoundTripper.
func (t *AuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	out := req
	if !t.session.Routes().Public(req.URL.Path) {
		if token, ok := t.session.ValidToken(ctx); ok {
			out = req.Clone(ctx)
			out.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := t.next.RoundTrip(out)
	if err != nil {
		// No response exists: recovery needs a 401 to react to, a
		// transport failure propagates as-is.
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	if req.URL.Path == t.session.RefreshPath() {
		return resp, nil
	}
	if Retried(ctx) {
		return resp, nil
	}

	cred, refreshErr := t.session.Refresh(ctx)
	if refreshErr != nil {
		// The session is already ended by refresh policy; the caller
		// gets the original 401.
		t.log.Debug().Str("path", req.URL.Path).Err(refreshErr).Msg("401 recovery failed")
		return resp, nil
	}

	retry, ok := replayableRequest(req)
	if !ok {
		t.log.Debug().Str("path", req.URL.Path).Msg("401 recovery skipped, body not replayable")
		return resp, nil
	}

	drain(resp)

	retry.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	t.session.Metrics().Inc(sessionkit.MetricRetryIssued)
	t.log.Debug().Str("path", req.URL.Path).Msg("re-issuing request after refresh")

	// Even a second 401 comes straight back: the marker in the retry
	// context blocks another recovery cycle.
	return t.next.RoundTrip(retry)
}

// replayableRequest clones req with the retry marker set and a fresh body.
// Requests whose body cannot be re-created are not retried.
func replayableRequest(req *http.Request) (*http.Request, bool) {
	retry := req.Clone(markRetried(req.Context()))
	if req.Body == nil {
		return retry, true
	}
	if req.GetBody == nil {
		return nil, false
	}
	body, err := req.GetBody()
	if err != nil {
		return nil, false
	}
	retry.Body = body
	return retry, true
}

// drain releases a response that is being replaced by a retry so the
// underlying connection can be reused.
func drain(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
	_ = resp.Body.Close()
}
