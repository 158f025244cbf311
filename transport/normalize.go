package transport

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fintrack/sessionkit/authapi"
)

// maxNormalizeBody bounds how much of a failure payload is inspected.
const maxNormalizeBody = 64 << 10

// Notice is a user-facing failure message handed to the notification
// collaborator.
type Notice struct {
	Status  int
	Message string
}

// Notifier presents transient failure messages. Implementations belong to
// the UI layer (toasts, banners); the pipeline only emits.
type Notifier interface {
	Notify(ctx context.Context, notice Notice)
}

// NoOpNotifier discards all notices.
type NoOpNotifier struct{}

// Notify implements [Notifier].
func (NoOpNotifier) Notify(context.Context, Notice) {}

// NormalizeTransport turns HTTP failure statuses into user-facing messages
// and forwards them to the notifier. 401 is suppressed here: the recovery
// stage owns 401 presentation, and a forced logout is deliberately silent.
// The response itself passes through untouched, body restored, so callers
// can still inspect the raw failure.
type NormalizeTransport struct {
	next     http.RoundTripper
	notifier Notifier
	log      zerolog.Logger
}

// NewNormalizeTransport wraps next with failure normalization.
func NewNormalizeTransport(notifier Notifier, next http.RoundTripper, log zerolog.Logger) *NormalizeTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if notifier == nil {
		notifier = NoOpNotifier{}
	}
	return &NormalizeTransport{next: next, notifier: notifier, log: log}
}

// RoundTrip implements http.RoundTripper.
func (t *NormalizeTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		// Transport failure: no status code, nothing to normalize.
		return nil, err
	}
	if resp.StatusCode < 400 {
		return resp, nil
	}

	se := statusErrorFromResponse(resp)
	se.UserMessage = UserMessage(se)

	t.log.Debug().
		Str("path", req.URL.Path).
		Int("status", se.Status).
		Str("user_message", se.UserMessage).
		Msg("request failed")

	if se.Status != http.StatusUnauthorized {
		t.notifier.Notify(req.Context(), Notice{Status: se.Status, Message: se.UserMessage})
	}

	return resp, nil
}

// UserMessage maps a failure to the message shown to the user. The table
// is fixed; entries that carry server-supplied detail fold it in.
func UserMessage(se *authapi.StatusError) string {
	switch se.Status {
	case http.StatusBadRequest:
		return "Invalid request. Please check your input."
	case http.StatusUnauthorized:
		return "Your session has expired. Please sign in again."
	case http.StatusForbidden:
		return "You don't have permission to do that."
	case http.StatusNotFound:
		return "The requested resource was not found."
	case http.StatusConflict:
		if se.Detail != "" {
			return "Conflict: " + se.Detail
		}
		if se.Message != "" {
			return "Conflict: " + se.Message
		}
		return "The change conflicts with existing data."
	case http.StatusUnprocessableEntity:
		if detail := se.FieldDetail(); detail != "" {
			return "Validation failed: " + detail
		}
		if se.Message != "" {
			return se.Message
		}
		return "Validation failed."
	case http.StatusTooManyRequests:
		return "Too many requests. Please wait a moment and try again."
	case http.StatusInternalServerError:
		return "The server hit an unexpected error. Please try again later."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		if se.Message != "" {
			return se.Message
		}
		return "Something went wrong. Please try again."
	}
}

// NormalizeError fills UserMessage on a [*authapi.StatusError] carried by
// err, for callers that hit the exchange outside the pipeline. Other
// errors pass through unchanged.
func NormalizeError(err error) error {
	var se *authapi.StatusError
	if errors.As(err, &se) && se.UserMessage == "" {
		se.UserMessage = UserMessage(se)
	}
	return err
}

// statusErrorFromResponse inspects a failure body without consuming it:
// the read portion is stitched back so downstream callers see the full
// payload.
func statusErrorFromResponse(resp *http.Response) *authapi.StatusError {
	se := &authapi.StatusError{Status: resp.StatusCode}
	if resp.Body == nil {
		return se
	}

	peeked, err := io.ReadAll(io.LimitReader(resp.Body, maxNormalizeBody))
	rest := resp.Body
	resp.Body = &restoredBody{
		Reader: io.MultiReader(bytes.NewReader(peeked), rest),
		closer: rest,
	}
	if err != nil || len(peeked) == 0 {
		return se
	}

	parsed := authapi.ParseErrorBody(peeked)
	se.Message = parsed.Message
	se.Detail = parsed.Detail
	se.Fields = parsed.Fields
	return se
}

type restoredBody struct {
	io.Reader
	closer io.Closer
}

func (b *restoredBody) Close() error {
	return b.closer.Close()
}
