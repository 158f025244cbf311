package transport

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/fintrack/sessionkit"
)

// Options configures a pipeline chain. The zero value is usable: default
// transport, no notifier, no logging.
type Options struct {
	// Base is the innermost RoundTripper. Defaults to
	// http.DefaultTransport.
	Base http.RoundTripper
	// Notifier receives user-facing failure messages.
	Notifier Notifier
	// Logger is used by every stage. The zero Logger is silent.
	Logger zerolog.Logger
}

// NewChain assembles the full pipeline for a session, outermost stage
// first: indicator, normalization, authorization, request tagging. Install
// the result as the Transport of the http.Client every domain service
// shares.
func NewChain(session *sessionkit.Session, opts Options) http.RoundTripper {
	var rt http.RoundTripper = NewRequestIDTransport(opts.Base, opts.Logger)
	rt = NewAuthTransport(session, rt, opts.Logger)
	rt = NewNormalizeTransport(opts.Notifier, rt, opts.Logger)
	rt = NewIndicatorTransport(session.Indicator(), session.Routes(), rt)
	return rt
}

// NewClient returns an http.Client backed by [NewChain].
func NewClient(session *sessionkit.Session, opts Options) *http.Client {
	return &http.Client{Transport: NewChain(session, opts)}
}
