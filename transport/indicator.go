package transport

import (
	"net/http"

	"github.com/fintrack/sessionkit"
	"github.com/fintrack/sessionkit/routes"
)

// IndicatorTransport drives the global busy indicator: acquire on request
// start, guaranteed release on every exit path. Routes in the exemption
// set (health checks, silent refresh) pass through untracked so background
// traffic does not flicker the indicator.
type IndicatorTransport struct {
	next      http.RoundTripper
	indicator *sessionkit.Indicator
	routes    *routes.Table
}

// NewIndicatorTransport wraps next with indicator tracking.
func NewIndicatorTransport(indicator *sessionkit.Indicator, table *routes.Table, next http.RoundTripper) *IndicatorTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	return &IndicatorTransport{next: next, indicator: indicator, routes: table}
}

// RoundTrip implements http.RoundTripper.
func (t *IndicatorTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.routes != nil && t.routes.IndicatorExempt(req.URL.Path) {
		return t.next.RoundTrip(req)
	}

	t.indicator.Show()
	defer t.indicator.Hide()

	return t.next.RoundTrip(req)
}
