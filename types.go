package sessionkit

import (
	"io"

	"github.com/fintrack/sessionkit/internal/event"
	internalmetrics "github.com/fintrack/sessionkit/internal/metrics"
	"github.com/fintrack/sessionkit/store"
)

// State is the session lifecycle state.
type State uint8

const (
	// StateUnauthenticated means no usable credential exists.
	StateUnauthenticated State = iota
	// StateVerifying means a stored credential was found and adopted
	// optimistically while server verification is still pending.
	StateVerifying
	// StateAuthenticated means the credential is trusted: it came from a
	// fresh exchange or survived verification.
	StateAuthenticated
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateVerifying:
		return "verifying"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// Credential is the persisted access token with expiry and user. See
// [store.Credential].
type Credential = store.Credential

// UserSnapshot is the locally cached user view. See [store.UserSnapshot].
type UserSnapshot = store.UserSnapshot

// SessionSnapshot is a point-in-time copy of the observable session state,
// safe to hand to UI bindings.
type SessionSnapshot struct {
	State     State
	User      *UserSnapshot
	Loading   bool
	LastError string
}

// Authenticated reports whether a user is present, counting optimistic
// sessions still being verified.
func (s SessionSnapshot) Authenticated() bool {
	return s.User != nil && s.State != StateUnauthenticated
}

// Event is a session-lifecycle notification delivered to sinks.
type Event = event.Event

// EventSink receives [Event] values from the session's dispatcher.
type EventSink = event.Sink

// NoOpSink is an [EventSink] that silently discards all events.
type NoOpSink = event.NoOpSink

// ChannelSink is a buffered channel-based [EventSink].
type ChannelSink = event.ChannelSink

// JSONWriterSink is an [EventSink] that writes JSON lines to an io.Writer.
type JSONWriterSink = event.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return event.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return event.NewJSONWriterSink(w)
}

// Event types emitted by [Session].
const (
	// EventLoginSuccess is emitted when a credential exchange succeeds.
	EventLoginSuccess = "login_success"
	// EventLoginFailure is emitted when a login attempt is rejected.
	EventLoginFailure = "login_failure"
	// EventVerifySuccess is emitted when startup verification confirms a
	// stored session.
	EventVerifySuccess = "verify_success"
	// EventVerifyFailure is emitted when startup verification ends an
	// optimistic session.
	EventVerifyFailure = "verify_failure"
	// EventRefreshSuccess is emitted when a refresh produces a new
	// credential.
	EventRefreshSuccess = "refresh_success"
	// EventRefreshFailure is emitted when a refresh is rejected.
	EventRefreshFailure = "refresh_failure"
	// EventLogout is emitted on explicit logout. Navigation collaborators
	// treat it as the redirect-to-login signal.
	EventLogout = "logout"
	// EventForcedLogout is emitted when refresh or verify failure ends
	// the session. Presented silently: the user did nothing wrong.
	EventForcedLogout = "forced_logout"
)

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	// MetricLoginSuccess counts successful credential exchanges.
	MetricLoginSuccess = internalmetrics.MetricLoginSuccess
	// MetricLoginFailure counts rejected or failed login attempts.
	MetricLoginFailure = internalmetrics.MetricLoginFailure
	// MetricVerifySuccess counts confirmed startup verifications.
	MetricVerifySuccess = internalmetrics.MetricVerifySuccess
	// MetricVerifyFailure counts verifications that ended the session.
	MetricVerifyFailure = internalmetrics.MetricVerifyFailure
	// MetricRefreshSuccess counts refreshes producing a new credential.
	MetricRefreshSuccess = internalmetrics.MetricRefreshSuccess
	// MetricRefreshFailure counts rejected refreshes.
	MetricRefreshFailure = internalmetrics.MetricRefreshFailure
	// MetricRefreshDeduped counts callers joined to an in-flight refresh.
	MetricRefreshDeduped = internalmetrics.MetricRefreshDeduped
	// MetricRetryIssued counts requests re-issued after 401 recovery.
	MetricRetryIssued = internalmetrics.MetricRetryIssued
	// MetricForcedLogout counts sessions ended without explicit logout.
	MetricForcedLogout = internalmetrics.MetricForcedLogout
	// MetricLogout counts explicit logouts.
	MetricLogout = internalmetrics.MetricLogout
	// MetricTokenExpiredCleared counts expired credentials cleared on read.
	MetricTokenExpiredCleared = internalmetrics.MetricTokenExpiredCleared
	// MetricStoreCorruptCleared counts corrupt records cleared on read.
	MetricStoreCorruptCleared = internalmetrics.MetricStoreCorruptCleared
	// MetricIndicatorReset counts forced busy-indicator resets.
	MetricIndicatorReset = internalmetrics.MetricIndicatorReset
)

// Metrics holds atomic counters for the session pipeline.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{Enabled: cfg.Enabled})
}
