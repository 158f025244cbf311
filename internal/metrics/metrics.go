// Package metrics provides lock-free counters for session-pipeline
// observability.
//
// # Design
//
// Counters are stored in a fixed array of uint64 slots and incremented
// atomically. The write path is allocation-free; Snapshot produces a deep
// copy for exporters.
//
// # Architecture boundaries
//
// This package owns metric storage and snapshot creation. Metric export
// (OTel) lives in metrics/export/ and reads Snapshot values.
//
// # What this package must NOT do
//
//   - Perform I/O or network calls.
//   - Import the root package or any sibling package.
//   - Expose global metric registries.
package metrics

import "sync/atomic"

// MetricID identifies one counter slot.
type MetricID uint16

const (
	// MetricLoginSuccess counts successful credential exchanges.
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts rejected or failed login attempts.
	MetricLoginFailure
	// MetricVerifySuccess counts startup verifications that confirmed a
	// stored session.
	MetricVerifySuccess
	// MetricVerifyFailure counts startup verifications that ended the
	// optimistic session.
	MetricVerifyFailure
	// MetricRefreshSuccess counts refresh calls that produced a new
	// credential.
	MetricRefreshSuccess
	// MetricRefreshFailure counts refresh calls rejected by the exchange.
	MetricRefreshFailure
	// MetricRefreshDeduped counts callers that joined an in-flight
	// refresh instead of issuing their own.
	MetricRefreshDeduped
	// MetricRetryIssued counts requests re-issued after a 401 recovery.
	MetricRetryIssued
	// MetricForcedLogout counts sessions ended by refresh or verify
	// failure rather than an explicit logout.
	MetricForcedLogout
	// MetricLogout counts explicit logouts.
	MetricLogout
	// MetricTokenExpiredCleared counts locally expired credentials
	// cleared on read.
	MetricTokenExpiredCleared
	// MetricStoreCorruptCleared counts unparsable store records cleared
	// on read.
	MetricStoreCorruptCleared
	// MetricIndicatorReset counts forced busy-indicator resets.
	MetricIndicatorReset

	// MetricIDCount is the number of defined metric slots.
	MetricIDCount
)

// Def describes one counter for exporters.
type Def struct {
	ID   MetricID
	Name string
	Help string
}

// CounterDefs lists every counter with its export name. Order matches the
// MetricID values.
var CounterDefs = []Def{
	{MetricLoginSuccess, "sessionkit_login_success_total", "Successful credential exchanges."},
	{MetricLoginFailure, "sessionkit_login_failure_total", "Rejected or failed login attempts."},
	{MetricVerifySuccess, "sessionkit_verify_success_total", "Startup verifications confirming a stored session."},
	{MetricVerifyFailure, "sessionkit_verify_failure_total", "Startup verifications ending the optimistic session."},
	{MetricRefreshSuccess, "sessionkit_refresh_success_total", "Refresh calls producing a new credential."},
	{MetricRefreshFailure, "sessionkit_refresh_failure_total", "Refresh calls rejected by the exchange."},
	{MetricRefreshDeduped, "sessionkit_refresh_deduped_total", "Callers joined to an in-flight refresh."},
	{MetricRetryIssued, "sessionkit_retry_issued_total", "Requests re-issued after 401 recovery."},
	{MetricForcedLogout, "sessionkit_forced_logout_total", "Sessions ended by refresh or verify failure."},
	{MetricLogout, "sessionkit_logout_total", "Explicit logouts."},
	{MetricTokenExpiredCleared, "sessionkit_token_expired_cleared_total", "Locally expired credentials cleared on read."},
	{MetricStoreCorruptCleared, "sessionkit_store_corrupt_cleared_total", "Unparsable store records cleared on read."},
	{MetricIndicatorReset, "sessionkit_indicator_reset_total", "Forced busy-indicator resets."},
}

// Config controls metric collection.
type Config struct {
	Enabled bool
}

// Metrics holds the counter slots. A nil *Metrics is valid and all
// operations on it are no-ops.
type Metrics struct {
	counters [MetricIDCount]atomic.Uint64
}

// Snapshot is a point-in-time deep copy of all counters.
type Snapshot struct {
	Counters map[MetricID]uint64
}

// New creates a Metrics instance, or nil when disabled.
func New(cfg Config) *Metrics {
	if !cfg.Enabled {
		return nil
	}
	return &Metrics{}
}

// Inc adds one to the given counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || id >= MetricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// Get returns the current value of one counter.
func (m *Metrics) Get(id MetricID) uint64 {
	if m == nil || id >= MetricIDCount {
		return 0
	}
	return m.counters[id].Load()
}

// Snapshot returns a copy of every counter.
func (m *Metrics) Snapshot() Snapshot {
	snap := Snapshot{Counters: make(map[MetricID]uint64, MetricIDCount)}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < MetricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
