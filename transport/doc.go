// Package transport implements the request pipeline installed ahead of
// every domain service call, as a stack of http.RoundTripper decorators.
// Domain services are unaware of it: they use a plain *http.Client whose
// Transport happens to be a [NewChain] result.
//
// Stage order, outermost first:
//
//	IndicatorTransport  — busy-indicator acquire/release on all paths
//	NormalizeTransport  — status→user-message table, notification sink
//	AuthTransport       — bearer attach + single refresh-and-retry on 401
//	RequestIDTransport  — X-Request-ID tagging and outcome logging
//
// Within one request the stages run strictly in that order; independent
// concurrent requests interleave freely, each carrying its own retry
// marker through its context.
//
// # Architecture boundaries
//
// Stages translate HTTP observations into [sessionkit.Session] calls. They
// make no session decisions themselves: what a 401 means is decided by
// Session.Refresh, and what a failed refresh means is decided by the
// session's forced-logout policy.
//
// # What this package must NOT do
//
//   - Issue more than one retry per request (hard bound, context-carried).
//   - Recover refresh-endpoint calls (self-referential refresh loops).
//   - Notify on 401 (the recovery stage owns 401 presentation).
package transport
