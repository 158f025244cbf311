// Package sessionkit owns the client side of the fintrack session lifecycle:
// durable credential storage, observable session state, and the request
// pipeline that attaches bearer credentials, recovers from credential expiry
// with a single refresh-and-retry cycle, and degrades cleanly to a
// logged-out state when recovery fails.
//
// The package is designed for concurrent client workloads: Session methods
// are safe to call from multiple goroutines after initialization through
// [Builder.Build], and concurrent 401 recoveries are serialized behind one
// in-flight refresh that every caller shares.
//
// # Architecture boundaries
//
// sessionkit is the public surface. It exposes [Session], [Builder],
// [Config], [Indicator], and value types (Credential, UserSnapshot,
// SessionSnapshot). The exchange wire contract lives in authapi, credential
// persistence in store, endpoint classification in routes, and the
// http.RoundTripper pipeline stages in transport. Event dispatch and metric
// storage live under internal/ and are re-exported here as type aliases.
//
// # What this package must NOT do
//
//   - Render UI, navigate, or present notifications (sinks and the
//     transport notifier are the only outward channels).
//   - Verify token authenticity locally (the server owns that; only the
//     wall-clock expiry is checked client side).
//   - Issue more than one retry per request, or more than one concurrent
//     refresh per process.
package sessionkit
