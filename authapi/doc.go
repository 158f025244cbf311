// Package authapi is the HTTP client for the credential exchange endpoints:
// login, refresh, verify, and logout. It speaks JSON over a caller-supplied
// http.Client and reports failures as either a [*StatusError] (the server
// answered with a non-2xx status) or a plain wrapped error (the transport
// itself failed; no status code exists).
//
// # Architecture boundaries
//
// This package owns the wire contract and nothing else. Session policy —
// what a failed refresh means, when to log out — lives in the root package.
//
// # What this package must NOT do
//
//   - Persist credentials or read the store.
//   - Retry, refresh, or otherwise recover from failures.
//   - Verify token signatures (ExpiryFromToken reads claims unverified;
//     authenticity is the server's concern).
package authapi
