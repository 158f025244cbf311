// Package store provides durable persistence for the current credential and
// its associated user snapshot.
//
// # Backends
//
//   - [FileStore] — single JSON document on disk, written atomically.
//   - [MemoryStore] — in-process map, for tests and ephemeral sessions.
//   - [RedisStore] — two Redis keys, for daemonized clients that share one
//     session across processes.
//
// All backends fail soft: an absent, unreadable, or corrupt record is treated
// as "no credential" and never surfaces as an error to the session layer.
// A corrupt record is cleared as a side effect so the next read is clean.
//
// # Architecture boundaries
//
// This package owns the persisted shape of [Credential] and [UserSnapshot]
// and nothing else. It never talks to the exchange endpoints and never makes
// validity decisions beyond the local expiry check in LoadValid.
//
// # What this package must NOT do
//
//   - Verify token authenticity (the server owns that).
//   - Propagate deserialization failures (clear and return nil instead).
//   - Share a loaded record by reference (every read returns a copy).
package store
