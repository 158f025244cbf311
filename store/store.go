package store

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable is returned by backends whose medium cannot be reached at
// all (disk permission failure, Redis connection refused). Callers treat it
// as "no credential" but may log it; it is never shown to the user.
var ErrUnavailable = errors.New("credential store unavailable")

// Store persists exactly one credential record plus a user snapshot kept as
// a separate entry for fast display. Implementations must be safe for
// concurrent use.
//
// Load and LoadUser fail soft: corrupt or missing data yields (nil, nil).
// A non-nil error means the storage medium itself was unreachable and the
// caller should behave as if nothing is stored.
type Store interface {
	// Save overwrites any existing record. It performs no validation of
	// token authenticity.
	Save(ctx context.Context, cred *Credential) error

	// Load returns the persisted credential, or nil if absent or corrupt.
	Load(ctx context.Context) (*Credential, error)

	// LoadValid is Load plus a local expiry check. An expired record is
	// cleared as a side effect and nil is returned.
	LoadValid(ctx context.Context, now time.Time, margin time.Duration) (*Credential, error)

	// LoadUser returns the separately stored user snapshot, or nil.
	LoadUser(ctx context.Context) (*UserSnapshot, error)

	// Clear removes both entries unconditionally. Idempotent.
	Clear(ctx context.Context) error
}

// CorruptReporter is implemented by backends that clear unparsable records
// on read. The hook fires once per cleared record; observers use it for
// counting, the record itself is already gone.
type CorruptReporter interface {
	SetCorruptHook(fn func())
}

// loadValid implements the shared expiry-clear semantics on top of a
// backend's Load and Clear.
func loadValid(ctx context.Context, s Store, now time.Time, margin time.Duration) (*Credential, error) {
	cred, err := s.Load(ctx)
	if err != nil || cred == nil {
		return nil, err
	}
	if cred.ExpiredBy(now, margin) {
		_ = s.Clear(ctx)
		return nil, nil
	}
	return cred, nil
}
