package store

import "time"

// UserSnapshot is the locally cached view of the authenticated user. It is
// a display convenience, not the authoritative record — that lives server
// side and is re-fetched on verify.
type UserSnapshot struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Active      bool      `json:"is_active"`
}

// Credential is the persisted access token together with its wall-clock
// expiry and the user it authenticates. ExpiresAt is epoch milliseconds;
// after that instant the token must be treated as invalid regardless of
// server-side state.
type Credential struct {
	AccessToken string       `json:"access_token"`
	ExpiresAt   int64        `json:"expires_at"`
	User        UserSnapshot `json:"user"`
}

// ExpiresTime returns ExpiresAt as a time.Time.
func (c *Credential) ExpiresTime() time.Time {
	return time.UnixMilli(c.ExpiresAt)
}

// ExpiredBy reports whether the credential is expired at now, treating the
// final margin before the deadline as already expired so that an in-flight
// request does not race the wall clock.
func (c *Credential) ExpiredBy(now time.Time, margin time.Duration) bool {
	if c == nil {
		return true
	}
	return !now.Add(margin).Before(c.ExpiresTime())
}

// Clone returns a deep copy. Stores hand out clones so callers can never
// mutate the persisted record through a shared pointer.
func (c *Credential) Clone() *Credential {
	if c == nil {
		return nil
	}
	cp := *c
	return &cp
}

// Clone returns a copy of the snapshot.
func (u *UserSnapshot) Clone() *UserSnapshot {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
