package sessionkit

import "errors"

var (
	// ErrNotReady is returned when a Session method is called before the
	// builder finished wiring.
	ErrNotReady = errors.New("session not initialized")
	// ErrNoToken is returned by Refresh when nothing is stored.
	ErrNoToken = errors.New("no stored token")
	// ErrTokenExpired marks a credential rejected by the local expiry
	// check. Handled silently by clearing storage; callers rarely see it.
	ErrTokenExpired = errors.New("stored token expired")
	// ErrLoginRejected wraps a login failure. The session is left
	// untouched; failing to log in is not the same as losing a session.
	ErrLoginRejected = errors.New("login rejected")
	// ErrRefreshRejected wraps a refresh failure. Always accompanied by a
	// forced logout; there is no state where the session survives a
	// rejected refresh.
	ErrRefreshRejected = errors.New("refresh rejected")
	// ErrVerifyRejected wraps a startup verification failure that ended
	// an optimistic session.
	ErrVerifyRejected = errors.New("session verification rejected")
)
