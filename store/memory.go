package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps the credential in process memory. Sessions backed by it
// do not survive a restart; it exists for tests and for callers that opt
// out of persistence entirely.
type MemoryStore struct {
	mu   sync.Mutex
	cred *Credential
	user *UserSnapshot
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Save implements [Store].
func (s *MemoryStore) Save(ctx context.Context, cred *Credential) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cred == nil {
		s.cred = nil
		s.user = nil
		return nil
	}
	s.cred = cred.Clone()
	user := cred.User
	s.user = &user
	return nil
}

// Load implements [Store].
func (s *MemoryStore) Load(ctx context.Context) (*Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cred.Clone(), nil
}

// LoadValid implements [Store].
func (s *MemoryStore) LoadValid(ctx context.Context, now time.Time, margin time.Duration) (*Credential, error) {
	return loadValid(ctx, s, now, margin)
}

// LoadUser implements [Store].
func (s *MemoryStore) LoadUser(ctx context.Context) (*UserSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user.Clone(), nil
}

// Clear implements [Store].
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
	s.user = nil
	return nil
}
