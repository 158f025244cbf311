package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// fileDocument is the on-disk layout: the credential entry and the user
// snapshot entry live side by side so the snapshot can be read without
// touching the credential.
type fileDocument struct {
	Credential *Credential   `json:"credential,omitempty"`
	User       *UserSnapshot `json:"user,omitempty"`
}

// FileStore persists the credential as a single JSON document on disk.
// Writes go through a temp file plus rename so a crash mid-write never
// leaves a half-written record.
type FileStore struct {
	mu        sync.Mutex
	path      string
	onCorrupt func()
}

// NewFileStore creates a FileStore rooted at path. The parent directory is
// created on first Save, not here.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// DefaultPath returns the conventional credential file location under the
// user config directory, e.g. ~/.config/<app>/credentials.json.
func DefaultPath(app string) (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, app, "credentials.json"), nil
}

// SetCorruptHook implements [CorruptReporter].
func (s *FileStore) SetCorruptHook(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onCorrupt = fn
}

// Save implements [Store].
func (s *FileStore) Save(ctx context.Context, cred *Credential) error {
	if cred == nil {
		return s.Clear(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	user := cred.User
	doc := fileDocument{
		Credential: cred.Clone(),
		User:       &user,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w: encode credential: %v", ErrUnavailable, err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Load implements [Store]. A file that exists but cannot be parsed is
// removed so the next read starts clean.
func (s *FileStore) Load(ctx context.Context) (*Credential, error) {
	doc, err := s.read()
	if err != nil || doc == nil {
		return nil, err
	}
	if doc.Credential == nil || doc.Credential.AccessToken == "" {
		return nil, nil
	}
	return doc.Credential.Clone(), nil
}

// LoadValid implements [Store].
func (s *FileStore) LoadValid(ctx context.Context, now time.Time, margin time.Duration) (*Credential, error) {
	return loadValid(ctx, s, now, margin)
}

// LoadUser implements [Store].
func (s *FileStore) LoadUser(ctx context.Context) (*UserSnapshot, error) {
	doc, err := s.read()
	if err != nil || doc == nil {
		return nil, err
	}
	return doc.User.Clone(), nil
}

// Clear implements [Store].
func (s *FileStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

func (s *FileStore) read() (*fileDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var doc fileDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		// Corrupt record: clear so re-authentication starts from a
		// clean slate.
		_ = os.Remove(s.path)
		if s.onCorrupt != nil {
			s.onCorrupt()
		}
		return nil, nil
	}
	return &doc, nil
}
