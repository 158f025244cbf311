package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// clearGrace keeps the Redis entry alive slightly past token expiry so the
// local expiry-clear path, not Redis eviction, is the one that observes and
// reports the expired state.
const clearGrace = time.Minute

// RedisStore persists the credential in two Redis keys, one for the record
// and one for the user snapshot, mirroring the file layout. Both are
// written and cleared together.
type RedisStore struct {
	client    redis.UniversalClient
	prefix    string
	onCorrupt func()
}

// NewRedisStore creates a RedisStore. An empty prefix defaults to "skit".
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "skit"
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) credKey() string { return s.prefix + ":credential" }
func (s *RedisStore) userKey() string { return s.prefix + ":user" }

// SetCorruptHook implements [CorruptReporter]. Must be called before the
// store is shared across goroutines.
func (s *RedisStore) SetCorruptHook(fn func()) {
	s.onCorrupt = fn
}

// Save implements [Store]. The entry TTL tracks token expiry plus a grace
// period so stale records do not accumulate.
func (s *RedisStore) Save(ctx context.Context, cred *Credential) error {
	if cred == nil {
		return s.Clear(ctx)
	}

	credData, err := json.Marshal(cred)
	if err != nil {
		return fmt.Errorf("%w: encode credential: %v", ErrUnavailable, err)
	}
	userData, err := json.Marshal(cred.User)
	if err != nil {
		return fmt.Errorf("%w: encode user: %v", ErrUnavailable, err)
	}

	ttl := time.Until(cred.ExpiresTime()) + clearGrace
	if ttl < clearGrace {
		ttl = clearGrace
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.credKey(), credData, ttl)
	pipe.Set(ctx, s.userKey(), userData, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Load implements [Store]. An unparsable entry is deleted and reported as
// absent.
func (s *RedisStore) Load(ctx context.Context) (*Credential, error) {
	data, err := s.client.Get(ctx, s.credKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		_ = s.Clear(ctx)
		if s.onCorrupt != nil {
			s.onCorrupt()
		}
		return nil, nil
	}
	if cred.AccessToken == "" {
		return nil, nil
	}
	return &cred, nil
}

// LoadValid implements [Store].
func (s *RedisStore) LoadValid(ctx context.Context, now time.Time, margin time.Duration) (*Credential, error) {
	return loadValid(ctx, s, now, margin)
}

// LoadUser implements [Store].
func (s *RedisStore) LoadUser(ctx context.Context) (*UserSnapshot, error) {
	data, err := s.client.Get(ctx, s.userKey()).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var user UserSnapshot
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, nil
	}
	return &user, nil
}

// Clear implements [Store].
func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.credKey(), s.userKey()).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}
