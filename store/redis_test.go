package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client, "skit-test"), mr
}

func TestRedisStoreSaveWritesBothKeys(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCredential(time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if !mr.Exists("skit-test:credential") {
		t.Fatalf("credential key missing")
	}
	if !mr.Exists("skit-test:user") {
		t.Fatalf("user key missing")
	}

	user, err := s.LoadUser(ctx)
	if err != nil {
		t.Fatalf("load user failed: %v", err)
	}
	if user == nil || user.DisplayName != "Alice" {
		t.Fatalf("unexpected user snapshot: %+v", user)
	}
}

func TestRedisStoreClearRemovesBothKeys(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	if err := s.Save(ctx, testCredential(time.Now().Add(time.Hour))); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}

	if mr.Exists("skit-test:credential") || mr.Exists("skit-test:user") {
		t.Fatalf("keys survived clear")
	}

	// Idempotent.
	if err := s.Clear(ctx); err != nil {
		t.Fatalf("second clear failed: %v", err)
	}
}

func TestRedisStoreCorruptRecordFailsSoft(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()

	mr.Set("skit-test:credential", "{not json")

	got, err := s.Load(ctx)
	if err != nil {
		t.Fatalf("corrupt load must not surface an error, got %v", err)
	}
	if got != nil {
		t.Fatalf("corrupt load must yield nil, got %+v", got)
	}
	if mr.Exists("skit-test:credential") {
		t.Fatalf("corrupt record was not cleared")
	}
}

func TestRedisStoreLoadValidClearsExpired(t *testing.T) {
	s, mr := newRedisStore(t)
	ctx := context.Background()
	now := time.Now()

	if err := s.Save(ctx, testCredential(now.Add(-time.Second))); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.LoadValid(ctx, now, 0)
	if err != nil {
		t.Fatalf("load valid failed: %v", err)
	}
	if got != nil {
		t.Fatalf("expired credential returned: %+v", got)
	}
	if mr.Exists("skit-test:credential") {
		t.Fatalf("store not empty after expiry clear")
	}
}

func TestRedisStoreUnreachableReportsUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	s := NewRedisStore(client, "")
	mr.Close()

	if _, err := s.Load(context.Background()); err == nil {
		t.Fatalf("expected unavailable error from closed redis")
	}
}
