// Package cache wraps the Redis client behind the small key-value surface
// the services need: one-time codes and cached user lookups, both with
// per-entry expiry.  The store is an optimization layer only; every
// invariant must hold with the cache disabled or flushed.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired, or when no
// Redis connection is available at all.
var ErrMiss = errors.New("cache miss")

// ErrDisabled is returned by Set when no Redis connection backs the store.
// A write that cannot be read back later must not succeed silently: the
// one-time-code flows depend on stored values being retrievable.
var ErrDisabled = errors.New("cache disabled")

// Store is a thin Redis adapter.  A nil client is tolerated: reads miss,
// deletes are no-ops and writes fail with ErrDisabled, so cached user
// lookups degrade to durable reads while code issuance reports the outage.
type Store struct{ rdb *redis.Client }

func New(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

// Enabled reports whether a live Redis connection backs the store.
func (s *Store) Enabled() bool { return s.rdb != nil }

// Get fetches the string value under key.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if s.rdb == nil {
		return "", ErrMiss
	}
	v, err := s.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrMiss
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Set stores value under key with the given TTL.  A zero TTL keeps the
// entry until explicitly deleted.  Setting an existing key overwrites the
// previous value, which is what gives one-time codes their
// at-most-one-live-code-per-email semantics.
func (s *Store) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if s.rdb == nil {
		return ErrDisabled
	}
	return s.rdb.Set(ctx, key, value, ttl).Err()
}

// Del removes the given keys.  Missing keys are not an error.
func (s *Store) Del(ctx context.Context, keys ...string) error {
	if s.rdb == nil || len(keys) == 0 {
		return nil
	}
	return s.rdb.Del(ctx, keys...).Err()
}
