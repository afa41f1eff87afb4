package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// A nil Redis client must degrade to a store where reads miss and deletes
// are no-ops, so cached lookups silently fall through to the durable store.
// Writes must fail loudly: a value that cannot be read back later (a
// one-time code) must never appear to have been stored.
func TestNilClientDegrades(t *testing.T) {
	s := New(nil)
	ctx := context.Background()

	assert.False(t, s.Enabled())

	_, err := s.Get(ctx, "user:id:1")
	assert.ErrorIs(t, err, ErrMiss)

	assert.ErrorIs(t, s.Set(ctx, "user:id:1", "payload", time.Minute), ErrDisabled)
	assert.NoError(t, s.Del(ctx, "user:id:1", "user:email:a@example.com"))
	assert.NoError(t, s.Del(ctx))
}
