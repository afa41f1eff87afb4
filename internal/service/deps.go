package service

import (
	"context"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
)

// UserStore is the durable credential store surface the services need.
// *repository.UserRepo satisfies it; tests substitute mocks.
type UserStore interface {
	Upsert(ctx context.Context, u repository.UserUpsert) (model.User, error)
	Insert(ctx context.Context, u repository.UserUpsert) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	FindByID(ctx context.Context, id string) (model.User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q repository.ListQuery) ([]model.User, error)
	Count(ctx context.Context, search string) (int64, error)
}

// TokenStore is the refresh-token store surface.  *repository.TokenRepo
// satisfies it.  All uniqueness and single-use guarantees live behind this
// interface, in the store's own atomic primitives.
type TokenStore interface {
	Find(ctx context.Context, userID, userAgent string) (model.RefreshToken, error)
	Upsert(ctx context.Context, userID, userAgent, token string, exp time.Time) (model.RefreshToken, error)
	DeleteByValue(ctx context.Context, token string) (model.RefreshToken, error)
	DeleteAllForUser(ctx context.Context, userID string) error
}

// Cache is the ephemeral key-value surface for one-time codes and cached
// user lookups.  *cache.Store satisfies it; Get reports absence with
// cache.ErrMiss.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Notifier delivers out-of-band messages carrying one-time codes.  Delivery
// is fire-and-forget from the core's perspective: a failure surfaces as an
// error but does not roll back prior state changes.
type Notifier interface {
	SendConfirmation(ctx context.Context, email, name, code string) error
	SendRecoveryInstructions(ctx context.Context, email, userAgent, code string) error
}
