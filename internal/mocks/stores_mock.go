// Package mocks provides testify-backed doubles for the service-layer
// dependency interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
)

type UserStore struct{ mock.Mock }

func (m *UserStore) Upsert(ctx context.Context, u repository.UserUpsert) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *UserStore) Insert(ctx context.Context, u repository.UserUpsert) (model.User, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *UserStore) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *UserStore) FindByID(ctx context.Context, id string) (model.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.User), args.Error(1)
}
func (m *UserStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *UserStore) List(ctx context.Context, q repository.ListQuery) ([]model.User, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}
func (m *UserStore) Count(ctx context.Context, search string) (int64, error) {
	args := m.Called(ctx, search)
	return args.Get(0).(int64), args.Error(1)
}

type TokenStore struct{ mock.Mock }

func (m *TokenStore) Find(ctx context.Context, userID, userAgent string) (model.RefreshToken, error) {
	args := m.Called(ctx, userID, userAgent)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}
func (m *TokenStore) Upsert(ctx context.Context, userID, userAgent, token string, exp time.Time) (model.RefreshToken, error) {
	args := m.Called(ctx, userID, userAgent, token, exp)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}
func (m *TokenStore) DeleteByValue(ctx context.Context, token string) (model.RefreshToken, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(model.RefreshToken), args.Error(1)
}
func (m *TokenStore) DeleteAllForUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type Cache struct{ mock.Mock }

func (m *Cache) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}
func (m *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}
func (m *Cache) Del(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

type Notifier struct{ mock.Mock }

func (m *Notifier) SendConfirmation(ctx context.Context, email, name, code string) error {
	return m.Called(ctx, email, name, code).Error(0)
}
func (m *Notifier) SendRecoveryInstructions(ctx context.Context, email, userAgent, code string) error {
	return m.Called(ctx, email, userAgent, code).Error(0)
}
