package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/auth-service/internal/cache"
	"github.com/iliyamo/auth-service/internal/mocks"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/service"
)

func newMockedUserService() (*service.UserService, *mocks.UserStore, *mocks.TokenStore, *mocks.Cache) {
	users := new(mocks.UserStore)
	tokens := new(mocks.TokenStore)
	kv := new(mocks.Cache)
	svc := service.NewUserService(users, tokens, kv, bcrypt.MinCost, time.Minute)
	return svc, users, tokens, kv
}

func TestFindByEmailServesFromCache(t *testing.T) {
	svc, users, _, kv := newMockedUserService()

	cached := model.User{ID: "user-1", Email: "alice@example.com", Roles: []string{model.RoleUser}}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)
	kv.On("Get", mock.Anything, "user:email:alice@example.com").Return(string(raw), nil)

	u, err := svc.FindByEmail(context.Background(), "alice@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, cached.ID, u.ID)

	users.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestFindByEmailFreshBypassesCache(t *testing.T) {
	svc, users, _, kv := newMockedUserService()

	stored := model.User{ID: "user-1", Email: "alice@example.com", Roles: []string{model.RoleUser}}
	kv.On("Del", mock.Anything, []string{"user:email:alice@example.com"}).Return(nil)
	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored, nil)
	kv.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	u, err := svc.FindByEmail(context.Background(), "alice@example.com", true)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, u.ID)

	kv.AssertCalled(t, "Del", mock.Anything, []string{"user:email:alice@example.com"})
	users.AssertCalled(t, "FindByEmail", mock.Anything, "alice@example.com")
	// the fresh read repopulates both cache keys
	kv.AssertCalled(t, "Set", mock.Anything, "user:id:user-1", mock.Anything, mock.Anything)
	kv.AssertCalled(t, "Set", mock.Anything, "user:email:alice@example.com", mock.Anything, mock.Anything)
}

func TestFindByEmailFallsThroughOnMiss(t *testing.T) {
	svc, users, _, kv := newMockedUserService()

	stored := model.User{ID: "user-1", Email: "alice@example.com"}
	kv.On("Get", mock.Anything, "user:email:alice@example.com").Return("", cache.ErrMiss)
	users.On("FindByEmail", mock.Anything, "alice@example.com").Return(stored, nil)
	kv.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	u, err := svc.FindByEmail(context.Background(), "alice@example.com", false)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, u.ID)
}

func TestSaveToleratesCacheWriteFailure(t *testing.T) {
	svc, users, _, kv := newMockedUserService()

	stored := model.User{ID: "user-1", Email: "alice@example.com"}
	users.On("Upsert", mock.Anything, mock.Anything).Return(stored, nil)
	kv.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("redis gone"))

	u, err := svc.Save(context.Background(), service.SaveUser{Email: "alice@example.com"})
	require.NoError(t, err, "the durable store is the source of truth; cache failures must not fail the write")
	assert.Equal(t, stored.ID, u.ID)
}

func TestCreateMapsDuplicateEmail(t *testing.T) {
	svc, users, _, _ := newMockedUserService()

	// a registration that loses the insert race surfaces the conflict
	users.On("Insert", mock.Anything, mock.Anything).Return(model.User{}, repository.ErrEmailExists)

	_, err := svc.Create(context.Background(), service.SaveUser{Email: "alice@example.com"})
	assert.ErrorIs(t, err, service.ErrEmailTaken)
}

func TestSaveHashesPasswordBeforeStore(t *testing.T) {
	svc, users, _, kv := newMockedUserService()

	// the repository receives a bcrypt hash, never the plain text
	users.On("Upsert", mock.Anything, mock.MatchedBy(func(up repository.UserUpsert) bool {
		return up.Password != nil && *up.Password != "secret1" &&
			bcrypt.CompareHashAndPassword([]byte(*up.Password), []byte("secret1")) == nil
	})).Return(model.User{ID: "user-1", Email: "alice@example.com"}, nil)
	kv.On("Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)

	plain := "secret1"
	_, err := svc.Save(context.Background(), service.SaveUser{Email: "alice@example.com", Password: &plain})
	require.NoError(t, err)
	users.AssertExpectations(t)
}
