package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/auth-service/internal/cache"
	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/policy"
	"github.com/iliyamo/auth-service/internal/repository"
	"github.com/iliyamo/auth-service/internal/utils"
)

// UserService owns user account records: creation and updates through the
// atomic store upsert, two-tier (cache then store) lookups, administrative
// listing and deletion with its refresh-token cascade.
type UserService struct {
	users      UserStore
	tokens     TokenStore
	cache      Cache
	bcryptCost int
	cacheTTL   time.Duration
}

func NewUserService(users UserStore, tokens TokenStore, c Cache, bcryptCost int, cacheTTL time.Duration) *UserService {
	return &UserService{users: users, tokens: tokens, cache: c, bcryptCost: bcryptCost, cacheTTL: cacheTTL}
}

func userIDKey(id string) string       { return "user:id:" + id }
func userEmailKey(email string) string { return "user:email:" + email }

// SaveUser carries a partial user write keyed on email.  Nil fields leave
// the stored values untouched.  Password is the plain text; hashing happens
// here so no caller ever passes a hash around.
type SaveUser struct {
	Email       string
	Password    *string
	FirstName   *string
	LastName    *string
	Roles       []string
	Provider    *string
	IsConfirmed *bool
	IsBlocked   *bool
}

// Save inserts or updates a user and refreshes the cached copies under both
// the id and the email key.  Cache write failures are logged and ignored;
// the durable store remains the source of truth.
func (s *UserService) Save(ctx context.Context, in SaveUser) (model.User, error) {
	up := repository.UserUpsert{
		Email:       in.Email,
		FirstName:   in.FirstName,
		LastName:    in.LastName,
		Roles:       in.Roles,
		Provider:    in.Provider,
		IsConfirmed: in.IsConfirmed,
		IsBlocked:   in.IsBlocked,
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, err
		}
		up.Password = &hash
	}
	u, err := s.users.Upsert(ctx, up)
	if err != nil {
		return model.User{}, err
	}
	s.cacheUser(ctx, u)
	return u, nil
}

// Create is the insert-only variant of Save for registration.  A duplicate
// email fails with ErrEmailTaken instead of updating the existing row, so
// two racing registrations for the same email produce one account and one
// conflict.
func (s *UserService) Create(ctx context.Context, in SaveUser) (model.User, error) {
	up := repository.UserUpsert{
		Email:     in.Email,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Roles:     in.Roles,
		Provider:  in.Provider,
	}
	if in.Password != nil {
		hash, err := utils.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return model.User{}, err
		}
		up.Password = &hash
	}
	u, err := s.users.Insert(ctx, up)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return model.User{}, ErrEmailTaken
		}
		return model.User{}, err
	}
	s.cacheUser(ctx, u)
	return u, nil
}

// FindByEmail resolves a user through the read cache.  fresh bypasses the
// cache by dropping the entry first, forcing a durable read; use it on
// paths where password or confirmation flags must be current.
func (s *UserService) FindByEmail(ctx context.Context, email string, fresh bool) (model.User, error) {
	return s.find(ctx, userEmailKey(email), fresh, func() (model.User, error) {
		return s.users.FindByEmail(ctx, email)
	})
}

// FindByID is the id-keyed variant of FindByEmail.
func (s *UserService) FindByID(ctx context.Context, id string, fresh bool) (model.User, error) {
	return s.find(ctx, userIDKey(id), fresh, func() (model.User, error) {
		return s.users.FindByID(ctx, id)
	})
}

func (s *UserService) find(ctx context.Context, key string, fresh bool, load func() (model.User, error)) (model.User, error) {
	if fresh {
		if err := s.cache.Del(ctx, key); err != nil {
			log.Printf("user-cache: drop %s failed: %v", key, err)
		}
	} else if raw, err := s.cache.Get(ctx, key); err == nil {
		var u model.User
		if err := json.Unmarshal([]byte(raw), &u); err == nil {
			return u, nil
		}
	}
	u, err := load()
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.User{}, ErrNotFound
		}
		return model.User{}, err
	}
	s.cacheUser(ctx, u)
	return u, nil
}

func (s *UserService) cacheUser(ctx context.Context, u model.User) {
	raw, err := json.Marshal(u)
	if err != nil {
		return
	}
	// A disabled cache is announced once at startup; per-save logging
	// would only repeat it.
	if err := s.cache.Set(ctx, userIDKey(u.ID), string(raw), s.cacheTTL); err != nil && !errors.Is(err, cache.ErrDisabled) {
		log.Printf("user-cache: set id key failed: %v", err)
	}
	if err := s.cache.Set(ctx, userEmailKey(u.Email), string(raw), s.cacheTTL); err != nil && !errors.Is(err, cache.ErrDisabled) {
		log.Printf("user-cache: set email key failed: %v", err)
	}
}

// List returns a page of users for the administrative listing.
func (s *UserService) List(ctx context.Context, q repository.ListQuery) ([]model.User, error) {
	return s.users.List(ctx, q)
}

// Count returns the number of users matching the search filter.
func (s *UserService) Count(ctx context.Context, search string) (int64, error) {
	return s.users.Count(ctx, search)
}

// Delete removes a user after an admin-or-self policy check.  Every refresh
// token owned by the user is deleted first and the cached copies dropped,
// so no session survives the account.
func (s *UserService) Delete(ctx context.Context, id string, actor utils.Claims) error {
	if !policy.Allow([]string{model.RoleAdmin}, actor, id) {
		return ErrForbidden
	}
	u, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	if err := s.tokens.DeleteAllForUser(ctx, id); err != nil {
		return err
	}
	if err := s.cache.Del(ctx, userIDKey(u.ID), userEmailKey(u.Email)); err != nil {
		log.Printf("user-cache: drop on delete failed: %v", err)
	}
	return s.users.Delete(ctx, id)
}
