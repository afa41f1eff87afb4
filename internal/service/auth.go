package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
	"github.com/iliyamo/auth-service/internal/utils"
)

// TokenPair is the transient result of a successful authentication: a signed
// access token plus the current refresh-token row for the device.  It is
// never persisted as its own entity.
type TokenPair struct {
	AccessToken string
	AccessExp   time.Time
	Refresh     model.RefreshToken
}

// AuthService is the session manager.  It issues access/refresh pairs,
// rotates refresh tokens with one-row-per-device upsert semantics, runs the
// confirmation and recovery code flows and resolves federated identities to
// local accounts.
type AuthService struct {
	users          *UserService
	tokens         TokenStore
	codes          *CodeManager
	notifier       Notifier
	jwtSecret      string
	accessTTLMin   int
	refreshTTLDays int
}

func NewAuthService(users *UserService, tokens TokenStore, codes *CodeManager, notifier Notifier,
	jwtSecret string, accessTTLMin, refreshTTLDays int) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		codes:          codes,
		notifier:       notifier,
		jwtSecret:      jwtSecret,
		accessTTLMin:   accessTTLMin,
		refreshTTLDays: refreshTTLDays,
	}
}

// GenerateTokens mints an access token for the user and rotates the refresh
// token for the (user, device) pair.  The store upsert either replaces the
// existing row's value and expiry in place or inserts a new row; either way
// at most one row exists per pair afterwards.
func (s *AuthService) GenerateTokens(ctx context.Context, u model.User, userAgent string) (TokenPair, error) {
	if u.IsBlocked {
		return TokenPair{}, ErrUserBlocked
	}
	access, err := utils.NewAccessToken(s.jwtSecret, u, s.accessTTLMin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.Upsert(ctx, u.ID, userAgent,
		utils.NewRefreshTokenValue(), utils.RefreshExpiry(s.refreshTTLDays))
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access.Token, AccessExp: access.Exp, Refresh: refresh}, nil
}

// Refresh exchanges a presented refresh token for a new pair.  The token is
// single-use: the row is atomically deleted before the expiry check, so a
// replayed token (expired or not) never yields a session, and of two
// concurrent calls with the same token only the one that wins the delete
// succeeds.
func (s *AuthService) Refresh(ctx context.Context, presented, userAgent string) (TokenPair, error) {
	row, err := s.tokens.DeleteByValue(ctx, presented)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}
	if row.Exp.Before(time.Now().UTC()) {
		return TokenPair{}, ErrUnauthorized
	}
	u, err := s.users.FindByID(ctx, row.UserID, false)
	if err != nil {
		return TokenPair{}, ErrUnauthorized
	}
	return s.GenerateTokens(ctx, u, userAgent)
}

// Logout revokes the presented refresh token.  Revoking a token that does
// not exist is treated as success; there is nothing left to revoke.
func (s *AuthService) Logout(ctx context.Context, presented string) error {
	_, err := s.tokens.DeleteByValue(ctx, presented)
	if errors.Is(err, sql.ErrNoRows) {
		return nil
	}
	return err
}

// RegisterInput is the payload of a new registration.
type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// Register creates an unconfirmed account, issues a confirmation code and
// mails it.  The code is stored before the mail goes out, so a delivery
// failure leaves a resendable code behind rather than rolling it back.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (model.User, error) {
	if _, err := s.users.FindByEmail(ctx, in.Email, false); err == nil {
		return model.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrNotFound) {
		return model.User{}, err
	}
	code, err := s.codes.Issue(ctx, in.Email)
	if err != nil {
		return model.User{}, err
	}
	if err := s.notifier.SendConfirmation(ctx, in.Email, in.FirstName, code); err != nil {
		return model.User{}, fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return s.users.Create(ctx, SaveUser{
		Email:     in.Email,
		Password:  &in.Password,
		FirstName: &in.FirstName,
		LastName:  &in.LastName,
	})
}

// Confirm redeems a confirmation code and marks the account confirmed.  The
// code is invalidated on success so it cannot be redeemed twice.
func (s *AuthService) Confirm(ctx context.Context, email, code string) (model.User, error) {
	if !s.codes.Verify(ctx, email, code) {
		return model.User{}, ErrInvalidCode
	}
	if _, err := s.users.FindByEmail(ctx, email, false); err != nil {
		// An account may legitimately be missing here (codes are keyed by
		// email, not by user row); report it the same as a bad code.
		return model.User{}, ErrInvalidCode
	}
	confirmed := true
	u, err := s.users.Save(ctx, SaveUser{Email: email, IsConfirmed: &confirmed})
	if err != nil {
		return model.User{}, err
	}
	if err := s.codes.Invalidate(ctx, email); err != nil {
		log.Printf("auth: invalidate confirmation code for %s failed: %v", email, err)
	}
	return u, nil
}

// Login verifies credentials against a fresh durable read and issues a
// token pair.  The password check runs before the confirmation check so an
// unauthenticated prober cannot learn whether an account exists; only a
// caller who knows the password sees the not-confirmed error.
func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (TokenPair, error) {
	u, err := s.users.FindByEmail(ctx, email, true)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return TokenPair{}, ErrInvalidCredentials
		}
		return TokenPair{}, err
	}
	if u.PasswordHash == "" || !utils.VerifyPassword(u.PasswordHash, password) {
		return TokenPair{}, ErrInvalidCredentials
	}
	if !u.IsConfirmed {
		return TokenPair{}, ErrNotConfirmed
	}
	return s.GenerateTokens(ctx, u, userAgent)
}

// RequestRecovery issues a recovery code for a local account and mails the
// instructions.  Federated accounts have no password to recover and are
// pointed back at their provider.
func (s *AuthService) RequestRecovery(ctx context.Context, email, userAgent string) error {
	u, err := s.users.FindByEmail(ctx, email, false)
	if err != nil {
		return err
	}
	if u.Provider != "" {
		return ErrProviderAccount
	}
	code, err := s.codes.Issue(ctx, email)
	if err != nil {
		return err
	}
	if err := s.notifier.SendRecoveryInstructions(ctx, email, userAgent, code); err != nil {
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}

// Recover redeems a recovery code and replaces the account password.  The
// fresh read bypasses the cached user so the write applies to the current
// row, the code is invalidated, and the account is confirmed as a side
// effect since control of the mailbox was just proven.
func (s *AuthService) Recover(ctx context.Context, email, code, newPassword string) (model.User, error) {
	if !s.codes.Verify(ctx, email, code) {
		return model.User{}, ErrInvalidCode
	}
	if _, err := s.users.FindByEmail(ctx, email, true); err != nil {
		return model.User{}, err
	}
	confirmed := true
	u, err := s.users.Save(ctx, SaveUser{Email: email, Password: &newPassword, IsConfirmed: &confirmed})
	if err != nil {
		return model.User{}, err
	}
	if err := s.codes.Invalidate(ctx, email); err != nil {
		log.Printf("auth: invalidate recovery code for %s failed: %v", email, err)
	}
	return u, nil
}

// ProviderAuth resolves an email verified by an external identity provider
// to a local account and issues a token pair.  The account is created with
// no password on first sight; on later logins the upsert merely reasserts
// the provider tag.  Two concurrent first logins for the same email
// serialize on the store's unique email key, so exactly one row results.
func (s *AuthService) ProviderAuth(ctx context.Context, email, userAgent, provider string) (TokenPair, error) {
	u, err := s.users.Save(ctx, SaveUser{Email: email, Provider: &provider})
	if err != nil {
		return TokenPair{}, fmt.Errorf("%w: %v", ErrProviderAuth, err)
	}
	return s.GenerateTokens(ctx, u, userAgent)
}
