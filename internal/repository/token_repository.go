package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/auth-service/internal/model"
)

// TokenRepo persists refresh tokens.  The table carries a unique key over
// (user_id, user_agent); that constraint, not application locking, is what
// keeps rotation safe under concurrent requests.
type TokenRepo struct{ DB *sql.DB }

func NewTokenRepo(db *sql.DB) *TokenRepo { return &TokenRepo{DB: db} }

// Find returns the refresh token row for a (user, device) pair.
func (r *TokenRepo) Find(ctx context.Context, userID, userAgent string) (model.RefreshToken, error) {
	var t model.RefreshToken
	err := r.DB.QueryRowContext(ctx,
		"SELECT token, user_id, user_agent, expires_at, created_at FROM refresh_tokens WHERE user_id=? AND user_agent=? LIMIT 1",
		userID, userAgent).Scan(&t.Token, &t.UserID, &t.UserAgent, &t.Exp, &t.CreatedAt)
	return t, err
}

// Upsert stores a fresh token value and expiry for the (user, device) pair.
// The single statement either inserts a new row or replaces the value and
// expiry of the existing one in place, so at most one row per pair can exist
// even when two rotations race.
func (r *TokenRepo) Upsert(ctx context.Context, userID, userAgent, token string, exp time.Time) (model.RefreshToken, error) {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token, user_id, user_agent, expires_at)
		VALUES (?,?,?,?)
		ON DUPLICATE KEY UPDATE token = VALUES(token), expires_at = VALUES(expires_at)`,
		token, userID, userAgent, exp)
	if err != nil {
		return model.RefreshToken{}, err
	}
	return r.Find(ctx, userID, userAgent)
}

// DeleteByValue removes the row matching the presented token value and
// returns it.  MySQL has no DELETE ... RETURNING, so the row is locked and
// read inside a transaction before the delete; of two concurrent calls with
// the same value exactly one observes the row, the other gets
// sql.ErrNoRows.
func (r *TokenRepo) DeleteByValue(ctx context.Context, token string) (model.RefreshToken, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.RefreshToken{}, err
	}
	defer func() { _ = tx.Rollback() }()

	var t model.RefreshToken
	err = tx.QueryRowContext(ctx,
		"SELECT token, user_id, user_agent, expires_at, created_at FROM refresh_tokens WHERE token=? FOR UPDATE",
		token).Scan(&t.Token, &t.UserID, &t.UserAgent, &t.Exp, &t.CreatedAt)
	if err != nil {
		return model.RefreshToken{}, err
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE token=?", token); err != nil {
		return model.RefreshToken{}, err
	}
	if err := tx.Commit(); err != nil {
		return model.RefreshToken{}, err
	}
	return t, nil
}

// DeleteAllForUser removes every refresh token owned by the user.  Invoked
// when the account itself is deleted.
func (r *TokenRepo) DeleteAllForUser(ctx context.Context, userID string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", userID)
	return err
}
