package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/iliyamo/auth-service/internal/model"
)

// UserRepo persists user records in the 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,email,password_hash,first_name,last_name,roles,provider,is_confirmed,is_blocked,created_at,updated_at"

// UserUpsert carries the fields of an insert-or-update keyed on the unique
// email.  Nil pointers leave the stored column untouched on update and fall
// back to the column default on insert.  Password must already be hashed.
type UserUpsert struct {
	Email       string
	Password    *string
	FirstName   *string
	LastName    *string
	Roles       []string
	Provider    *string
	IsConfirmed *bool
	IsBlocked   *bool
}

// Upsert inserts a new user or updates the provided fields of the existing
// row with the same email.  The statement is atomic on the users.email
// unique key, so two concurrent creations for the same email resolve to a
// single row.  Returns the stored row.
func (r *UserRepo) Upsert(ctx context.Context, u UserUpsert) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	var roles *string
	if len(u.Roles) > 0 {
		joined := model.JoinRoles(u.Roles)
		roles = &joined
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, roles, provider, is_confirmed, is_blocked)
		VALUES (?,?,?,COALESCE(?,''),COALESCE(?,''),COALESCE(?,'USER'),?,COALESCE(?,FALSE),COALESCE(?,FALSE))
		ON DUPLICATE KEY UPDATE
			password_hash = COALESCE(?, password_hash),
			first_name   = COALESCE(?, first_name),
			last_name    = COALESCE(?, last_name),
			roles        = COALESCE(?, roles),
			provider     = COALESCE(?, provider),
			is_confirmed = COALESCE(?, is_confirmed),
			is_blocked   = COALESCE(?, is_blocked)`,
		uuid.NewString(), email, u.Password, u.FirstName, u.LastName, roles, u.Provider, u.IsConfirmed, u.IsBlocked,
		u.Password, u.FirstName, u.LastName, roles, u.Provider, u.IsConfirmed, u.IsBlocked)
	if err != nil {
		return model.User{}, err
	}
	return r.FindByEmail(ctx, email)
}

// Insert creates a user row and fails with ErrEmailExists on a duplicate
// email instead of updating in place.
func (r *UserRepo) Insert(ctx context.Context, u UserUpsert) (model.User, error) {
	email := strings.ToLower(strings.TrimSpace(u.Email))
	roles := model.RoleUser
	if len(u.Roles) > 0 {
		roles = model.JoinRoles(u.Roles)
	}
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, roles, provider)
		VALUES (?,?,?,COALESCE(?,''),COALESCE(?,''),?,?)`,
		uuid.NewString(), email, u.Password, u.FirstName, u.LastName, roles, u.Provider)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return model.User{}, ErrEmailExists
		}
		return model.User{}, err
	}
	return r.FindByEmail(ctx, email)
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email)
	return scanUser(row)
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id)
	return scanUser(row)
}

// Delete removes a user row.  Refresh tokens are cascaded explicitly by the
// service layer before this call.
func (r *UserRepo) Delete(ctx context.Context, id string) error {
	_, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	return err
}

// ListQuery bounds an administrative listing: optional case-insensitive
// search over name/email, page-based pagination and whitelisted ordering.
type ListQuery struct {
	Search  string
	Page    int
	PerPage int
	Sort    string // created_at | updated_at | email | first_name | last_name
	Order   string // asc | desc
}

var sortColumns = map[string]bool{
	"created_at": true,
	"updated_at": true,
	"email":      true,
	"first_name": true,
	"last_name":  true,
}

// List returns a page of users matching the query.
func (r *UserRepo) List(ctx context.Context, q ListQuery) ([]model.User, error) {
	if q.PerPage <= 0 {
		q.PerPage = 20
	}
	if q.Page <= 0 {
		q.Page = 1
	}
	sort := "created_at"
	if sortColumns[q.Sort] {
		sort = q.Sort
	}
	order := "ASC"
	if strings.EqualFold(q.Order, "desc") {
		order = "DESC"
	}
	query := "SELECT " + userColumns + " FROM users"
	args := []interface{}{}
	if q.Search != "" {
		query += " WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ?"
		like := "%" + q.Search + "%"
		args = append(args, like, like, like)
	}
	query += " ORDER BY " + sort + " " + order + " LIMIT ? OFFSET ?"
	args = append(args, q.PerPage, (q.Page-1)*q.PerPage)

	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Count returns how many users match the search filter.
func (r *UserRepo) Count(ctx context.Context, search string) (int64, error) {
	query := "SELECT COUNT(*) FROM users"
	args := []interface{}{}
	if search != "" {
		query += " WHERE first_name LIKE ? OR last_name LIKE ? OR email LIKE ?"
		like := "%" + search + "%"
		args = append(args, like, like, like)
	}
	var n int64
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(&n)
	return n, err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		u        model.User
		password sql.NullString
		provider sql.NullString
		roles    string
	)
	err := row.Scan(&u.ID, &u.Email, &password, &u.FirstName, &u.LastName,
		&roles, &provider, &u.IsConfirmed, &u.IsBlocked, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}
	u.PasswordHash = password.String
	u.Provider = provider.String
	u.Roles = model.SplitRoles(roles)
	return u, nil
}
