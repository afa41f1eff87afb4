package model

import (
    "strings"
    "time"
)

// Role names stored in the users.roles column.  Roles is a set; every
// account carries at least RoleUser.  RoleAdmin unlocks the administrative
// user endpoints.
const (
    RoleUser  = "USER"
    RoleAdmin = "ADMIN"
)

// Provider tags for accounts created through a federated login.  The tag
// records which external identity provider vouched for the email.  A user
// with a provider tag may have no password hash at all.
const (
    ProviderGoogle = "GOOGLE"
    ProviderYandex = "YANDEX"
)

// User represents an application user record as stored in the `users`
// table.  Each field corresponds to a column in the database.  The json
// tags are omitted here because these structs are used internally by the
// repository and service layers; handlers define separate response types
// with appropriate JSON tags.
//
// Fields:
//  ID           – primary key, a UUID string.
//  Email        – unique email address (lower-cased before storage).
//  PasswordHash – bcrypt hashed password; empty for pure-federated accounts.
//  FirstName    – given name, may be empty.
//  LastName     – family name, may be empty.
//  Roles        – role names; persisted as a comma-joined list.
//  Provider     – federation provider tag, empty for local accounts.
//  IsConfirmed  – whether the email address has been confirmed.
//  IsBlocked    – whether the account is blocked from obtaining tokens.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
    ID           string    // users.id
    Email        string    // users.email
    PasswordHash string    // users.password_hash (nullable)
    FirstName    string    // users.first_name
    LastName     string    // users.last_name
    Roles        []string  // users.roles (comma-joined)
    Provider     string    // users.provider (nullable)
    IsConfirmed  bool      // users.is_confirmed
    IsBlocked    bool      // users.is_blocked
    CreatedAt    time.Time // users.created_at
    UpdatedAt    time.Time // users.updated_at
}

// HasRole reports whether the user carries the given role name.
func (u User) HasRole(role string) bool {
    for _, r := range u.Roles {
        if r == role {
            return true
        }
    }
    return false
}

// JoinRoles flattens a role set into the comma-joined column form.
func JoinRoles(roles []string) string { return strings.Join(roles, ",") }

// SplitRoles parses the comma-joined column form back into a role set.
// An empty column yields a nil slice.
func SplitRoles(s string) []string {
    if s == "" {
        return nil
    }
    return strings.Split(s, ",")
}

// RefreshToken models an entry in the `refresh_tokens` table.  Exactly one
// row may exist per (UserID, UserAgent) pair; rotation overwrites the token
// value and expiry of the existing row instead of inserting a second one.
//
// Fields:
//  Token     – primary key, the opaque UUID value handed to the client.
//  UserID    – owner of the token.
//  UserAgent – the device/user-agent string the token is bound to.
//  Exp       – absolute expiration timestamp.
//  CreatedAt – timestamp of creation.
type RefreshToken struct {
    Token     string    // refresh_tokens.token
    UserID    string    // refresh_tokens.user_id
    UserAgent string    // refresh_tokens.user_agent
    Exp       time.Time // refresh_tokens.expires_at
    CreatedAt time.Time // refresh_tokens.created_at
}
