package utils // package utils provides helpers for token creation and password hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
    "github.com/google/uuid"       // UUIDv4 values for opaque refresh tokens

    "github.com/iliyamo/auth-service/internal/model"
)

// AccessToken represents a signed JWT access token along with its expiry.
// Access tokens are short-lived, self-describing and verified without any
// store lookup: possession of a structurally valid, unexpired, correctly
// signed token is sufficient.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims is the identity payload embedded in every access token.  The
// middleware extracts it once per request and hands it to handlers through
// the request context, so the core never inspects raw transport objects.
type Claims struct {
    ID        string
    Email     string
    Roles     []string
    FirstName string
    LastName  string
}

// ErrInvalidToken is returned by ParseAccessToken for any structurally
// invalid, expired or wrongly signed token.
var ErrInvalidToken = errors.New("invalid access token")

// NewAccessToken builds and signs an HS256 JWT for a user.  The claims carry
// the user's id, email, roles and name plus standard exp/iat, so downstream
// services can authorize requests without calling back into the store.
func NewAccessToken(secret string, u model.User, ttlMin int) (AccessToken, error) {
    now := time.Now().UTC()
    exp := now.Add(time.Duration(ttlMin) * time.Minute)
    claims := jwt.MapClaims{
        "id":        u.ID,
        "email":     u.Email,
        "roles":     u.Roles,
        "firstName": u.FirstName,
        "lastName":  u.LastName,
        "exp":       exp.Unix(),
        "iat":       now.Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates the signature and expiry of a serialized access
// token and returns its identity claims.  Tokens signed with any method
// other than HMAC are rejected.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    c := Claims{
        ID:        asString(mc["id"]),
        Email:     asString(mc["email"]),
        FirstName: asString(mc["firstName"]),
        LastName:  asString(mc["lastName"]),
    }
    if c.ID == "" {
        return Claims{}, ErrInvalidToken
    }
    // JSON arrays decode as []interface{}; collect the string members.
    if arr, ok := mc["roles"].([]interface{}); ok {
        for _, v := range arr {
            if s, ok := v.(string); ok {
                c.Roles = append(c.Roles, s)
            }
        }
    }
    return c, nil
}

func asString(v interface{}) string {
    s, _ := v.(string)
    return s
}

// NewRefreshTokenValue returns a fresh opaque refresh-token value.  UUIDv4
// entropy makes values globally unique and unguessable; values are never
// reused across rotations.
func NewRefreshTokenValue() string { return uuid.NewString() }

// RefreshExpiry computes the absolute expiry for a refresh token issued or
// rotated now.  The horizon is recomputed fresh on every rotation.
func RefreshExpiry(ttlDays int) time.Time {
    return time.Now().UTC().Add(time.Duration(ttlDays) * 24 * time.Hour)
}
