package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"
)

// CodeManager issues and checks single-use numeric codes scoped to an email
// address.  The same mechanism backs both account confirmation and password
// recovery; only the downstream effect differs.  Codes live in the
// ephemeral cache under a per-email key, so issuing a new code overwrites
// the previous one and at most one code is ever live per email.
type CodeManager struct {
	cache Cache
	ttl   time.Duration
}

func NewCodeManager(c Cache, ttl time.Duration) *CodeManager {
	return &CodeManager{cache: c, ttl: ttl}
}

func codeKey(email string) string { return "code:" + email }

// Issue generates a 6-digit code, stores it under the email and returns it
// so the caller can embed it in an out-of-band delivery.  A store write
// failure fails the issuance: a code that cannot be verified later must
// never be mailed out.
func (m *CodeManager) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n)
	if err := m.cache.Set(ctx, codeKey(email), code, m.ttl); err != nil {
		return "", err
	}
	return code, nil
}

// Verify reports whether the presented code matches the live code for the
// email.  A wrong code, an expired entry and a never-issued code all look
// the same to the caller.
func (m *CodeManager) Verify(ctx context.Context, email, presented string) bool {
	stored, err := m.cache.Get(ctx, codeKey(email))
	if err != nil || stored == "" {
		return false
	}
	return stored == presented
}

// Invalidate drops the live code for the email.  Called after a successful
// confirmation or recovery so a code can never be redeemed twice even
// inside its TTL.
func (m *CodeManager) Invalidate(ctx context.Context, email string) error {
	return m.cache.Del(ctx, codeKey(email))
}
