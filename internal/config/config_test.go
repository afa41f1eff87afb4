package config

import (
	"testing"
)

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("APP_PORT", "8080")
	t.Setenv("DB_USER", "auth")
	t.Setenv("DB_PASS", "")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_PORT", "3306")
	t.Setenv("DB_NAME", "auth_test")
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("ACCESS_TOKEN_TTL_MIN", "15")
	t.Setenv("REFRESH_TOKEN_TTL_DAYS", "30")
	t.Setenv("BCRYPT_COST", "10")
	t.Setenv("USER_CACHE_TTL_SEC", "120")
	t.Setenv("UI_ENDPOINT", "https://app.example.com")

	cfg := Load()
	if cfg.Env != "test" {
		t.Fatalf("expected APP_ENV test, got %s", cfg.Env)
	}
	if cfg.Port != "8080" {
		t.Fatalf("expected APP_PORT 8080, got %s", cfg.Port)
	}
	if cfg.JWTSecret != "test-secret" {
		t.Fatalf("expected JWT_SECRET override, got %s", cfg.JWTSecret)
	}
	if cfg.AccessTTLMin != 15 {
		t.Fatalf("expected ACCESS_TOKEN_TTL_MIN 15, got %d", cfg.AccessTTLMin)
	}
	if cfg.RefreshTTLDays != 30 {
		t.Fatalf("expected REFRESH_TOKEN_TTL_DAYS 30, got %d", cfg.RefreshTTLDays)
	}
	if cfg.BcryptCost != 10 {
		t.Fatalf("expected BCRYPT_COST 10, got %d", cfg.BcryptCost)
	}
	if cfg.UserCacheSec != 120 {
		t.Fatalf("expected USER_CACHE_TTL_SEC 120, got %d", cfg.UserCacheSec)
	}
	if cfg.CodeTTLSec != 900 {
		t.Fatalf("expected CODE_TTL_SEC default 900, got %d", cfg.CodeTTLSec)
	}
	if cfg.UIEndpoint != "https://app.example.com" {
		t.Fatalf("expected UI_ENDPOINT override, got %s", cfg.UIEndpoint)
	}
	if cfg.SMTPPort != "587" {
		t.Fatalf("expected SMTP_PORT default 587, got %s", cfg.SMTPPort)
	}
}
