package jwt

import (
	"errors"
	"testing"
	"time"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	svc, err := NewService(Config{
		Secret:         "test-secret-please-rotate",
		Issuer:         "livefeed",
		AccessTokenTTL: ttl,
	})
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}
	return svc
}

func TestGenerateAndParse(t *testing.T) {
	svc := newTestService(t, time.Minute)

	token, err := svc.Generate("user-42", "admin")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if claims.UserID != "user-42" {
		t.Errorf("got user_id %q, want %q", claims.UserID, "user-42")
	}
	if claims.Role != "admin" {
		t.Errorf("got role %q, want %q", claims.Role, "admin")
	}
	if claims.Issuer != "livefeed" {
		t.Errorf("got issuer %q, want %q", claims.Issuer, "livefeed")
	}
}

func TestParseExpiredToken(t *testing.T) {
	svc := newTestService(t, -time.Minute)

	token, err := svc.Generate("user-42", "user")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = svc.Parse(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("expected ErrExpiredToken, got %v", err)
	}
}

func TestParseTamperedToken(t *testing.T) {
	svc := newTestService(t, time.Minute)
	other := newTestService(t, time.Minute)
	other.cfg.Secret = "a-different-secret-entirely"

	token, err := other.Generate("user-42", "user")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := svc.Parse(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken for wrong key, got %v", err)
	}
}

func TestParseGarbage(t *testing.T) {
	svc := newTestService(t, time.Minute)
	if _, err := svc.Parse("not.a.token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestNewServiceRequiresSecret(t *testing.T) {
	if _, err := NewService(Config{}); err == nil {
		t.Error("expected error for missing secret")
	}
}
