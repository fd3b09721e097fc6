package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/wedding-rsvp/pkg/auth"
)

func TestLogin_PlaintextPassword(t *testing.T) {
	tokens := auth.NewTokenService("secret", 24*time.Hour)
	svc := NewAuthService("let-me-in", "", tokens)
	ctx := context.Background()

	token, err := svc.Login(ctx, "let-me-in")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, err := tokens.VerifyAdminToken(token); err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}

	for _, pw := range []string{"", "let-me-in ", "LET-ME-IN", "wrong"} {
		if _, err := svc.Login(ctx, pw); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("password %q: expected ErrInvalidCredentials, got %v", pw, err)
		}
	}

	// repeated failures leave no trace: the right password still works
	if _, err := svc.Login(ctx, "let-me-in"); err != nil {
		t.Fatalf("login after failures: %v", err)
	}
}

func TestLogin_Argon2idHash(t *testing.T) {
	params := &argon2id.Params{Memory: 8 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	hash, err := argon2id.CreateHash("hashed-secret", params)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	tokens := auth.NewTokenService("secret", time.Hour)
	svc := NewAuthService("ignored-when-hash-set", hash, tokens)

	if _, err := svc.Login(context.Background(), "hashed-secret"); err != nil {
		t.Fatalf("login with hashed password: %v", err)
	}
	if _, err := svc.Login(context.Background(), "ignored-when-hash-set"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("plaintext must be ignored when hash is set, got %v", err)
	}
}

func TestLogin_MalformedHashIsServerError(t *testing.T) {
	svc := NewAuthService("", "not-a-phc-string", auth.NewTokenService("secret", time.Hour))

	_, err := svc.Login(context.Background(), "anything")
	if err == nil || errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected a non-credential error, got %v", err)
	}
}

func TestLogin_EmptyConfiguredPasswordNeverMatches(t *testing.T) {
	svc := NewAuthService("", "", auth.NewTokenService("secret", time.Hour))

	if _, err := svc.Login(context.Background(), ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
