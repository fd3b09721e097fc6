package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/diagnosis/wedding-rsvp/pkg/auth"
	"github.com/diagnosis/wedding-rsvp/pkg/logger"
)

var ErrInvalidCredentials = errors.New("invalid password")

type AuthService interface {
	Login(ctx context.Context, password string) (string, error)
}

type authService struct {
	password     string
	passwordHash string
	tokens       *auth.TokenService
}

// NewAuthService checks logins against passwordHash (argon2id) when set,
// otherwise against the plaintext password.
func NewAuthService(password, passwordHash string, tokens *auth.TokenService) AuthService {
	return &authService{
		password:     password,
		passwordHash: passwordHash,
		tokens:       tokens,
	}
}

func (s *authService) Login(ctx context.Context, password string) (string, error) {
	ok, err := s.checkPassword(password)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to verify admin password", "error", err)
		return "", fmt.Errorf("failed to verify password: %w", err)
	}
	if !ok {
		logger.WarnContext(ctx, "Rejected admin login")
		return "", ErrInvalidCredentials
	}

	token, err := s.tokens.IssueAdminToken()
	if err != nil {
		logger.ErrorContext(ctx, "Failed to issue admin token", "error", err)
		return "", err
	}

	logger.InfoContext(ctx, "Admin logged in")
	return token, nil
}

func (s *authService) checkPassword(password string) (bool, error) {
	if s.passwordHash != "" {
		return argon2id.ComparePasswordAndHash(password, s.passwordHash)
	}
	if s.password == "" {
		return false, nil
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1, nil
}
