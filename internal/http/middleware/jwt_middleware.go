package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/diagnosis/wedding-rsvp/internal/http/response"
	"github.com/diagnosis/wedding-rsvp/pkg/auth"
	"github.com/diagnosis/wedding-rsvp/pkg/logger"
)

// RequireAdmin rejects requests without a valid admin bearer token:
// missing, malformed or expired tokens get 401, a non-admin role gets 403.
func RequireAdmin(tokens *auth.TokenService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scheme, raw, ok := strings.Cut(r.Header.Get("Authorization"), " ")
			raw = strings.TrimSpace(raw)
			if !ok || !strings.EqualFold(scheme, "Bearer") || raw == "" {
				response.Unauthorized(w, "Missing or invalid authorization header")
				return
			}

			claims, err := tokens.VerifyAdminToken(raw)
			switch {
			case errors.Is(err, auth.ErrTokenExpired):
				response.WriteError(w, http.StatusUnauthorized, "Token expired", response.CodeExpiredToken)
				return
			case errors.Is(err, auth.ErrForbiddenRole):
				response.Forbidden(w, "Invalid token")
				return
			case err != nil:
				logger.DebugContext(r.Context(), "Rejected admin token", "error", err)
				response.WriteError(w, http.StatusUnauthorized, "Invalid token", response.CodeInvalidToken)
				return
			}

			ctx := context.WithValue(r.Context(), logger.RoleKey, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
