package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/geovoyage/backend/internal/api"
	"github.com/geovoyage/backend/internal/auth"
	appctx "github.com/geovoyage/backend/internal/context"
)

// AuthMiddleware handles session authentication for protected routes
type AuthMiddleware struct {
	sessionService *auth.SessionService
}

// NewAuthMiddleware creates a new AuthMiddleware instance
func NewAuthMiddleware(sessionService *auth.SessionService) *AuthMiddleware {
	return &AuthMiddleware{
		sessionService: sessionService,
	}
}

// Authenticate validates the opaque session token from the Authorization
// header against the session store and injects the account ID and raw
// token into the request context
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenMissing, "Authorization header is required", nil)
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenInvalid, "Invalid authorization header format", nil)
			return
		}

		token := parts[1]
		if token == "" {
			api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenInvalid, "Token is empty", nil)
			return
		}

		session, err := m.sessionService.Validate(r.Context(), token)
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrSessionNotFound),
				errors.Is(err, auth.ErrSessionExpired),
				errors.Is(err, auth.ErrSessionRevoked):
				api.WriteError(w, http.StatusUnauthorized, auth.CodeAuthTokenInvalid, "Invalid or expired token", nil)
			default:
				api.WriteInternalError(w)
			}
			return
		}

		ctx := context.WithValue(r.Context(), appctx.AccountIDKey, session.AccountID.String())
		ctx = context.WithValue(ctx, appctx.SessionTokenKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AuthenticateOptional injects the account ID and raw token into the
// request context when a valid Bearer token is presented, and passes the
// request through untouched otherwise. Used on public routes that attach
// extra behavior for logged-in callers.
func (m *AuthMiddleware) AuthenticateOptional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := parts[1]
		session, err := m.sessionService.Validate(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		ctx := context.WithValue(r.Context(), appctx.AccountIDKey, session.AccountID.String())
		ctx = context.WithValue(ctx, appctx.SessionTokenKey, token)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
