// ABOUTME: HTTP middleware for JWT authentication on API endpoints
// ABOUTME: Extracts JWT from Authorization header and adds the resolved user to context

package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kirppis/kirppis/internal/store"
)

// extractBearerToken extracts a bearer token from the Authorization header.
// Returns the token and an error message (empty if successful).
func extractBearerToken(authHeader string) (string, string) {
	if authHeader == "" {
		return "", "missing authorization header"
	}
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", "invalid authorization header format"
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return "", "empty token"
	}
	return token, ""
}

// Middleware creates an HTTP middleware that extracts and validates JWT
// tokens. The subject is re-resolved against the user store on every
// request, so a role change or account deletion is effective immediately
// regardless of the claims embedded in the token. The loaded user is
// attached to the request context via WithAuth.
func Middleware(users store.UserStore, tokens *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, errMsg := extractBearerToken(r.Header.Get("Authorization"))
			if errMsg != "" {
				unauthorized(w, errMsg)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				if errors.Is(err, ErrExpiredToken) {
					unauthorized(w, "token expired")
					return
				}
				unauthorized(w, "invalid token")
				return
			}

			user, err := users.GetUser(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					// The account behind the token no longer exists
					unauthorized(w, "user no longer exists")
					return
				}
				// A store failure is not a credential problem.
				slog.Default().With("component", "auth").Error("resolving authenticated user", "error", err)
				internalError(w)
				return
			}

			authCtx := &AuthContext{User: user}
			next.ServeHTTP(w, r.WithContext(WithAuth(r.Context(), authCtx)))
		})
	}
}

// RequireAdmin creates an HTTP middleware that requires the admin role.
// Must be used after Middleware.
func RequireAdmin() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authCtx := FromContext(r.Context())
			if authCtx == nil {
				unauthorized(w, "not authenticated")
				return
			}

			if !authCtx.IsAdmin() {
				forbidden(w, "admin role required")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	http.Error(w, `{"status":"fail","message":"`+msg+`"}`, http.StatusUnauthorized)
}

func forbidden(w http.ResponseWriter, msg string) {
	http.Error(w, `{"status":"fail","message":"`+msg+`"}`, http.StatusForbidden)
}

func internalError(w http.ResponseWriter) {
	http.Error(w, `{"status":"error","message":"internal server error"}`, http.StatusInternalServerError)
}
