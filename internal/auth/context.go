// ABOUTME: Authentication context for tracking identity through request handlers
// ABOUTME: Provides WithAuth/FromContext for propagating auth info via context

package auth

import (
	"context"

	"github.com/kirppis/kirppis/internal/store"
)

// AuthContext holds the authenticated identity for a request. User is the
// record freshly loaded from the store during token verification, never
// the stale token claims, so role changes and deletions take effect on
// the next request.
type AuthContext struct {
	User *store.User
}

// IsAdmin returns true if the authenticated user has the admin role.
func (a *AuthContext) IsAdmin() bool {
	return a.User.Role == store.RoleAdmin
}

// IsSelf reports whether the authenticated user is the target user.
// Identity is compared on ID only.
func (a *AuthContext) IsSelf(targetID string) bool {
	return a.User.ID == targetID
}

// CanAccessUser implements the self-or-admin predicate used by the user
// read/update endpoints.
func (a *AuthContext) CanAccessUser(targetID string) bool {
	return a.IsSelf(targetID) || a.IsAdmin()
}

// authContextKey is the key type for storing AuthContext in context.Context.
type authContextKey struct{}

// WithAuth returns a new context with the AuthContext attached.
func WithAuth(ctx context.Context, auth *AuthContext) context.Context {
	return context.WithValue(ctx, authContextKey{}, auth)
}

// FromContext retrieves the AuthContext from the context, returning nil if not present.
func FromContext(ctx context.Context) *AuthContext {
	val := ctx.Value(authContextKey{})
	if val == nil {
		return nil
	}
	auth, ok := val.(*AuthContext)
	if !ok {
		return nil
	}
	return auth
}

// MustFromContext retrieves the AuthContext from the context, panicking if not present.
func MustFromContext(ctx context.Context) *AuthContext {
	auth := FromContext(ctx)
	if auth == nil {
		panic("auth: AuthContext not found in context")
	}
	return auth
}
