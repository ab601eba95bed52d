// ABOUTME: Unit tests for the request-scoped auth context
// ABOUTME: Covers role checks, self checks, and context plumbing

package auth

import (
	"context"
	"testing"

	"github.com/kirppis/kirppis/internal/store"
)

func TestAuthContext_IsAdmin(t *testing.T) {
	admin := &AuthContext{User: &store.User{ID: "a", Role: store.RoleAdmin}}
	user := &AuthContext{User: &store.User{ID: "u", Role: store.RoleUser}}

	if !admin.IsAdmin() {
		t.Error("admin.IsAdmin() = false")
	}
	if user.IsAdmin() {
		t.Error("user.IsAdmin() = true")
	}
}

func TestAuthContext_IsSelf(t *testing.T) {
	ac := &AuthContext{User: &store.User{ID: "user-1", Role: store.RoleUser}}

	if !ac.IsSelf("user-1") {
		t.Error("IsSelf(own ID) = false")
	}
	if ac.IsSelf("user-2") {
		t.Error("IsSelf(other ID) = true")
	}
	if ac.IsSelf("") {
		t.Error("IsSelf(empty) = true")
	}
}

func TestAuthContext_CanAccessUser(t *testing.T) {
	admin := &AuthContext{User: &store.User{ID: "admin-1", Role: store.RoleAdmin}}
	user := &AuthContext{User: &store.User{ID: "user-1", Role: store.RoleUser}}

	if !admin.CanAccessUser("someone-else") {
		t.Error("admin cannot access other user")
	}
	if !user.CanAccessUser("user-1") {
		t.Error("user cannot access self")
	}
	if user.CanAccessUser("user-2") {
		t.Error("user can access other user")
	}
}

func TestFromContext_Missing(t *testing.T) {
	if got := FromContext(context.Background()); got != nil {
		t.Errorf("FromContext() = %v, want nil", got)
	}
}

func TestWithAuth_RoundTrip(t *testing.T) {
	ac := &AuthContext{User: &store.User{ID: "user-1", Role: store.RoleUser}}
	ctx := WithAuth(context.Background(), ac)

	got := FromContext(ctx)
	if got == nil {
		t.Fatal("FromContext() = nil")
	}
	if got.User.ID != "user-1" {
		t.Errorf("User.ID = %q, want %q", got.User.ID, "user-1")
	}
}

func TestMustFromContext_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("MustFromContext() did not panic on missing auth")
		}
	}()
	MustFromContext(context.Background())
}
