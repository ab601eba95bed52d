// ABOUTME: Unit tests for the auth service against the in-memory store
// ABOUTME: Covers registration policy, login error uniformity, and password change

package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirppis/kirppis/internal/store"
)

func newTestService(t *testing.T) (*Service, *store.MockStore) {
	t.Helper()
	s := store.NewMockStore()
	tokens := NewTokenManager([]byte(testSecret), time.Hour)
	return NewService(s, tokens), s
}

func TestService_Register(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.Register(ctx, "Ann Example", "Ann@Example.com", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if token == "" {
		t.Error("Register() returned empty token")
	}
	if user.Role != store.RoleUser {
		t.Errorf("Role = %q, want %q", user.Role, store.RoleUser)
	}
	if user.Email != "ann@example.com" {
		t.Errorf("Email = %q, want normalized lowercase", user.Email)
	}
	if user.PasswordHash == "Secret123" {
		t.Error("password stored as plaintext")
	}

	// The issued token must round-trip through verification.
	claims, err := svc.tokens.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("token sub = %q, want %q", claims.UserID, user.ID)
	}
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ann", "ann@example.com", "Secret123"); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	// Same address with different casing still collides.
	_, _, err := svc.Register(ctx, "Other Ann", "ANN@example.com", "Secret456")
	if !errors.Is(err, store.ErrDuplicateEmail) {
		t.Errorf("Register() error = %v, want ErrDuplicateEmail", err)
	}
}

func TestService_Register_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		userName string
		email    string
		password string
	}{
		{"empty name", "", "ann@example.com", "Secret123"},
		{"long name", strings.Repeat("a", 60), "ann@example.com", "Secret123"},
		{"bad email", "Ann", "not-an-email", "Secret123"},
		{"weak password", "Ann", "ann@example.com", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(ctx, tt.userName, tt.email, tt.password)
			if err == nil {
				t.Fatal("Register() expected error")
			}
			if !IsValidationError(err) {
				t.Errorf("error is not a ValidationError: %v", err)
			}
		})
	}
}

func TestService_Login(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ann", "ann@example.com", "Secret123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, token, err := svc.Login(ctx, "ann@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}
	if token == "" {
		t.Error("Login() returned empty token")
	}
	if user.Email != "ann@example.com" {
		t.Errorf("Email = %q", user.Email)
	}

	// Email lookup is case-insensitive.
	if _, _, err := svc.Login(ctx, "ANN@EXAMPLE.COM", "Secret123"); err != nil {
		t.Errorf("Login() with uppercase email error = %v", err)
	}
}

func TestService_Login_IndistinguishableFailures(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "Ann", "ann@example.com", "Secret123"); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	// Unknown email and wrong password return the identical error value,
	// so a caller cannot probe which addresses have accounts.
	_, _, unknownErr := svc.Login(ctx, "nobody@example.com", "Secret123")
	_, _, wrongErr := svc.Login(ctx, "ann@example.com", "WrongPass1")

	if !errors.Is(unknownErr, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", unknownErr)
	}
	if !errors.Is(wrongErr, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongErr)
	}
	if unknownErr.Error() != wrongErr.Error() {
		t.Errorf("failure messages differ: %q vs %q", unknownErr, wrongErr)
	}
}

func TestService_ChangePassword(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	token, err := svc.ChangePassword(ctx, user, "Secret123", "NewSecret456")
	if err != nil {
		t.Fatalf("ChangePassword() error = %v", err)
	}
	if token == "" {
		t.Error("ChangePassword() returned empty token")
	}

	// Old password no longer works, new one does.
	if _, _, err := svc.Login(ctx, "ann@example.com", "Secret123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("login with old password error = %v, want ErrInvalidCredentials", err)
	}
	if _, _, err := svc.Login(ctx, "ann@example.com", "NewSecret456"); err != nil {
		t.Errorf("login with new password error = %v", err)
	}

	stored, err := st.GetUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if stored.PasswordHash == user.PasswordHash {
		t.Error("stored hash did not change")
	}
}

func TestService_ChangePassword_WrongCurrent(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err = svc.ChangePassword(ctx, user, "WrongPass1", "NewSecret456")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("ChangePassword() error = %v, want ErrInvalidCredentials", err)
	}
}

func TestService_ChangePassword_WeakNew(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "Ann", "ann@example.com", "Secret123")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	_, err = svc.ChangePassword(ctx, user, "Secret123", "weak")
	if !IsValidationError(err) {
		t.Errorf("ChangePassword() error = %v, want ValidationError", err)
	}

	// The old password must still work after a rejected change.
	if _, _, err := svc.Login(ctx, "ann@example.com", "Secret123"); err != nil {
		t.Errorf("login after rejected change error = %v", err)
	}
}
