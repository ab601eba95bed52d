// ABOUTME: Unit tests for JWT issuing and verification
// ABOUTME: Covers claim round-trips, expiry, tampering, and wrong-key cases

package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kirppis/kirppis/internal/store"
)

const testSecret = "token-test-secret-token-test-secret"

func testTokenUser(role store.UserRole) *store.User {
	return &store.User{
		ID:    "user-123",
		Name:  "Ann Example",
		Email: "ann@example.com",
		Role:  role,
	}
}

func TestTokenManager_IssueAndVerify(t *testing.T) {
	m := NewTokenManager([]byte(testSecret), time.Hour)

	token, err := m.Issue(testTokenUser(store.RoleUser))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	if token == "" {
		t.Fatal("Issue() returned empty token")
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.UserID != "user-123" {
		t.Errorf("UserID = %q, want %q", claims.UserID, "user-123")
	}
	if claims.Role != store.RoleUser {
		t.Errorf("Role = %q, want %q", claims.Role, store.RoleUser)
	}
}

func TestTokenManager_AdminRoleClaim(t *testing.T) {
	m := NewTokenManager([]byte(testSecret), time.Hour)

	token, err := m.Issue(testTokenUser(store.RoleAdmin))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if claims.Role != store.RoleAdmin {
		t.Errorf("Role = %q, want %q", claims.Role, store.RoleAdmin)
	}
}

func TestTokenManager_Expired(t *testing.T) {
	m := NewTokenManager([]byte(testSecret), time.Hour)

	token, err := m.IssueWithTTL(testTokenUser(store.RoleUser), -time.Minute)
	if err != nil {
		t.Fatalf("IssueWithTTL() error = %v", err)
	}

	_, err = m.Verify(token)
	if !errors.Is(err, ErrExpiredToken) {
		t.Errorf("Verify() error = %v, want ErrExpiredToken", err)
	}
}

func TestTokenManager_Tampered(t *testing.T) {
	m := NewTokenManager([]byte(testSecret), time.Hour)

	token, err := m.Issue(testTokenUser(store.RoleUser))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	// Flip a character in the payload segment.
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		t.Fatalf("token has %d segments, want 3", len(parts))
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, err = m.Verify(tampered)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenManager_WrongKey(t *testing.T) {
	issuer := NewTokenManager([]byte(testSecret), time.Hour)
	verifier := NewTokenManager([]byte("a-completely-different-secret-key"), time.Hour)

	token, err := issuer.Issue(testTokenUser(store.RoleUser))
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	_, err = verifier.Verify(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
	}
}

func TestTokenManager_Garbage(t *testing.T) {
	m := NewTokenManager([]byte(testSecret), time.Hour)

	for _, tok := range []string{"", "not.a.jwt", "garbage"} {
		if _, err := m.Verify(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Verify(%q) error = %v, want ErrInvalidToken", tok, err)
		}
	}
}

func TestTokenManager_TTL(t *testing.T) {
	m := NewTokenManager([]byte(testSecret), 24*time.Hour)
	if got := m.TTL(); got != 24*time.Hour {
		t.Errorf("TTL() = %v, want %v", got, 24*time.Hour)
	}
}
