// ABOUTME: JWT token issuing and verification for authenticating API requests
// ABOUTME: Uses HS256 signing with configurable secret and TTL

package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kirppis/kirppis/internal/store"
)

// Claims are the verified contents of a token. Role is a snapshot taken
// at issuance; callers must re-resolve the subject against the user store
// rather than trust it for authorization decisions.
type Claims struct {
	UserID string
	Role   store.UserRole
}

// TokenManager issues and verifies HS256 signed JWTs
type TokenManager struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenManager creates a token manager with the given signing secret
// and token time-to-live.
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: secret, ttl: ttl}
}

// TTL returns the configured token time-to-live.
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue creates a new signed token for the given user with the configured TTL.
func (m *TokenManager) Issue(user *store.User) (string, error) {
	return m.IssueWithTTL(user, m.ttl)
}

// IssueWithTTL creates a new signed token with an explicit expiry window.
func (m *TokenManager) IssueWithTTL(user *store.User, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Verify validates the token signature and expiry and extracts the claims.
// Returns ErrExpiredToken for expired tokens and ErrInvalidToken for
// anything malformed, tampered, or signed with the wrong secret.
func (m *TokenManager) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method is HS256
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})

	if err != nil {
		// Check if it's specifically an expiration error
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}

	sub, ok := mapClaims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("%w: sub", ErrMissingClaim)
	}

	role, ok := mapClaims["role"].(string)
	if !ok || role == "" {
		return nil, fmt.Errorf("%w: role", ErrMissingClaim)
	}

	return &Claims{
		UserID: sub,
		Role:   store.UserRole(role),
	}, nil
}
