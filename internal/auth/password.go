// ABOUTME: Password hashing and strength validation using bcrypt
// ABOUTME: Provides constant-time verification and a dummy hash for timing equalization

package auth

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost matches the work factor used by the rest of the system.
const bcryptCost = 10

// dummyHash is a valid bcrypt hash of a throwaway string. Login compares
// against it when no account matches the email, so the failure path costs
// the same as a real comparison and does not leak account existence.
const dummyHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

// Password strength policy: minimum length plus required character classes.
const minPasswordLength = 8

// HashPassword hashes a plaintext password with a random per-call salt.
// The salt is embedded in the returned hash.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword verifies a plaintext password against a stored hash.
// A mismatch returns false with no error; an error indicates a malformed
// stored hash.
func CheckPassword(plaintext, storedHash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(storedHash), []byte(plaintext))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("checking password: %w", err)
}

// CompareDummy burns a bcrypt comparison against a fixed hash. Called on
// the unknown-email login path to keep its timing close to the real one.
func CompareDummy(plaintext string) {
	_ = bcrypt.CompareHashAndPassword([]byte(dummyHash), []byte(plaintext))
}

// ValidatePasswordStrength checks the password policy: at least 8
// characters with an uppercase letter, a lowercase letter, and a digit.
// All violations are aggregated into a single ValidationError.
func ValidatePasswordStrength(plaintext string) error {
	var problems []string

	if len(plaintext) < minPasswordLength {
		problems = append(problems, fmt.Sprintf("at least %d characters", minPasswordLength))
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range plaintext {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		problems = append(problems, "an uppercase letter")
	}
	if !hasLower {
		problems = append(problems, "a lowercase letter")
	}
	if !hasDigit {
		problems = append(problems, "a digit")
	}

	if len(problems) > 0 {
		return NewValidationError("password must contain " + strings.Join(problems, ", "))
	}
	return nil
}
