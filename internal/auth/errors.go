// ABOUTME: Error taxonomy for the auth service
// ABOUTME: Sentinel errors and the aggregated ValidationError type

package auth

import "errors"

// ErrInvalidCredentials is returned for a wrong email/password pair at
// login and for a wrong current password at change-password. The same
// error covers unknown emails so callers cannot enumerate accounts.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidToken is returned for malformed, tampered, or wrongly signed tokens
var ErrInvalidToken = errors.New("invalid token")

// ErrExpiredToken is returned for tokens past their expiry
var ErrExpiredToken = errors.New("token expired")

// ErrMissingClaim is returned when a token lacks a required claim
var ErrMissingClaim = errors.New("missing required claim")

// ValidationError reports client-fixable input problems. All problems
// found in one request are aggregated into a single message.
type ValidationError struct {
	Message string
}

// NewValidationError creates a ValidationError with the given message.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

func (e *ValidationError) Error() string {
	return e.Message
}

// IsValidationError reports whether err is (or wraps) a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
