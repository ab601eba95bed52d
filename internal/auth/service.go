// ABOUTME: Auth service orchestrating registration, login, and password changes
// ABOUTME: Composes the password hasher, token manager, and user store

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kirppis/kirppis/internal/store"
)

// Display name length cap, matching the user schema.
const maxNameLength = 50

var emailRegex = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

// ValidEmail reports whether the address has a plausible mailbox@domain
// shape after normalization. Applied wherever an email enters the system.
func ValidEmail(email string) bool {
	return emailRegex.MatchString(store.NormalizeEmail(email))
}

// Service implements the authentication operations. All state lives in
// the user store; the service itself is request-scoped and stateless.
type Service struct {
	users  store.UserStore
	tokens *TokenManager
	logger *slog.Logger
}

// NewService creates an auth service backed by the given user store and
// token manager.
func NewService(users store.UserStore, tokens *TokenManager) *Service {
	return &Service{
		users:  users,
		tokens: tokens,
		logger: slog.Default().With("component", "auth"),
	}
}

// validateRegistration checks name and email shape. Password strength is
// validated separately so register and change-password share the policy.
func validateRegistration(name, email string) error {
	var problems []string

	name = strings.TrimSpace(name)
	if name == "" {
		problems = append(problems, "name is required")
	} else if len(name) > maxNameLength {
		problems = append(problems, fmt.Sprintf("name cannot be more than %d characters", maxNameLength))
	}

	if !ValidEmail(email) {
		problems = append(problems, "a valid email is required")
	}

	if len(problems) > 0 {
		return NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

// Register creates a new account with role "user" and issues a token.
// Returns store.ErrDuplicateEmail if the email is taken and a
// ValidationError for malformed input or a weak password.
func (s *Service) Register(ctx context.Context, name, email, password string) (*store.User, string, error) {
	if err := validateRegistration(name, email); err != nil {
		return nil, "", err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return nil, "", err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now().UTC()
	user := &store.User{
		ID:           uuid.New().String(),
		Name:         strings.TrimSpace(name),
		Email:        store.NormalizeEmail(email),
		PasswordHash: hash,
		Role:         store.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user registered", "id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login verifies the credentials and issues a token. An unknown email and
// a wrong password return the same ErrInvalidCredentials; the unknown
// email path still burns a bcrypt comparison.
func (s *Service) Login(ctx context.Context, email, password string) (*store.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			CompareDummy(password)
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	ok, err := CheckPassword(password, user.PasswordHash)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("user logged in", "id", user.ID, "email", user.Email)
	return user, token, nil
}

// Logout acknowledges a logout. Tokens are stateless bearer artifacts
// with no server-side session record, so there is nothing to revoke; the
// client is responsible for discarding the token.
func (s *Service) Logout(ctx context.Context, user *store.User) {
	s.logger.Info("user logged out", "id", user.ID)
}

// ChangePassword verifies the current password, validates the new one
// against the strength policy, persists the new hash, and issues a fresh
// token.
func (s *Service) ChangePassword(ctx context.Context, user *store.User, currentPassword, newPassword string) (string, error) {
	ok, err := CheckPassword(currentPassword, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", ErrInvalidCredentials
	}

	if err := ValidatePasswordStrength(newPassword); err != nil {
		return "", err
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return "", err
	}

	if err := s.users.UpdateUserPassword(ctx, user.ID, hash); err != nil {
		return "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return "", err
	}

	s.logger.Info("user changed password", "id", user.ID)
	return token, nil
}
