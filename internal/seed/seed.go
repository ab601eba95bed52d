// ABOUTME: Idempotent bootstrap of the admin account and default categories
// ABOUTME: Safe to run on every startup; existing records are left untouched

package seed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirppis/kirppis/internal/auth"
	"github.com/kirppis/kirppis/internal/config"
	"github.com/kirppis/kirppis/internal/store"
)

// Result reports what the bootstrap actually created.
type Result struct {
	AdminCreated      bool
	CategoriesCreated int
}

// Run ensures the configured admin account and default categories exist.
// Records that already exist are left as they are, so repeated runs are
// harmless.
func Run(ctx context.Context, st store.Store, cfg *config.Config) (*Result, error) {
	logger := slog.Default().With("component", "seed")
	result := &Result{}

	created, err := ensureAdmin(ctx, st, cfg)
	if err != nil {
		return nil, err
	}
	result.AdminCreated = created
	if created {
		logger.Info("admin account created", "email", store.NormalizeEmail(cfg.Seed.AdminEmail))
	}

	for _, name := range cfg.Seed.Categories {
		created, err := ensureCategory(ctx, st, name)
		if err != nil {
			return nil, err
		}
		if created {
			result.CategoriesCreated++
		}
	}
	if result.CategoriesCreated > 0 {
		logger.Info("default categories created", "count", result.CategoriesCreated)
	}

	return result, nil
}

func ensureAdmin(ctx context.Context, st store.Store, cfg *config.Config) (bool, error) {
	email := store.NormalizeEmail(cfg.Seed.AdminEmail)

	_, err := st.GetUserByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("checking admin account: %w", err)
	}

	hash, err := auth.HashPassword(cfg.Seed.AdminPassword)
	if err != nil {
		return false, err
	}

	now := time.Now().UTC()
	admin := &store.User{
		ID:           uuid.New().String(),
		Name:         "Admin",
		Email:        email,
		PasswordHash: hash,
		Role:         store.RoleAdmin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := st.CreateUser(ctx, admin); err != nil {
		// A concurrent bootstrap may have won the race.
		if errors.Is(err, store.ErrDuplicateEmail) {
			return false, nil
		}
		return false, fmt.Errorf("creating admin account: %w", err)
	}
	return true, nil
}

func ensureCategory(ctx context.Context, st store.Store, name string) (bool, error) {
	_, err := st.GetCategoryByName(ctx, name)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return false, fmt.Errorf("checking category %q: %w", name, err)
	}

	now := time.Now().UTC()
	category := &store.Category{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := st.CreateCategory(ctx, category); err != nil {
		if errors.Is(err, store.ErrDuplicateCategory) {
			return false, nil
		}
		return false, fmt.Errorf("creating category %q: %w", name, err)
	}
	return true, nil
}
