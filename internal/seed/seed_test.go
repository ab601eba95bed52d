// ABOUTME: Tests for bootstrap seeding
// ABOUTME: Verifies idempotency and that existing records survive reruns

package seed

import (
	"context"
	"testing"

	"github.com/kirppis/kirppis/internal/auth"
	"github.com/kirppis/kirppis/internal/config"
	"github.com/kirppis/kirppis/internal/store"
)

func seedConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Seed.AdminEmail = "admin@example.com"
	cfg.Seed.AdminPassword = "Admin123!"
	cfg.Seed.Categories = []string{"Books", "Clothing", "Furniture"}
	return cfg
}

func TestRun_CreatesEverything(t *testing.T) {
	st := store.NewMockStore()
	ctx := context.Background()

	result, err := Run(ctx, st, seedConfig())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !result.AdminCreated {
		t.Error("AdminCreated = false")
	}
	if result.CategoriesCreated != 3 {
		t.Errorf("CategoriesCreated = %d, want 3", result.CategoriesCreated)
	}

	admin, err := st.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	if admin.Role != store.RoleAdmin {
		t.Errorf("Role = %q, want admin", admin.Role)
	}
	ok, err := auth.CheckPassword("Admin123!", admin.PasswordHash)
	if err != nil || !ok {
		t.Errorf("admin password does not verify: ok=%v err=%v", ok, err)
	}

	categories, err := st.ListCategories(ctx)
	if err != nil {
		t.Fatalf("ListCategories() error = %v", err)
	}
	if len(categories) != 3 {
		t.Errorf("len(categories) = %d, want 3", len(categories))
	}
}

func TestRun_Idempotent(t *testing.T) {
	st := store.NewMockStore()
	ctx := context.Background()
	cfg := seedConfig()

	if _, err := Run(ctx, st, cfg); err != nil {
		t.Fatalf("first Run() error = %v", err)
	}

	// Change the admin's password via the store, then re-run; the seed
	// must not touch the existing account.
	admin, err := st.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	hash, err := auth.HashPassword("Changed456!")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if err := st.UpdateUserPassword(ctx, admin.ID, hash); err != nil {
		t.Fatalf("UpdateUserPassword() error = %v", err)
	}

	result, err := Run(ctx, st, cfg)
	if err != nil {
		t.Fatalf("second Run() error = %v", err)
	}
	if result.AdminCreated {
		t.Error("AdminCreated = true on rerun")
	}
	if result.CategoriesCreated != 0 {
		t.Errorf("CategoriesCreated = %d on rerun, want 0", result.CategoriesCreated)
	}

	admin, err = st.GetUserByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() error = %v", err)
	}
	ok, err := auth.CheckPassword("Changed456!", admin.PasswordHash)
	if err != nil || !ok {
		t.Error("rerun overwrote the changed admin password")
	}
}

func TestRun_PartialCategories(t *testing.T) {
	st := store.NewMockStore()
	ctx := context.Background()
	cfg := seedConfig()

	if _, err := Run(ctx, st, cfg); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Add one more configured category; only the new one is created.
	cfg.Seed.Categories = append(cfg.Seed.Categories, "Toys")
	result, err := Run(ctx, st, cfg)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.CategoriesCreated != 1 {
		t.Errorf("CategoriesCreated = %d, want 1", result.CategoriesCreated)
	}
}
