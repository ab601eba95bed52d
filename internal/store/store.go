// ABOUTME: Store interfaces and data types for kirppis persistence
// ABOUTME: Defines User, Category, Item structs and the store interfaces for database operations

package store

import (
	"context"
	"errors"
	"strings"
	"time"
)

// ErrNotFound is returned when a requested entity does not exist
var ErrNotFound = errors.New("not found")

// ErrDuplicateEmail is returned when creating a user with an email that is already registered
var ErrDuplicateEmail = errors.New("email already registered")

// ErrDuplicateCategory is returned when creating a category whose name already exists
var ErrDuplicateCategory = errors.New("category already exists")

// ErrItemConflict is returned when an item status transition loses a race,
// meaning the stored status no longer matches the expected starting state
var ErrItemConflict = errors.New("item status changed")

// UserRole represents the authorization tier of a user
type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// ValidRole reports whether r is a recognized role name.
func ValidRole(r UserRole) bool {
	return r == RoleUser || r == RoleAdmin
}

// User represents a registered account. PasswordHash holds the bcrypt
// hash of the password and must never reach a client serialization.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         UserRole
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NormalizeEmail canonicalizes an email address for storage and lookup.
// Emails are compared case-insensitively.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Category represents an item category. ParentID is nil for top-level
// categories.
type Category struct {
	ID          string
	Name        string
	Description string
	ParentID    *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ItemStatus represents the sale state of an item
type ItemStatus string

const (
	ItemStatusAvailable ItemStatus = "available"
	ItemStatusReserved  ItemStatus = "reserved"
	ItemStatusSold      ItemStatus = "sold"
)

// ItemCondition describes the physical condition of an item
type ItemCondition string

const (
	ItemConditionNew     ItemCondition = "new"
	ItemConditionLikeNew ItemCondition = "like_new"
	ItemConditionGood    ItemCondition = "good"
	ItemConditionFair    ItemCondition = "fair"
	ItemConditionPoor    ItemCondition = "poor"
)

// ValidCondition reports whether c is a recognized item condition.
func ValidCondition(c ItemCondition) bool {
	switch c {
	case ItemConditionNew, ItemConditionLikeNew, ItemConditionGood, ItemConditionFair, ItemConditionPoor:
		return true
	}
	return false
}

// Item represents a marketplace listing. SellerID is the owning user;
// BuyerID is set while reserved and after purchase.
type Item struct {
	ID            string
	Title         string
	Description   string
	Price         float64
	CategoryID    string
	Condition     ItemCondition
	Status        ItemStatus
	Images        []string
	SellerID      string
	BuyerID       *string
	ReservedUntil *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// ItemFilter holds optional criteria for listing items
type ItemFilter struct {
	Status     *ItemStatus
	CategoryID *string
	SellerID   *string
	MinPrice   *float64
	MaxPrice   *float64

	// Sort is one of "price", "-price", "created_at", "-created_at".
	// Empty defaults to newest first.
	Sort string

	// Page is 1-based; Limit defaults to 10 and caps at 100.
	Page  int
	Limit int
}

// UserStore defines operations for user persistence
type UserStore interface {
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	UpdateUser(ctx context.Context, user *User) error
	UpdateUserPassword(ctx context.Context, id, passwordHash string) error
	UpdateUserRole(ctx context.Context, id string, role UserRole) error
	DeleteUser(ctx context.Context, id string) error
	CountUsers(ctx context.Context) (int, error)
}

// CategoryStore defines operations for category persistence
type CategoryStore interface {
	CreateCategory(ctx context.Context, category *Category) error
	GetCategory(ctx context.Context, id string) (*Category, error)
	GetCategoryByName(ctx context.Context, name string) (*Category, error)
	ListCategories(ctx context.Context) ([]*Category, error)
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id string) error
}

// ItemStore defines operations for item persistence
type ItemStore interface {
	CreateItem(ctx context.Context, item *Item) error
	GetItem(ctx context.Context, id string) (*Item, error)
	ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error)
	UpdateItem(ctx context.Context, item *Item) error

	// TransitionItem writes the item only if its stored status still
	// equals from, returning ErrItemConflict when a concurrent writer
	// moved it first.
	TransitionItem(ctx context.Context, item *Item, from ItemStatus) error
	DeleteItem(ctx context.Context, id string) error
}

// Store combines all persistence interfaces
type Store interface {
	UserStore
	CategoryStore
	ItemStore

	// Close releases any resources held by the store
	Close() error
}
