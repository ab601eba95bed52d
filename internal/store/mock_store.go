// ABOUTME: Mock Store implementation for testing
// ABOUTME: Allows tests to run without SQLite

package store

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory Store implementation for testing.
type MockStore struct {
	mu         sync.RWMutex
	users      map[string]*User     // keyed by user ID
	emailIndex map[string]string    // keyed by normalized email -> user ID
	categories map[string]*Category // keyed by category ID
	items      map[string]*Item     // keyed by item ID
}

// Ensure MockStore implements Store.
var _ Store = (*MockStore)(nil)

// NewMockStore creates a new MockStore.
func NewMockStore() *MockStore {
	return &MockStore{
		users:      make(map[string]*User),
		emailIndex: make(map[string]string),
		categories: make(map[string]*Category),
		items:      make(map[string]*Item),
	}
}

// CreateUser stores a new user.
func (m *MockStore) CreateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	email := NormalizeEmail(user.Email)
	if _, exists := m.emailIndex[email]; exists {
		return ErrDuplicateEmail
	}

	// Make a copy to avoid external modification
	u := *user
	u.Email = email
	m.users[u.ID] = &u
	m.emailIndex[email] = u.ID

	return nil
}

// GetUser retrieves a user by ID.
func (m *MockStore) GetUser(ctx context.Context, id string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	result := *u
	return &result, nil
}

// GetUserByEmail retrieves a user by normalized email.
func (m *MockStore) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	id, ok := m.emailIndex[NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}

	u, ok := m.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	result := *u
	return &result, nil
}

// ListUsers returns all users ordered by creation time.
func (m *MockStore) ListUsers(ctx context.Context) ([]*User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	users := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		result := *u
		users = append(users, &result)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].CreatedAt.Before(users[j].CreatedAt)
	})

	return users, nil
}

// UpdateUser updates a user's name and email.
func (m *MockStore) UpdateUser(ctx context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.users[user.ID]
	if !ok {
		return ErrNotFound
	}

	email := NormalizeEmail(user.Email)
	if id, taken := m.emailIndex[email]; taken && id != user.ID {
		return ErrDuplicateEmail
	}

	delete(m.emailIndex, existing.Email)
	existing.Name = user.Name
	existing.Email = email
	existing.UpdatedAt = time.Now().UTC()
	m.emailIndex[email] = user.ID

	return nil
}

// UpdateUserPassword updates a user's password hash.
func (m *MockStore) UpdateUserPassword(ctx context.Context, id, passwordHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}

	u.PasswordHash = passwordHash
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// UpdateUserRole updates a user's role.
func (m *MockStore) UpdateUserRole(ctx context.Context, id string, role UserRole) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}

	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteUser deletes a user by ID.
func (m *MockStore) DeleteUser(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}

	delete(m.emailIndex, u.Email)
	delete(m.users, id)
	return nil
}

// CountUsers returns the number of stored users.
func (m *MockStore) CountUsers(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.users), nil
}

// CreateCategory stores a new category.
func (m *MockStore) CreateCategory(ctx context.Context, category *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.categories {
		if c.Name == category.Name {
			return ErrDuplicateCategory
		}
	}

	c := *category
	m.categories[c.ID] = &c
	return nil
}

// GetCategory retrieves a category by ID.
func (m *MockStore) GetCategory(ctx context.Context, id string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.categories[id]
	if !ok {
		return nil, ErrNotFound
	}

	result := *c
	return &result, nil
}

// GetCategoryByName retrieves a category by name.
func (m *MockStore) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.categories {
		if c.Name == name {
			result := *c
			return &result, nil
		}
	}

	return nil, ErrNotFound
}

// ListCategories returns all categories ordered by name.
func (m *MockStore) ListCategories(ctx context.Context) ([]*Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	categories := make([]*Category, 0, len(m.categories))
	for _, c := range m.categories {
		result := *c
		categories = append(categories, &result)
	}

	sort.Slice(categories, func(i, j int) bool {
		return categories[i].Name < categories[j].Name
	})

	return categories, nil
}

// UpdateCategory updates an existing category.
func (m *MockStore) UpdateCategory(ctx context.Context, category *Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.categories[category.ID]
	if !ok {
		return ErrNotFound
	}

	for _, c := range m.categories {
		if c.Name == category.Name && c.ID != category.ID {
			return ErrDuplicateCategory
		}
	}

	existing.Name = category.Name
	existing.Description = category.Description
	existing.ParentID = category.ParentID
	existing.UpdatedAt = time.Now().UTC()
	return nil
}

// DeleteCategory deletes a category by ID.
func (m *MockStore) DeleteCategory(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.categories[id]; !ok {
		return ErrNotFound
	}

	delete(m.categories, id)
	return nil
}

// CreateItem stores a new item.
func (m *MockStore) CreateItem(ctx context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := *item
	m.items[i.ID] = &i
	return nil
}

// GetItem retrieves an item by ID.
func (m *MockStore) GetItem(ctx context.Context, id string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}

	result := *i
	return &result, nil
}

// matchesFilter reports whether an item passes the filter criteria.
func matchesFilter(i *Item, filter ItemFilter) bool {
	if filter.Status != nil && i.Status != *filter.Status {
		return false
	}
	if filter.CategoryID != nil && i.CategoryID != *filter.CategoryID {
		return false
	}
	if filter.SellerID != nil && i.SellerID != *filter.SellerID {
		return false
	}
	if filter.MinPrice != nil && i.Price < *filter.MinPrice {
		return false
	}
	if filter.MaxPrice != nil && i.Price > *filter.MaxPrice {
		return false
	}
	return true
}

// ListItems returns items matching the filter, sorted and paginated.
func (m *MockStore) ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var items []*Item
	for _, i := range m.items {
		if matchesFilter(i, filter) {
			result := *i
			items = append(items, &result)
		}
	}

	sort.Slice(items, func(a, b int) bool {
		switch filter.Sort {
		case "price":
			return items[a].Price < items[b].Price
		case "-price":
			return items[a].Price > items[b].Price
		case "created_at":
			return items[a].CreatedAt.Before(items[b].CreatedAt)
		default:
			return items[a].CreatedAt.After(items[b].CreatedAt)
		}
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = defaultItemLimit
	}
	if limit > maxItemLimit {
		limit = maxItemLimit
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * limit

	if offset >= len(items) {
		return nil, nil
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}

	return items[offset:end], nil
}

// UpdateItem updates an existing item.
func (m *MockStore) UpdateItem(ctx context.Context, item *Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; !ok {
		return ErrNotFound
	}

	i := *item
	i.UpdatedAt = time.Now().UTC()
	m.items[i.ID] = &i
	return nil
}

// TransitionItem updates the status fields only if the stored status
// still matches from.
func (m *MockStore) TransitionItem(ctx context.Context, item *Item, from ItemStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.items[item.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Status != from {
		return ErrItemConflict
	}

	i := *item
	i.UpdatedAt = time.Now().UTC()
	m.items[i.ID] = &i
	return nil
}

// DeleteItem deletes an item by ID.
func (m *MockStore) DeleteItem(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}

	delete(m.items, id)
	return nil
}

// Close is a no-op for MockStore.
func (m *MockStore) Close() error {
	return nil
}
