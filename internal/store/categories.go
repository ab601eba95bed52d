// ABOUTME: Category store methods for the SQLite implementation
// ABOUTME: Categories have unique names and optional parent categories

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// CreateCategory creates a new category.
// Returns ErrDuplicateCategory if the name already exists.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *Category) error {
	query := `
		INSERT INTO categories (id, name, description, parent_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	var parentID sql.NullString
	if category.ParentID != nil {
		parentID = sql.NullString{String: *category.ParentID, Valid: true}
	}

	_, err := s.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.Description,
		parentID,
		category.CreatedAt.UTC().Format(time.RFC3339),
		category.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("inserting category: %w", err)
	}

	s.logger.Info("created category", "id", category.ID, "name", category.Name)
	return nil
}

// GetCategory retrieves a category by ID.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*Category, error) {
	query := `
		SELECT id, name, description, parent_id, created_at, updated_at
		FROM categories
		WHERE id = ?
	`

	return s.scanCategory(s.db.QueryRowContext(ctx, query, id))
}

// GetCategoryByName retrieves a category by its unique name.
func (s *SQLiteStore) GetCategoryByName(ctx context.Context, name string) (*Category, error) {
	query := `
		SELECT id, name, description, parent_id, created_at, updated_at
		FROM categories
		WHERE name = ?
	`

	return s.scanCategory(s.db.QueryRowContext(ctx, query, name))
}

// scanCategory scans a single category row
func (s *SQLiteStore) scanCategory(row *sql.Row) (*Category, error) {
	var category Category
	var parentID sql.NullString
	var createdAtStr, updatedAtStr string

	err := row.Scan(
		&category.ID,
		&category.Name,
		&category.Description,
		&parentID,
		&createdAtStr,
		&updatedAtStr,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying category: %w", err)
	}

	if parentID.Valid {
		category.ParentID = &parentID.String
	}

	category.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	category.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &category, nil
}

// ListCategories returns all categories ordered by name.
func (s *SQLiteStore) ListCategories(ctx context.Context) ([]*Category, error) {
	query := `
		SELECT id, name, description, parent_id, created_at, updated_at
		FROM categories
		ORDER BY name ASC
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []*Category
	for rows.Next() {
		var category Category
		var parentID sql.NullString
		var createdAtStr, updatedAtStr string

		if err := rows.Scan(&category.ID, &category.Name, &category.Description, &parentID, &createdAtStr, &updatedAtStr); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}

		if parentID.Valid {
			category.ParentID = &parentID.String
		}
		category.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		category.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
		if err != nil {
			return nil, fmt.Errorf("parsing updated_at: %w", err)
		}
		categories = append(categories, &category)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating categories: %w", err)
	}

	return categories, nil
}

// UpdateCategory updates a category's name, description, and parent.
func (s *SQLiteStore) UpdateCategory(ctx context.Context, category *Category) error {
	query := `UPDATE categories SET name = ?, description = ?, parent_id = ?, updated_at = ? WHERE id = ?`

	var parentID sql.NullString
	if category.ParentID != nil {
		parentID = sql.NullString{String: *category.ParentID, Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		category.Name,
		category.Description,
		parentID,
		time.Now().UTC().Format(time.RFC3339),
		category.ID,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("updating category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// DeleteCategory deletes a category by ID.
func (s *SQLiteStore) DeleteCategory(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM categories WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("deleted category", "id", id)
	return nil
}
