// ABOUTME: Item store methods for the SQLite implementation
// ABOUTME: Supports filtered, sorted, paginated listing and status transitions

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultItemLimit = 10
	maxItemLimit     = 100
)

// CreateItem creates a new item listing.
func (s *SQLiteStore) CreateItem(ctx context.Context, item *Item) error {
	query := `
		INSERT INTO items (id, title, description, price, category_id, condition, status,
			images_json, seller_id, buyer_id, reserved_until, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	imagesJSON, err := json.Marshal(item.Images)
	if err != nil {
		return fmt.Errorf("encoding images: %w", err)
	}

	var buyerID sql.NullString
	if item.BuyerID != nil {
		buyerID = sql.NullString{String: *item.BuyerID, Valid: true}
	}
	var reservedUntil sql.NullString
	if item.ReservedUntil != nil {
		reservedUntil = sql.NullString{String: item.ReservedUntil.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err = s.db.ExecContext(ctx, query,
		item.ID,
		item.Title,
		item.Description,
		item.Price,
		item.CategoryID,
		string(item.Condition),
		string(item.Status),
		string(imagesJSON),
		item.SellerID,
		buyerID,
		reservedUntil,
		item.CreatedAt.UTC().Format(time.RFC3339),
		item.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting item: %w", err)
	}

	s.logger.Info("created item", "id", item.ID, "title", item.Title, "seller_id", item.SellerID)
	return nil
}

// GetItem retrieves an item by ID.
func (s *SQLiteStore) GetItem(ctx context.Context, id string) (*Item, error) {
	query := `
		SELECT id, title, description, price, category_id, condition, status,
			images_json, seller_id, buyer_id, reserved_until, created_at, updated_at
		FROM items
		WHERE id = ?
	`

	row := s.db.QueryRowContext(ctx, query, id)

	item, err := scanItem(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return item, err
}

// scanItem scans an item from a row scan function
func scanItem(scan func(dest ...any) error) (*Item, error) {
	var item Item
	var condition, status, imagesJSON string
	var buyerID, reservedUntilStr sql.NullString
	var createdAtStr, updatedAtStr string

	err := scan(
		&item.ID,
		&item.Title,
		&item.Description,
		&item.Price,
		&item.CategoryID,
		&condition,
		&status,
		&imagesJSON,
		&item.SellerID,
		&buyerID,
		&reservedUntilStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return nil, err
	}

	item.Condition = ItemCondition(condition)
	item.Status = ItemStatus(status)

	if err := json.Unmarshal([]byte(imagesJSON), &item.Images); err != nil {
		return nil, fmt.Errorf("decoding images: %w", err)
	}
	if buyerID.Valid {
		item.BuyerID = &buyerID.String
	}
	if reservedUntilStr.Valid {
		reservedUntil, err := time.Parse(time.RFC3339, reservedUntilStr.String)
		if err != nil {
			return nil, fmt.Errorf("parsing reserved_until: %w", err)
		}
		item.ReservedUntil = &reservedUntil
	}

	item.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	item.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &item, nil
}

// itemOrderClause maps a filter sort key to an ORDER BY clause.
// Unknown keys fall back to newest first.
func itemOrderClause(sort string) string {
	switch sort {
	case "price":
		return "ORDER BY price ASC"
	case "-price":
		return "ORDER BY price DESC"
	case "created_at":
		return "ORDER BY created_at ASC"
	default:
		return "ORDER BY created_at DESC"
	}
}

// ListItems returns items matching the filter, sorted and paginated.
func (s *SQLiteStore) ListItems(ctx context.Context, filter ItemFilter) ([]*Item, error) {
	var conditions []string
	var args []any

	if filter.Status != nil {
		conditions = append(conditions, "status = ?")
		args = append(args, string(*filter.Status))
	}
	if filter.CategoryID != nil {
		conditions = append(conditions, "category_id = ?")
		args = append(args, *filter.CategoryID)
	}
	if filter.SellerID != nil {
		conditions = append(conditions, "seller_id = ?")
		args = append(args, *filter.SellerID)
	}
	if filter.MinPrice != nil {
		conditions = append(conditions, "price >= ?")
		args = append(args, *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		conditions = append(conditions, "price <= ?")
		args = append(args, *filter.MaxPrice)
	}

	where := ""
	if len(conditions) > 0 {
		where = "WHERE " + strings.Join(conditions, " AND ")
	}

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

	query := fmt.Sprintf(`
		SELECT id, title, description, price, category_id, condition, status,
			images_json, seller_id, buyer_id, reserved_until, created_at, updated_at
		FROM items
		%s
		%s
		LIMIT ? OFFSET ?
	`, where, itemOrderClause(filter.Sort))

	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}

	return items, nil
}

// UpdateItem writes all mutable item fields as a single-row update.
func (s *SQLiteStore) UpdateItem(ctx context.Context, item *Item) error {
	query := `
		UPDATE items
		SET title = ?, description = ?, price = ?, category_id = ?, condition = ?,
			status = ?, images_json = ?, buyer_id = ?, reserved_until = ?, updated_at = ?
		WHERE id = ?
	`

	imagesJSON, err := json.Marshal(item.Images)
	if err != nil {
		return fmt.Errorf("encoding images: %w", err)
	}

	var buyerID sql.NullString
	if item.BuyerID != nil {
		buyerID = sql.NullString{String: *item.BuyerID, Valid: true}
	}
	var reservedUntil sql.NullString
	if item.ReservedUntil != nil {
		reservedUntil = sql.NullString{String: item.ReservedUntil.UTC().Format(time.RFC3339), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		item.Title,
		item.Description,
		item.Price,
		item.CategoryID,
		string(item.Condition),
		string(item.Status),
		string(imagesJSON),
		buyerID,
		reservedUntil,
		time.Now().UTC().Format(time.RFC3339),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
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

// TransitionItem performs a guarded status transition. The status guard in
// the WHERE clause makes concurrent transitions serialize: the loser matches
// zero rows and gets ErrItemConflict instead of silently overwriting.
func (s *SQLiteStore) TransitionItem(ctx context.Context, item *Item, from ItemStatus) error {
	query := `
		UPDATE items
		SET status = ?, buyer_id = ?, reserved_until = ?, updated_at = ?
		WHERE id = ? AND status = ?
	`

	var buyerID sql.NullString
	if item.BuyerID != nil {
		buyerID = sql.NullString{String: *item.BuyerID, Valid: true}
	}
	var reservedUntil sql.NullString
	if item.ReservedUntil != nil {
		reservedUntil = sql.NullString{String: item.ReservedUntil.UTC().Format(time.RFC3339), Valid: true}
	}

	result, err := s.db.ExecContext(ctx, query,
		string(item.Status),
		buyerID,
		reservedUntil,
		time.Now().UTC().Format(time.RFC3339),
		item.ID,
		string(from),
	)
	if err != nil {
		return fmt.Errorf("transitioning item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		if _, err := s.GetItem(ctx, item.ID); errors.Is(err, ErrNotFound) {
			return ErrNotFound
		}
		return ErrItemConflict
	}

	return nil
}

// DeleteItem deletes an item by ID.
func (s *SQLiteStore) DeleteItem(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	s.logger.Info("deleted item", "id", id)
	return nil
}
