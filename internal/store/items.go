package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/borrowez/borrowez/internal/id"
	"github.com/borrowez/borrowez/internal/model"
)

const itemColumns = `id, owner_id, owner_name, name, category, rent_per_hour, location_name,
	phone, status, image_ref, maps_link, created_at, updated_at`

// CreateItem inserts a new item. ID and timestamps are assigned here when
// the caller leaves them unset.
func CreateItem(ctx context.Context, db *sql.DB, item *model.Item) (*model.Item, error) {
	if item.ID == "" {
		newID, err := id.Generate(id.PrefixItem)
		if err != nil {
			return nil, fmt.Errorf("generating item id: %w", err)
		}
		item.ID = newID
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	item.UpdatedAt = item.CreatedAt

	_, err := db.ExecContext(ctx,
		`INSERT INTO items (`+itemColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, item.OwnerID, item.OwnerName, item.Name, item.Category, item.RentPerHour,
		item.LocationName, item.Phone, item.Status, item.ImageRef, item.MapsLink,
		formatTime(item.CreatedAt), formatTime(item.UpdatedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("creating item: %w", err)
	}

	return GetItem(ctx, db, item.ID)
}

// GetItem returns an item by ID, or nil if it does not exist.
func GetItem(ctx context.Context, db *sql.DB, itemID string) (*model.Item, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE id = ?`, itemID,
	)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting item: %w", err)
	}
	return item, nil
}

// ListItems returns every item, newest first.
func ListItems(ctx context.Context, db *sql.DB) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items ORDER BY created_at DESC, rowid DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// ListItemsByOwner returns the items listed by one owner, newest first.
func ListItemsByOwner(ctx context.Context, db *sql.DB, ownerID string) ([]model.Item, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+itemColumns+` FROM items WHERE owner_id = ?
		 ORDER BY created_at DESC, rowid DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing items by owner: %w", err)
	}
	defer rows.Close()

	return scanItems(rows)
}

// UpdateItem overwrites an item's mutable fields. Owner and creation time
// never change.
func UpdateItem(ctx context.Context, db *sql.DB, item *model.Item) error {
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = time.Now()
	}
	_, err := db.ExecContext(ctx,
		`UPDATE items SET name = ?, category = ?, rent_per_hour = ?, location_name = ?,
		        phone = ?, status = ?, image_ref = ?, maps_link = ?, updated_at = ?
		 WHERE id = ?`,
		item.Name, item.Category, item.RentPerHour, item.LocationName,
		item.Phone, item.Status, item.ImageRef, item.MapsLink, formatTime(item.UpdatedAt),
		item.ID,
	)
	if err != nil {
		return fmt.Errorf("updating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item. Borrow records that reference it are kept.
func DeleteItem(ctx context.Context, db *sql.DB, itemID string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM items WHERE id = ?`, itemID)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*model.Item, error) {
	var item model.Item
	var createdAt, updatedAt string
	err := row.Scan(&item.ID, &item.OwnerID, &item.OwnerName, &item.Name, &item.Category,
		&item.RentPerHour, &item.LocationName, &item.Phone, &item.Status, &item.ImageRef,
		&item.MapsLink, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if item.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if item.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &item, nil
}

func scanItems(rows *sql.Rows) ([]model.Item, error) {
	items := []model.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}
