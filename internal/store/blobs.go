package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// PutBlob stores image bytes under ref, replacing any previous content.
func PutBlob(ctx context.Context, db *sql.DB, ref string, data []byte) error {
	_, err := db.ExecContext(ctx,
		`INSERT OR REPLACE INTO blobs (ref, data, size, created_at) VALUES (?, ?, ?, ?)`,
		ref, data, len(data), formatTime(time.Now()),
	)
	if err != nil {
		return fmt.Errorf("storing blob: %w", err)
	}
	return nil
}

// GetBlob returns the bytes stored under ref, or nil if there are none.
func GetBlob(ctx context.Context, db *sql.DB, ref string) ([]byte, error) {
	var data []byte
	err := db.QueryRowContext(ctx,
		`SELECT data FROM blobs WHERE ref = ?`, ref,
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting blob: %w", err)
	}
	return data, nil
}

// DeleteBlob removes the bytes stored under ref. Missing refs are not an error.
func DeleteBlob(ctx context.Context, db *sql.DB, ref string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM blobs WHERE ref = ?`, ref)
	if err != nil {
		return fmt.Errorf("deleting blob: %w", err)
	}
	return nil
}
