package blob

import (
	"context"
	"database/sql"
	"time"

	"github.com/borrowez/borrowez/internal/store"
)

// SQLiteStore keeps blobs in the application database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore returns a store backed by the blobs table.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Put inserts data under a fresh reference.
func (s *SQLiteStore) Put(ctx context.Context, originalName string, data []byte) (string, error) {
	ref, err := newRef(originalName, time.Now())
	if err != nil {
		return "", err
	}
	if err := store.PutBlob(ctx, s.db, ref, data); err != nil {
		return "", err
	}
	return ref, nil
}

// Open loads the bytes for ref.
func (s *SQLiteStore) Open(ctx context.Context, ref string) ([]byte, error) {
	if err := checkRef(ref); err != nil {
		return nil, err
	}
	data, err := store.GetBlob(ctx, s.db, ref)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, ErrNotFound
	}
	return data, nil
}

// Delete removes the row for ref.
func (s *SQLiteStore) Delete(ctx context.Context, ref string) error {
	if err := checkRef(ref); err != nil {
		return err
	}
	return store.DeleteBlob(ctx, s.db, ref)
}
