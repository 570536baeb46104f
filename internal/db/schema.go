package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
//
// borrow_records.item_id deliberately has no foreign key: deleting an item
// leaves its borrow records readable.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            TEXT PRIMARY KEY,
    name          TEXT NOT NULL,
    email         TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at    TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(email);

CREATE TABLE IF NOT EXISTS items (
    id            TEXT PRIMARY KEY,
    owner_id      TEXT NOT NULL,
    owner_name    TEXT NOT NULL,
    name          TEXT NOT NULL,
    category      TEXT NOT NULL,
    rent_per_hour REAL NOT NULL CHECK (rent_per_hour > 0),
    location_name TEXT NOT NULL,
    phone         TEXT NOT NULL,
    status        TEXT NOT NULL,
    image_ref     TEXT NOT NULL DEFAULT '',
    maps_link     TEXT NOT NULL DEFAULT '',
    created_at    TEXT NOT NULL,
    updated_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_items_owner ON items(owner_id, created_at);

CREATE TABLE IF NOT EXISTS borrow_records (
    id                TEXT PRIMARY KEY,
    borrower_id       TEXT NOT NULL,
    borrower_name     TEXT NOT NULL,
    item_id           TEXT NOT NULL,
    item_name         TEXT NOT NULL,
    owner_id          TEXT NOT NULL,
    owner_name        TEXT NOT NULL,
    owner_phone       TEXT NOT NULL,
    rent_per_hour     REAL NOT NULL,
    borrower_location TEXT NOT NULL,
    lender_location   TEXT NOT NULL,
    directions_link   TEXT NOT NULL DEFAULT '',
    status            TEXT NOT NULL DEFAULT 'requested'
                      CHECK (status IN ('requested', 'approved', 'borrowed', 'returned')),
    borrow_date       TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_borrow_records_borrower ON borrow_records(borrower_id, borrow_date);
CREATE INDEX IF NOT EXISTS idx_borrow_records_owner ON borrow_records(owner_id, borrow_date);

CREATE TABLE IF NOT EXISTS blobs (
    ref        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    size       INTEGER NOT NULL,
    created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
