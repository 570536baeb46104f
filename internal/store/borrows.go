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

const borrowColumns = `id, borrower_id, borrower_name, item_id, item_name, owner_id, owner_name,
	owner_phone, rent_per_hour, borrower_location, lender_location, directions_link,
	status, borrow_date`

// CreateBorrowRecord inserts a borrow record. The snapshot fields are
// written once and never updated afterwards.
func CreateBorrowRecord(ctx context.Context, db *sql.DB, rec *model.BorrowRecord) (*model.BorrowRecord, error) {
	if rec.ID == "" {
		newID, err := id.Generate(id.PrefixBorrow)
		if err != nil {
			return nil, fmt.Errorf("generating borrow id: %w", err)
		}
		rec.ID = newID
	}
	if rec.BorrowDate.IsZero() {
		rec.BorrowDate = time.Now()
	}
	if rec.Status == "" {
		rec.Status = model.BorrowStatusRequested
	}

	_, err := db.ExecContext(ctx,
		`INSERT INTO borrow_records (`+borrowColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.BorrowerID, rec.BorrowerName, rec.ItemID, rec.ItemName, rec.OwnerID,
		rec.OwnerName, rec.OwnerPhone, rec.RentPerHour, rec.BorrowerLocation,
		rec.LenderLocation, rec.DirectionsLink, rec.Status, formatTime(rec.BorrowDate),
	)
	if err != nil {
		return nil, fmt.Errorf("creating borrow record: %w", err)
	}

	return GetBorrowRecord(ctx, db, rec.ID)
}

// GetBorrowRecord returns a borrow record by ID, or nil if it does not exist.
func GetBorrowRecord(ctx context.Context, db *sql.DB, recordID string) (*model.BorrowRecord, error) {
	row := db.QueryRowContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_records WHERE id = ?`, recordID,
	)
	rec, err := scanBorrow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting borrow record: %w", err)
	}
	return rec, nil
}

// UpdateBorrowStatus sets the status of a borrow record. No other column is
// touched.
func UpdateBorrowStatus(ctx context.Context, db *sql.DB, recordID, status string) error {
	_, err := db.ExecContext(ctx,
		`UPDATE borrow_records SET status = ? WHERE id = ?`, status, recordID,
	)
	if err != nil {
		return fmt.Errorf("updating borrow status: %w", err)
	}
	return nil
}

// ListBorrowsByBorrower returns the records a user requested, newest first.
func ListBorrowsByBorrower(ctx context.Context, db *sql.DB, borrowerID string) ([]model.BorrowRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_records WHERE borrower_id = ?
		 ORDER BY borrow_date DESC, rowid DESC`, borrowerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing borrows by borrower: %w", err)
	}
	defer rows.Close()

	return scanBorrows(rows)
}

// ListBorrowsByOwner returns the records against a user's items, newest first.
func ListBorrowsByOwner(ctx context.Context, db *sql.DB, ownerID string) ([]model.BorrowRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+borrowColumns+` FROM borrow_records WHERE owner_id = ?
		 ORDER BY borrow_date DESC, rowid DESC`, ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing borrows by owner: %w", err)
	}
	defer rows.Close()

	return scanBorrows(rows)
}

func scanBorrow(row rowScanner) (*model.BorrowRecord, error) {
	var rec model.BorrowRecord
	var borrowDate string
	err := row.Scan(&rec.ID, &rec.BorrowerID, &rec.BorrowerName, &rec.ItemID, &rec.ItemName,
		&rec.OwnerID, &rec.OwnerName, &rec.OwnerPhone, &rec.RentPerHour, &rec.BorrowerLocation,
		&rec.LenderLocation, &rec.DirectionsLink, &rec.Status, &borrowDate)
	if err != nil {
		return nil, err
	}
	if rec.BorrowDate, err = parseTime(borrowDate); err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanBorrows(rows *sql.Rows) ([]model.BorrowRecord, error) {
	records := []model.BorrowRecord{}
	for rows.Next() {
		rec, err := scanBorrow(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning borrow record: %w", err)
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}
