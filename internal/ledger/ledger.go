// Package ledger records borrow requests and their status changes.
package ledger

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	domainerrors "github.com/borrowez/borrowez/internal/errors"
	"github.com/borrowez/borrowez/internal/identity"
	"github.com/borrowez/borrowez/internal/links"
	"github.com/borrowez/borrowez/internal/model"
	"github.com/borrowez/borrowez/internal/store"
)

// Service implements the borrow ledger.
type Service struct {
	db      *sql.DB
	timeout time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a ledger. Each store call is bounded by timeout.
func NewService(db *sql.DB, timeout time.Duration, logger *slog.Logger) *Service {
	return &Service{
		db:      db,
		timeout: timeout,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Request records a borrow request for an item. The item's current name,
// owner, phone, rent and location are copied into the record and never
// refreshed.
func (s *Service) Request(ctx context.Context, caller identity.Identity, itemID, borrowerLocation string) (*model.BorrowRecord, error) {
	if caller.IsZero() {
		return nil, domainerrors.ErrUnauthenticated
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	item, err := store.GetItem(sctx, s.db, itemID)
	if err != nil {
		s.logger.Error("getting item for borrow", "item", itemID, "error", err)
		return nil, domainerrors.Storage(err)
	}
	if item == nil {
		return nil, domainerrors.NotFound("item not found")
	}
	if caller.Owns(item.OwnerID) {
		return nil, domainerrors.Forbidden("you cannot borrow your own item")
	}

	if strings.TrimSpace(borrowerLocation) == "" {
		return nil, domainerrors.InvalidInputWithDetails("please provide your location",
			map[string]string{"borrower_location": "is required"})
	}

	rec := &model.BorrowRecord{
		BorrowerID:       caller.UserID,
		BorrowerName:     caller.Name,
		ItemID:           item.ID,
		ItemName:         item.Name,
		OwnerID:          item.OwnerID,
		OwnerName:        item.OwnerName,
		OwnerPhone:       item.Phone,
		RentPerHour:      item.RentPerHour,
		BorrowerLocation: borrowerLocation,
		LenderLocation:   item.LocationName,
		DirectionsLink:   links.DirectionsLink(borrowerLocation, item.LocationName),
		Status:           model.BorrowStatusRequested,
		BorrowDate:       s.now(),
	}

	created, err := store.CreateBorrowRecord(sctx, s.db, rec)
	if err != nil {
		s.logger.Error("creating borrow record", "item", itemID, "error", err)
		return nil, domainerrors.Storage(err)
	}

	s.logger.Info("borrow requested", "record", created.ID, "item", itemID, "borrower", caller.UserID)
	return created, nil
}

// Advance sets the status of a record owned by the caller. Any of
// approved, borrowed and returned may be written from any state. Other
// labels leave the record unchanged and still succeed.
func (s *Service) Advance(ctx context.Context, caller identity.Identity, recordID, status string) (*model.BorrowRecord, error) {
	if caller.IsZero() {
		return nil, domainerrors.ErrUnauthenticated
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := s.find(sctx, recordID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(rec.OwnerID) {
		s.logger.Warn("borrow status change by non-owner", "record", recordID, "caller", caller.UserID)
		return nil, domainerrors.Forbidden("only the item owner can change this request")
	}

	if !model.IsAssignableBorrowStatus(status) {
		s.logger.Info("ignoring unrecognized borrow status", "record", recordID, "status", status)
		return rec, nil
	}

	if err := store.UpdateBorrowStatus(sctx, s.db, recordID, status); err != nil {
		s.logger.Error("updating borrow status", "record", recordID, "error", err)
		return nil, domainerrors.Storage(err)
	}
	rec.Status = status

	s.logger.Info("borrow status changed", "record", recordID, "status", status)
	return rec, nil
}

// Get returns a record to its borrower or the owner of the item. Records
// stay readable after their item is deleted.
func (s *Service) Get(ctx context.Context, caller identity.Identity, recordID string) (*model.BorrowRecord, error) {
	if caller.IsZero() {
		return nil, domainerrors.ErrUnauthenticated
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	rec, err := s.find(sctx, recordID)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(rec.BorrowerID) && !caller.Owns(rec.OwnerID) {
		return nil, domainerrors.Forbidden("not your borrow request")
	}
	return rec, nil
}

// ListForBorrower returns the records requested by borrowerID, newest first.
func (s *Service) ListForBorrower(ctx context.Context, borrowerID string) ([]model.BorrowRecord, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	records, err := store.ListBorrowsByBorrower(sctx, s.db, borrowerID)
	if err != nil {
		s.logger.Error("listing borrows", "borrower", borrowerID, "error", err)
		return nil, domainerrors.Storage(err)
	}
	return records, nil
}

// ListForOwner returns the records against items of ownerID, newest first.
func (s *Service) ListForOwner(ctx context.Context, ownerID string) ([]model.BorrowRecord, error) {
	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	records, err := store.ListBorrowsByOwner(sctx, s.db, ownerID)
	if err != nil {
		s.logger.Error("listing lendings", "owner", ownerID, "error", err)
		return nil, domainerrors.Storage(err)
	}
	return records, nil
}

func (s *Service) find(ctx context.Context, recordID string) (*model.BorrowRecord, error) {
	rec, err := store.GetBorrowRecord(ctx, s.db, recordID)
	if err != nil {
		s.logger.Error("getting borrow record", "record", recordID, "error", err)
		return nil, domainerrors.Storage(err)
	}
	if rec == nil {
		return nil, domainerrors.NotFound("borrow request not found")
	}
	return rec, nil
}
