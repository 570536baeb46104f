package store

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/borrowez/borrowez/internal/db"
	"github.com/borrowez/borrowez/internal/model"
)

func newTestBorrow(borrowerID, ownerID, itemID string) *model.BorrowRecord {
	return &model.BorrowRecord{
		BorrowerID:       borrowerID,
		BorrowerName:     "Borrower " + borrowerID,
		ItemID:           itemID,
		ItemName:         "Drill",
		OwnerID:          ownerID,
		OwnerName:        "Owner " + ownerID,
		OwnerPhone:       "555-0100",
		RentPerHour:      5,
		BorrowerLocation: "Mumbai",
		LenderLocation:   "Pune",
	}
}

func TestCreateAndGetBorrowRecord(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rec, err := CreateBorrowRecord(ctx, database, newTestBorrow("usr_b", "usr_o", "itm_1"))
	if err != nil {
		t.Fatalf("CreateBorrowRecord: %v", err)
	}
	if !strings.HasPrefix(rec.ID, "brw_") {
		t.Errorf("expected brw_ prefix, got %q", rec.ID)
	}
	if rec.Status != model.BorrowStatusRequested {
		t.Errorf("expected status requested, got %q", rec.Status)
	}
	if rec.BorrowDate.IsZero() {
		t.Error("expected borrow date to be set")
	}

	got, err := GetBorrowRecord(ctx, database, rec.ID)
	if err != nil {
		t.Fatalf("GetBorrowRecord: %v", err)
	}
	if got.LenderLocation != "Pune" || got.OwnerPhone != "555-0100" {
		t.Errorf("snapshot not stored: %+v", got)
	}
}

func TestGetBorrowRecordMissing(t *testing.T) {
	database := db.NewTestDB(t)

	got, err := GetBorrowRecord(context.Background(), database, "brw_missing")
	if err != nil {
		t.Fatalf("GetBorrowRecord: %v", err)
	}
	if got != nil {
		t.Error("expected nil for missing record")
	}
}

func TestUpdateBorrowStatusOnlyTouchesStatus(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rec, _ := CreateBorrowRecord(ctx, database, newTestBorrow("usr_b", "usr_o", "itm_1"))
	if err := UpdateBorrowStatus(ctx, database, rec.ID, model.BorrowStatusApproved); err != nil {
		t.Fatalf("UpdateBorrowStatus: %v", err)
	}

	got, _ := GetBorrowRecord(ctx, database, rec.ID)
	if got.Status != model.BorrowStatusApproved {
		t.Errorf("expected approved, got %q", got.Status)
	}
	got.Status = rec.Status
	if *got != *rec {
		t.Errorf("non-status fields changed:\n got %+v\nwant %+v", got, rec)
	}
}

func TestUpdateBorrowStatusRejectsUnknownLabel(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	rec, _ := CreateBorrowRecord(ctx, database, newTestBorrow("usr_b", "usr_o", "itm_1"))
	if err := UpdateBorrowStatus(ctx, database, rec.ID, "lost"); err == nil {
		t.Error("expected check constraint to reject unknown status")
	}
}

func TestListBorrowsByBorrowerAndOwner(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	first := newTestBorrow("usr_b", "usr_o", "itm_1")
	first.BorrowDate = base
	second := newTestBorrow("usr_b", "usr_o", "itm_2")
	second.BorrowDate = base.Add(time.Minute)
	other := newTestBorrow("usr_x", "usr_y", "itm_3")

	for _, rec := range []*model.BorrowRecord{first, second, other} {
		if _, err := CreateBorrowRecord(ctx, database, rec); err != nil {
			t.Fatalf("CreateBorrowRecord: %v", err)
		}
	}

	byBorrower, err := ListBorrowsByBorrower(ctx, database, "usr_b")
	if err != nil {
		t.Fatalf("ListBorrowsByBorrower: %v", err)
	}
	if len(byBorrower) != 2 {
		t.Fatalf("expected 2 records, got %d", len(byBorrower))
	}
	if byBorrower[0].ItemID != "itm_2" {
		t.Errorf("expected newest first, got %q", byBorrower[0].ItemID)
	}

	byOwner, err := ListBorrowsByOwner(ctx, database, "usr_o")
	if err != nil {
		t.Fatalf("ListBorrowsByOwner: %v", err)
	}
	if len(byOwner) != 2 {
		t.Errorf("expected 2 records, got %d", len(byOwner))
	}

	none, _ := ListBorrowsByOwner(ctx, database, "usr_b")
	if len(none) != 0 {
		t.Errorf("borrower owns nothing, got %d records", len(none))
	}
}

func TestBorrowRecordSurvivesItemDelete(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, _ := CreateItem(ctx, database, newTestItem("usr_o", "Drill"))
	rec, _ := CreateBorrowRecord(ctx, database, newTestBorrow("usr_b", "usr_o", item.ID))

	if err := DeleteItem(ctx, database, item.ID); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	got, err := GetBorrowRecord(ctx, database, rec.ID)
	if err != nil {
		t.Fatalf("GetBorrowRecord: %v", err)
	}
	if got == nil || got.ItemName != "Drill" {
		t.Errorf("expected orphaned record to stay readable, got %+v", got)
	}
}
