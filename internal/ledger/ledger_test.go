package ledger

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borrowez/borrowez/internal/db"
	domainerrors "github.com/borrowez/borrowez/internal/errors"
	"github.com/borrowez/borrowez/internal/identity"
	"github.com/borrowez/borrowez/internal/model"
	"github.com/borrowez/borrowez/internal/store"
)

var (
	alice = identity.Identity{UserID: "usr_alice", Name: "Alice"}
	bob   = identity.Identity{UserID: "usr_bob", Name: "Bob"}
	carol = identity.Identity{UserID: "usr_carol", Name: "Carol"}
)

type fixture struct {
	svc  *Service
	item *model.Item
	ctx  context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := db.NewTestDB(t)
	ctx := context.Background()

	item, err := store.CreateItem(ctx, database, &model.Item{
		OwnerID:      alice.UserID,
		OwnerName:    alice.Name,
		Name:         "Drill",
		Category:     "Tools",
		RentPerHour:  5,
		LocationName: "Pune",
		Phone:        "555-0100",
		Status:       model.ItemStatusAvailable,
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{svc: NewService(database, time.Second, logger), item: item, ctx: ctx}
}

func TestRequest(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Request(f.ctx, bob, f.item.ID, "Mumbai")
	require.NoError(t, err)

	assert.Equal(t, model.BorrowStatusRequested, rec.Status)
	assert.Equal(t, bob.UserID, rec.BorrowerID)
	assert.Equal(t, "Bob", rec.BorrowerName)
	assert.Equal(t, alice.UserID, rec.OwnerID)
	assert.Equal(t, "Alice", rec.OwnerName)
	assert.Equal(t, "555-0100", rec.OwnerPhone)
	assert.Equal(t, "Drill", rec.ItemName)
	assert.Equal(t, 5.0, rec.RentPerHour)
	assert.Equal(t, "Mumbai", rec.BorrowerLocation)
	assert.Equal(t, "Pune", rec.LenderLocation)
	assert.Contains(t, rec.DirectionsLink, "Pune")
	assert.Contains(t, rec.DirectionsLink, "Mumbai")
	assert.False(t, rec.BorrowDate.IsZero())
}

func TestRequestErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Request(f.ctx, identity.Identity{}, f.item.ID, "Mumbai")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = f.svc.Request(f.ctx, bob, "itm_missing", "Mumbai")
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	_, err = f.svc.Request(f.ctx, bob, f.item.ID, "   ")
	assert.ErrorIs(t, err, domainerrors.ErrInvalidInput)

	_, err = f.svc.Request(f.ctx, alice, f.item.ID, "Pune")
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	none, err := f.svc.ListForOwner(f.ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestRequestStoresLocationVerbatim(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Request(f.ctx, bob, f.item.ID, " Mumbai ")
	require.NoError(t, err)
	assert.Equal(t, " Mumbai ", rec.BorrowerLocation)
}

func TestRequestAllowsDoubleBooking(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Request(f.ctx, bob, f.item.ID, "Mumbai")
	require.NoError(t, err)
	_, err = f.svc.Request(f.ctx, carol, f.item.ID, "Goa")
	require.NoError(t, err)

	lendings, err := f.svc.ListForOwner(f.ctx, alice.UserID)
	require.NoError(t, err)
	assert.Len(t, lendings, 2)
}

func TestAdvance(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Request(f.ctx, bob, f.item.ID, "Mumbai")
	require.NoError(t, err)

	for _, status := range []string{
		model.BorrowStatusApproved,
		model.BorrowStatusBorrowed,
		model.BorrowStatusReturned,
		// No ordering or terminal lock.
		model.BorrowStatusApproved,
	} {
		got, err := f.svc.Advance(f.ctx, alice, rec.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, got.Status)

		stored, err := f.svc.Get(f.ctx, bob, rec.ID)
		require.NoError(t, err)
		assert.Equal(t, status, stored.Status)
	}
}

func TestAdvanceByBorrowerIsForbidden(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Request(f.ctx, bob, f.item.ID, "Mumbai")
	require.NoError(t, err)

	_, err = f.svc.Advance(f.ctx, bob, rec.ID, model.BorrowStatusApproved)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	stored, err := f.svc.Get(f.ctx, alice, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BorrowStatusRequested, stored.Status)
}

func TestAdvanceUnknownLabelIsNoOp(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Request(f.ctx, bob, f.item.ID, "Mumbai")
	require.NoError(t, err)
	_, err = f.svc.Advance(f.ctx, alice, rec.ID, model.BorrowStatusBorrowed)
	require.NoError(t, err)

	for _, label := range []string{"lost", "", "Approved", model.BorrowStatusRequested} {
		got, err := f.svc.Advance(f.ctx, alice, rec.ID, label)
		require.NoError(t, err, label)
		assert.Equal(t, model.BorrowStatusBorrowed, got.Status, label)
	}

	stored, err := f.svc.Get(f.ctx, alice, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BorrowStatusBorrowed, stored.Status)
}

func TestAdvanceErrors(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Advance(f.ctx, identity.Identity{}, "brw_missing", model.BorrowStatusApproved)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = f.svc.Advance(f.ctx, alice, "brw_missing", model.BorrowStatusApproved)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestGetAccess(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Request(f.ctx, bob, f.item.ID, "Mumbai")
	require.NoError(t, err)

	_, err = f.svc.Get(f.ctx, bob, rec.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(f.ctx, alice, rec.ID)
	assert.NoError(t, err)
	_, err = f.svc.Get(f.ctx, carol, rec.ID)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)
	_, err = f.svc.Get(f.ctx, identity.Identity{}, rec.ID)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestSnapshotSurvivesItemChanges(t *testing.T) {
	f := newFixture(t)

	rec, err := f.svc.Request(f.ctx, bob, f.item.ID, "Mumbai")
	require.NoError(t, err)

	f.item.Name = "Cordless Drill"
	f.item.RentPerHour = 9
	f.item.LocationName = "Nashik"
	f.item.Phone = "555-0199"
	require.NoError(t, store.UpdateItem(f.ctx, f.svc.db, f.item))

	after, err := f.svc.Get(f.ctx, bob, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec, after)

	require.NoError(t, store.DeleteItem(f.ctx, f.svc.db, f.item.ID))

	orphan, err := f.svc.Get(f.ctx, alice, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Drill", orphan.ItemName)
	assert.Equal(t, 5.0, orphan.RentPerHour)
	assert.Equal(t, "Pune", orphan.LenderLocation)

	// The owner can still move an orphaned record along.
	_, err = f.svc.Advance(f.ctx, alice, rec.ID, model.BorrowStatusReturned)
	assert.NoError(t, err)
}

func TestListsNewestFirst(t *testing.T) {
	f := newFixture(t)

	base := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	var ids []string
	for i, who := range []identity.Identity{bob, carol, bob} {
		f.svc.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		rec, err := f.svc.Request(f.ctx, who, f.item.ID, "Mumbai")
		require.NoError(t, err)
		ids = append(ids, rec.ID)
	}

	borrows, err := f.svc.ListForBorrower(f.ctx, bob.UserID)
	require.NoError(t, err)
	require.Len(t, borrows, 2)
	assert.Equal(t, ids[2], borrows[0].ID)
	assert.Equal(t, ids[0], borrows[1].ID)

	lendings, err := f.svc.ListForOwner(f.ctx, alice.UserID)
	require.NoError(t, err)
	require.Len(t, lendings, 3)
	assert.Equal(t, ids[2], lendings[0].ID)

	none, err := f.svc.ListForBorrower(f.ctx, alice.UserID)
	require.NoError(t, err)
	assert.Empty(t, none)
}
