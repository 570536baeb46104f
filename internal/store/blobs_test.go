package store

import (
	"context"
	"testing"

	"github.com/borrowez/borrowez/internal/db"
)

func TestBlobLifecycle(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	if err := PutBlob(ctx, database, "a.png", []byte("fake image data")); err != nil {
		t.Fatalf("PutBlob: %v", err)
	}

	data, err := GetBlob(ctx, database, "a.png")
	if err != nil {
		t.Fatalf("GetBlob: %v", err)
	}
	if string(data) != "fake image data" {
		t.Errorf("expected image data, got %q", string(data))
	}

	if err := DeleteBlob(ctx, database, "a.png"); err != nil {
		t.Fatalf("DeleteBlob: %v", err)
	}
	data, err = GetBlob(ctx, database, "a.png")
	if err != nil {
		t.Fatalf("GetBlob after delete: %v", err)
	}
	if data != nil {
		t.Error("expected nil after delete")
	}

	// Deleting twice is fine.
	if err := DeleteBlob(ctx, database, "a.png"); err != nil {
		t.Errorf("second DeleteBlob: %v", err)
	}
}
