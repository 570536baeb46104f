// Package blob stores uploaded item images under opaque references.
package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/borrowez/borrowez/internal/upload"
)

// ErrNotFound is returned by Open when no content exists for a reference.
var ErrNotFound = errors.New("blob not found")

// Store keeps image bytes. References are produced by Put and are safe to
// use as a single path element.
type Store interface {
	// Put saves data and returns its reference. The reference is derived
	// from the sanitized original filename.
	Put(ctx context.Context, originalName string, data []byte) (string, error)
	// Open returns the bytes for ref or ErrNotFound.
	Open(ctx context.Context, ref string) ([]byte, error)
	// Delete releases ref. Releasing a missing ref is not an error.
	Delete(ctx context.Context, ref string) error
}

// newRef builds a collision-resistant reference for originalName.
func newRef(originalName string, now time.Time) (string, error) {
	ref, err := upload.StoredName(originalName, now)
	if err != nil {
		return "", fmt.Errorf("naming blob: %w", err)
	}
	return ref, nil
}

func checkRef(ref string) error {
	if ref == "" || ref == "." || ref == ".." || strings.ContainsAny(ref, `/\`) {
		return fmt.Errorf("invalid blob reference %q", ref)
	}
	return nil
}
