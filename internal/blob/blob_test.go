package blob

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/borrowez/borrowez/internal/db"
)

var refPattern = regexp.MustCompile(`^\d{8}_\d{6}_[A-Za-z0-9_.-]+_[0-9a-z]{6}\.[a-z]+$`)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return map[string]Store{
		"file":   fs,
		"sqlite": NewSQLiteStore(db.NewTestDB(t)),
	}
}

func TestStoreLifecycle(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			ref, err := s.Put(ctx, "My Drill.PNG", []byte("png bytes"))
			require.NoError(t, err)
			assert.Regexp(t, refPattern, ref)
			assert.Contains(t, ref, "My_Drill")

			data, err := s.Open(ctx, ref)
			require.NoError(t, err)
			assert.Equal(t, []byte("png bytes"), data)

			require.NoError(t, s.Delete(ctx, ref))
			_, err = s.Open(ctx, ref)
			assert.ErrorIs(t, err, ErrNotFound)

			assert.NoError(t, s.Delete(ctx, ref), "deleting a missing ref is a no-op")
		})
	}
}

func TestStoreDistinctRefs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			a, err := s.Put(ctx, "same.png", []byte("a"))
			require.NoError(t, err)
			b, err := s.Put(ctx, "same.png", []byte("b"))
			require.NoError(t, err)
			assert.NotEqual(t, a, b)

			data, _ := s.Open(ctx, a)
			assert.Equal(t, []byte("a"), data)
		})
	}
}

func TestStoreRejectsPathRefs(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, ref := range []string{"", "..", "../etc/passwd", `a\b.png`} {
				_, err := s.Open(ctx, ref)
				assert.Error(t, err, ref)
				assert.Error(t, s.Delete(ctx, ref), ref)
			}
		})
	}
}

func TestFileStoreWritesIntoDir(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	require.NoError(t, err)

	ref, err := s.Put(context.Background(), "../../escape.gif", []byte("gif"))
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, ref))
	assert.NoError(t, err)
}

func TestFileStoreCanceledContext(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "a.png", []byte("x"))
	assert.ErrorIs(t, err, context.Canceled)
}
