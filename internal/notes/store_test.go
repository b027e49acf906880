package notes

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// clockStore is implemented by the backends that take an injectable clock.
type clockStore interface {
	Store
	SetClock(func() time.Time)
}

func storeBackends(t *testing.T) map[string]clockStore {
	t.Helper()
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "notes.json"))
	require.NoError(t, err)
	return map[string]clockStore{
		"memory": NewMemoryStore(),
		"file":   fs,
	}
}

func TestStore_UpsertInsertThenUpdate(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
			now := base
			s.SetClock(func() time.Time { return now })

			r, err := s.Upsert(ctx, "2024-01-01", "hello", true)
			require.NoError(t, err)
			require.Equal(t, "hello", r.Content)
			require.Equal(t, base, r.CreatedAt)
			require.Equal(t, base, r.LastUpdated)
			require.Empty(t, r.CustomTitle)

			now = base.Add(time.Hour)
			r, err = s.Upsert(ctx, "2024-01-01", "hello again", true)
			require.NoError(t, err)
			require.Equal(t, "hello again", r.Content)
			require.Equal(t, base, r.CreatedAt, "created_at must never change")
			require.Equal(t, base.Add(time.Hour), r.LastUpdated)
		})
	}
}

func TestStore_UpsertPreservesTitle(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := s.Upsert(ctx, "2024-02-02", "x", true)
			require.NoError(t, err)
			_, err = s.Rename(ctx, "2024-02-02", "2024-02-02", "T")
			require.NoError(t, err)

			r, err := s.Upsert(ctx, "2024-02-02", "y", true)
			require.NoError(t, err)
			require.Equal(t, "T", r.CustomTitle)

			r, err = s.Upsert(ctx, "2024-02-02", "z", false)
			require.NoError(t, err)
			require.Empty(t, r.CustomTitle)
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(context.Background(), "1999-12-31")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Upsert(ctx, "2024-03-03", "x", true)
			require.NoError(t, err)

			removed, err := s.Delete(ctx, "2024-03-03")
			require.NoError(t, err)
			require.True(t, removed)

			removed, err = s.Delete(ctx, "2024-03-03")
			require.NoError(t, err)
			require.False(t, removed)
		})
	}
}

func TestStore_RenameMovesRecord(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Upsert(ctx, "2024-01-01", "body", true)
			require.NoError(t, err)

			r, err := s.Rename(ctx, "2024-01-01", "2024-01-05", "moved")
			require.NoError(t, err)
			require.Equal(t, "2024-01-05", r.Date)
			require.Equal(t, "moved", r.CustomTitle)
			require.Equal(t, "body", r.Content)

			_, err = s.Get(ctx, "2024-01-01")
			require.ErrorIs(t, err, ErrNotFound, "record must not stay under the old key")

			got, err := s.Get(ctx, "2024-01-05")
			require.NoError(t, err)
			require.Equal(t, "body", got.Content)
		})
	}
}

func TestStore_RenameCollisionLeavesBothUntouched(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Upsert(ctx, "2024-01-01", "x", true)
			require.NoError(t, err)
			_, err = s.Upsert(ctx, "2024-01-02", "y", true)
			require.NoError(t, err)

			_, err = s.Rename(ctx, "2024-01-01", "2024-01-02", "")
			require.ErrorIs(t, err, ErrCollision)

			a, err := s.Get(ctx, "2024-01-01")
			require.NoError(t, err)
			require.Equal(t, "x", a.Content)
			b, err := s.Get(ctx, "2024-01-02")
			require.NoError(t, err)
			require.Equal(t, "y", b.Content)
		})
	}
}

func TestStore_RenameIdentityUpdatesTitleAndTimestamp(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			base := time.Date(2024, 5, 5, 12, 0, 0, 0, time.UTC)
			now := base
			s.SetClock(func() time.Time { return now })

			_, err := s.Upsert(ctx, "2024-05-05", "x", true)
			require.NoError(t, err)

			now = base.Add(time.Minute)
			r, err := s.Rename(ctx, "2024-05-05", "2024-05-05", "retitled")
			require.NoError(t, err)
			require.Equal(t, "retitled", r.CustomTitle)
			require.Equal(t, base.Add(time.Minute), r.LastUpdated)
		})
	}
}

func TestStore_RenameMissingSource(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Rename(context.Background(), "2024-01-01", "2024-01-02", "")
			require.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestStore_RenameEmptyTitleClears(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Upsert(ctx, "2024-06-06", "x", true)
			require.NoError(t, err)
			_, err = s.Rename(ctx, "2024-06-06", "2024-06-06", "T")
			require.NoError(t, err)

			r, err := s.Rename(ctx, "2024-06-06", "2024-06-07", "")
			require.NoError(t, err)
			require.Empty(t, r.CustomTitle)
		})
	}
}

func TestStore_ListOrderAndPreview(t *testing.T) {
	long := ""
	for i := 0; i < 60; i++ {
		long += "a"
	}

	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			_, err := s.Upsert(ctx, "2024-01-01", long, true)
			require.NoError(t, err)
			_, err = s.Upsert(ctx, "2024-03-01", "short", true)
			require.NoError(t, err)
			_, err = s.Upsert(ctx, "2024-02-01", "mid", true)
			require.NoError(t, err)

			got, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 3)
			require.Equal(t, "2024-03-01", got[0].Date)
			require.Equal(t, "2024-02-01", got[1].Date)
			require.Equal(t, "2024-01-01", got[2].Date)
			require.Len(t, got[2].Preview, PreviewLen)
			require.Equal(t, "short", got[0].Preview)
			require.Equal(t, "", got[0].CustomTitle)
		})
	}
}

func TestStore_ConcurrentUpsertsSameDate(t *testing.T) {
	for name, s := range storeBackends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			var wg sync.WaitGroup
			for i := 0; i < 16; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := s.Upsert(ctx, "2024-07-07", "same body", true)
					require.NoError(t, err)
				}()
			}
			wg.Wait()

			got, err := s.List(ctx)
			require.NoError(t, err)
			require.Len(t, got, 1, "at most one record per date")
		})
	}
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.json")

	s1, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s1.Upsert(ctx, "2024-01-01", "persisted", true)
	require.NoError(t, err)
	_, err = s1.Rename(ctx, "2024-01-01", "2024-01-01", "kept title")
	require.NoError(t, err)

	// A fresh store over the same file sees the committed state.
	s2, err := NewFileStore(path)
	require.NoError(t, err)
	r, err := s2.Get(ctx, "2024-01-01")
	require.NoError(t, err)
	require.Equal(t, "persisted", r.Content)
	require.Equal(t, "kept title", r.CustomTitle)
}

func TestFileStore_FileIsAlwaysValidJSON(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "notes.json")

	s, err := NewFileStore(path)
	require.NoError(t, err)
	_, err = s.Upsert(ctx, "2024-01-01", "x", true)
	require.NoError(t, err)
	_, err = s.Delete(ctx, "2024-01-01")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var m map[string]Record
	require.NoError(t, json.Unmarshal(data, &m))
	require.Empty(t, m)
}

func TestFileStore_RejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path)
	require.Error(t, err)
}

func TestValidDate(t *testing.T) {
	require.True(t, ValidDate("2024-01-31"))
	require.False(t, ValidDate("2024-1-31"))
	require.False(t, ValidDate("2024-02-30"))
	require.False(t, ValidDate("not-a-date"))
	require.False(t, ValidDate(""))
}
