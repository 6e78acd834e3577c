package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/MuratFaizulla/mediapleer/internal/repository/upload"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	store := NewStore(db)
	require.NoError(t, store.EnsureSchema())

	return store
}

func TestStoreInsertAndListOlderThan(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Now()

	old := upload.File{
		Id:         "old",
		Filename:   "movie.mp4",
		StoredName: "123_movie.mp4",
		Url:        "/uploads/123_movie.mp4",
		Size:       1024,
		UploadedAt: now.Add(-48 * time.Hour),
	}
	fresh := upload.File{
		Id:         "fresh",
		Filename:   "clip.mp4",
		StoredName: "456_clip.mp4",
		Url:        "/uploads/456_clip.mp4",
		Size:       2048,
		UploadedAt: now,
	}
	require.NoError(t, store.Insert(ctx, &old))
	require.NoError(t, store.Insert(ctx, &fresh))

	stale, err := store.ListOlderThan(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, "old", stale[0].Id)
	assert.Equal(t, "movie.mp4", stale[0].Filename)
	assert.Equal(t, "123_movie.mp4", stale[0].StoredName)
	assert.Equal(t, int64(1024), stale[0].Size)
}

func TestStoreDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	cutoff := time.Now().Add(time.Hour)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Insert(ctx, &upload.File{
			Id:         id,
			Filename:   id + ".mp4",
			StoredName: id,
			Url:        "/uploads/" + id,
			UploadedAt: time.Now(),
		}))
	}

	require.NoError(t, store.Delete(ctx, []string{"a", "c"}))

	remaining, err := store.ListOlderThan(ctx, cutoff)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, "b", remaining[0].Id)

	require.NoError(t, store.Delete(ctx, nil), "deleting nothing is a no-op")
}
