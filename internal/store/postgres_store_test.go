package store

import (
	"context"
	"database/sql"
	"io"
	"log"
	"os"
	"testing"

	"github.com/buildatscale/bas-server/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDB connects to TEST_DB_URL, a throwaway database the tests are
// free to truncate.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DB_URL")
	if dsn == "" {
		t.Skip("TEST_DB_URL not set")
	}

	db, err := ConnectPGDB(context.Background(), dsn, log.New(io.Discard, "", 0))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, MigrateFS(db, migrations.FS, "db"))

	_, err = db.Exec(`TRUNCATE playlists, videos`)
	require.NoError(t, err)

	return db
}

func TestPostgresPlaylistStore(t *testing.T) {
	ctx := context.Background()
	s := NewPostgresPlaylistStore(setupTestDB(t))

	require.NoError(t, s.ReplacePlaylists(ctx, samplePlaylists("a", "b", "c")))

	got, err := s.GetPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Equal(t, []string{"b-a", "b-b"}, got[1].VideoIDs)
	assert.Equal(t, int64(3), got[2].ItemCount)

	require.NoError(t, s.ReplacePlaylists(ctx, samplePlaylists("z")))
	got, err = s.GetPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)

	_, err = s.GetPlaylistByID(ctx, "a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Clear(ctx))
	for _, p := range samplePlaylists("x", "y") {
		require.NoError(t, s.Set(ctx, p.ID, p))
	}
	got, err = s.GetPlaylists(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "x", got[0].ID)

	p, err := s.GetPlaylistByID(ctx, "y")
	require.NoError(t, err)
	assert.Equal(t, "Title y", p.Title)
}

func TestPostgresVideoStore(t *testing.T) {
	ctx := context.Background()
	s := NewPostgresVideoStore(setupTestDB(t))

	require.NoError(t, s.ReplaceVideos(ctx, sampleVideos("v1", "v2")))

	got, err := s.GetVideos(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, uint64(2000), got[1].ViewCount)

	video, err := s.GetVideoByID(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, "PT1M30S", video.Duration)

	_, err = s.GetVideoByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Set(ctx, "v9", sampleVideos("v9")[0]))
	got, err = s.GetVideos(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
