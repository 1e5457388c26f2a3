package services

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/buildatscale/bas-server/internal/models"
	"github.com/buildatscale/bas-server/internal/store"
	"github.com/buildatscale/bas-server/internal/youtube"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPlaylistLoader struct {
	playlists []models.Playlist
	err       error
	block     chan struct{}
	started   chan struct{}
}

func (l *stubPlaylistLoader) Load(ctx context.Context, sink youtube.PlaylistSink) ([]models.Playlist, error) {
	if l.started != nil {
		close(l.started)
	}
	if l.block != nil {
		<-l.block
	}
	if l.err != nil {
		return nil, l.err
	}
	if err := sink.Clear(ctx); err != nil {
		return nil, err
	}
	for _, p := range l.playlists {
		if err := sink.Set(ctx, p.ID, p); err != nil {
			return nil, err
		}
	}
	return l.playlists, nil
}

type stubVideoLoader struct {
	videos []models.Video
	err    error
}

func (l *stubVideoLoader) Load(ctx context.Context, sink youtube.VideoSink) ([]models.Video, error) {
	if l.err != nil {
		return nil, l.err
	}
	if err := sink.Clear(ctx); err != nil {
		return nil, err
	}
	for _, v := range l.videos {
		if err := sink.Set(ctx, v.ID, v); err != nil {
			return nil, err
		}
	}
	return l.videos, nil
}

type stubSnapshots struct {
	got []models.ClickhousePlaylistSnapshot
	err error
}

func (s *stubSnapshots) InsertPlaylistSnapshots(_ context.Context, snapshots []models.ClickhousePlaylistSnapshot) error {
	s.got = snapshots
	return s.err
}

func newTestIngester(opts IngesterOptions) (*Ingester, *bytes.Buffer) {
	var logs bytes.Buffer
	opts.Logger = log.New(&logs, "", 0)
	if opts.PlaylistStore == nil {
		opts.PlaylistStore = store.NewMemoryPlaylistStore()
	}
	ingester := NewIngester(opts)
	ingester.now = func() time.Time { return time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC) }
	return ingester, &logs
}

func TestIngesterRun(t *testing.T) {
	ctx := context.Background()
	playlistStore := store.NewMemoryPlaylistStore()
	videoStore := store.NewMemoryVideoStore()
	snapshots := &stubSnapshots{}

	ingester, logs := newTestIngester(IngesterOptions{
		PlaylistLoader: &stubPlaylistLoader{playlists: []models.Playlist{
			{ID: "PL1", Title: "One", ItemCount: 3, VideoIDs: []string{"a", "b"}},
			{ID: "PL2", Title: "Two", ItemCount: 0, VideoIDs: []string{}},
		}},
		PlaylistStore: playlistStore,
		VideoLoader:   &stubVideoLoader{videos: []models.Video{{ID: "v1"}}},
		VideoStore:    videoStore,
		Snapshots:     snapshots,
	})

	report, err := ingester.Run(ctx)
	require.NoError(t, err)

	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)
	assert.Equal(t, 2, report.Playlists)
	assert.Equal(t, 1, report.Videos)
	assert.True(t, report.SnapshotsRecorded)
	assert.Same(t, report, ingester.LastReport())

	stored, err := playlistStore.GetPlaylists(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	videos, err := videoStore.GetVideos(ctx)
	require.NoError(t, err)
	assert.Len(t, videos, 1)

	require.Len(t, snapshots.got, 2)
	assert.Equal(t, models.ClickhousePlaylistSnapshot{
		PlaylistID:   "PL1",
		SnapshotTime: time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC),
		RunID:        report.RunID,
		Title:        "One",
		ItemCount:    3,
		VideoCount:   2,
	}, snapshots.got[0])

	assert.Contains(t, logs.String(), "2 playlists, 1 videos")
}

func TestIngesterPlaylistFailureKeepsStore(t *testing.T) {
	ctx := context.Background()
	playlistStore := store.NewMemoryPlaylistStore()
	require.NoError(t, playlistStore.Set(ctx, "old", models.Playlist{ID: "old"}))

	upstream := &youtube.APIError{Endpoint: "playlists", StatusCode: 403, Body: "quota"}
	ingester, _ := newTestIngester(IngesterOptions{
		PlaylistLoader: &stubPlaylistLoader{err: upstream},
		PlaylistStore:  playlistStore,
	})

	report, err := ingester.Run(ctx)
	require.Error(t, err)
	assert.Nil(t, report)

	var apiErr *youtube.APIError
	assert.True(t, errors.As(err, &apiErr))
	assert.Nil(t, ingester.LastReport())

	_, err = playlistStore.GetPlaylistByID(ctx, "old")
	assert.NoError(t, err)
}

func TestIngesterVideoFailure(t *testing.T) {
	ingester, _ := newTestIngester(IngesterOptions{
		PlaylistLoader: &stubPlaylistLoader{},
		VideoLoader:    &stubVideoLoader{err: errors.New("boom")},
		VideoStore:     store.NewMemoryVideoStore(),
	})

	_, err := ingester.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "video ingestion failed")
}

func TestIngesterSnapshotFailureIsNotFatal(t *testing.T) {
	ingester, logs := newTestIngester(IngesterOptions{
		PlaylistLoader: &stubPlaylistLoader{playlists: []models.Playlist{{ID: "PL1"}}},
		Snapshots:      &stubSnapshots{err: errors.New("clickhouse down")},
	})

	report, err := ingester.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.SnapshotsRecorded)
	assert.Equal(t, 0, report.Videos)
	assert.Contains(t, logs.String(), "could not record snapshots")
}

func TestIngesterRejectsConcurrentRuns(t *testing.T) {
	loader := &stubPlaylistLoader{block: make(chan struct{}), started: make(chan struct{})}
	ingester, _ := newTestIngester(IngesterOptions{PlaylistLoader: loader})

	done := make(chan error, 1)
	go func() {
		_, err := ingester.Run(context.Background())
		done <- err
	}()

	<-loader.started
	_, err := ingester.Run(context.Background())
	assert.ErrorIs(t, err, ErrIngestInProgress)

	close(loader.block)
	require.NoError(t, <-done)
}
