package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/buildatscale/bas-server/internal/models"
	"github.com/buildatscale/bas-server/internal/store/analytics"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSnapshotStore struct {
	snapshots map[string][]analytics.PlaylistTimelineSnapshot
	err       error
}

func (f *fakeSnapshotStore) InsertPlaylistSnapshots(context.Context, []models.ClickhousePlaylistSnapshot) error {
	return nil
}

func (f *fakeSnapshotStore) GetPlaylistSnapshotsByID(_ context.Context, id string) ([]analytics.PlaylistTimelineSnapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.snapshots[id], nil
}

func serve(h *AnalyticsPlaylistHandler, id string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Get("/playlists/{id}/analytics", h.HandlerGetPlaylistAnalyticsByID)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/playlists/"+id+"/analytics", nil))
	return rec
}

func TestGetPlaylistAnalytics(t *testing.T) {
	at := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	s := &fakeSnapshotStore{snapshots: map[string][]analytics.PlaylistTimelineSnapshot{
		"PL1": {{SnapshotTime: at, RunID: "run-1", Title: "One", ItemCount: 3, VideoCount: 2}},
	}}
	h := NewAnalyticsPlaylistHandler(s, log.New(&bytes.Buffer{}, "", 0))

	rec := serve(h, "PL1")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Data []analytics.PlaylistTimelineSnapshot `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "run-1", body.Data[0].RunID)
	assert.True(t, at.Equal(body.Data[0].SnapshotTime))
}

func TestGetPlaylistAnalyticsNotConfigured(t *testing.T) {
	h := NewAnalyticsPlaylistHandler(nil, log.New(&bytes.Buffer{}, "", 0))

	rec := serve(h, "PL1")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestGetPlaylistAnalyticsStoreError(t *testing.T) {
	var logs bytes.Buffer
	h := NewAnalyticsPlaylistHandler(&fakeSnapshotStore{err: errors.New("clickhouse down")}, log.New(&logs, "", 0))

	rec := serve(h, "PL1")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, logs.String(), "clickhouse down")
}
