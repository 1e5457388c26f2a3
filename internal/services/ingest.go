package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/buildatscale/bas-server/internal/models"
	"github.com/buildatscale/bas-server/internal/store"
	"github.com/buildatscale/bas-server/internal/youtube"
	"github.com/google/uuid"
)

var ErrIngestInProgress = errors.New("ingestion already in progress")

type PlaylistLoader interface {
	Load(ctx context.Context, sink youtube.PlaylistSink) ([]models.Playlist, error)
}

type VideoLoader interface {
	Load(ctx context.Context, sink youtube.VideoSink) ([]models.Video, error)
}

type SnapshotRecorder interface {
	InsertPlaylistSnapshots(ctx context.Context, snapshots []models.ClickhousePlaylistSnapshot) error
}

type IngestReport struct {
	RunID             string    `json:"runId"`
	StartedAt         time.Time `json:"startedAt"`
	FinishedAt        time.Time `json:"finishedAt"`
	Playlists         int       `json:"playlists"`
	Videos            int       `json:"videos"`
	SnapshotsRecorded bool      `json:"snapshotsRecorded"`
}

// Ingester refreshes the stores from YouTube. Only one run happens at a
// time; a run started while another is in flight fails immediately.
type Ingester struct {
	playlistLoader PlaylistLoader
	videoLoader    VideoLoader
	playlistStore  store.PlaylistStore
	videoStore     store.VideoStore
	snapshots      SnapshotRecorder
	logger         *log.Logger
	now            func() time.Time

	running sync.Mutex

	mu   sync.RWMutex
	last *IngestReport
}

type IngesterOptions struct {
	PlaylistLoader PlaylistLoader
	PlaylistStore  store.PlaylistStore

	// VideoLoader and VideoStore are optional; videos are skipped when
	// either is nil.
	VideoLoader VideoLoader
	VideoStore  store.VideoStore

	// Snapshots is optional.
	Snapshots SnapshotRecorder
	Logger    *log.Logger
}

func NewIngester(opts IngesterOptions) *Ingester {
	return &Ingester{
		playlistLoader: opts.PlaylistLoader,
		videoLoader:    opts.VideoLoader,
		playlistStore:  opts.PlaylistStore,
		videoStore:     opts.VideoStore,
		snapshots:      opts.Snapshots,
		logger:         opts.Logger,
		now:            time.Now,
	}
}

func (i *Ingester) Run(ctx context.Context) (*IngestReport, error) {
	if !i.running.TryLock() {
		return nil, ErrIngestInProgress
	}
	defer i.running.Unlock()

	report := &IngestReport{
		RunID:     uuid.NewString(),
		StartedAt: i.now().UTC(),
	}
	i.logger.Printf("Ingestion %s started", report.RunID)

	playlists, err := i.playlistLoader.Load(ctx, i.playlistStore)
	if err != nil {
		i.logger.Printf("Ingestion %s failed loading playlists: %v", report.RunID, err)
		return nil, fmt.Errorf("playlist ingestion failed: %w", err)
	}
	report.Playlists = len(playlists)

	if i.videoLoader != nil && i.videoStore != nil {
		videos, err := i.videoLoader.Load(ctx, i.videoStore)
		if err != nil {
			i.logger.Printf("Ingestion %s failed loading videos: %v", report.RunID, err)
			return nil, fmt.Errorf("video ingestion failed: %w", err)
		}
		report.Videos = len(videos)
	}

	if i.snapshots != nil {
		snapshots := newSnapshots(report.RunID, report.StartedAt, playlists)
		if err := i.snapshots.InsertPlaylistSnapshots(ctx, snapshots); err != nil {
			i.logger.Printf("Ingestion %s could not record snapshots: %v", report.RunID, err)
		} else {
			report.SnapshotsRecorded = true
		}
	}

	report.FinishedAt = i.now().UTC()
	i.logger.Printf("Ingestion %s finished: %d playlists, %d videos", report.RunID, report.Playlists, report.Videos)

	i.mu.Lock()
	i.last = report
	i.mu.Unlock()

	return report, nil
}

// LastReport returns the report of the most recent successful run, or nil.
func (i *Ingester) LastReport() *IngestReport {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.last
}

func newSnapshots(runID string, at time.Time, playlists []models.Playlist) []models.ClickhousePlaylistSnapshot {
	snapshots := make([]models.ClickhousePlaylistSnapshot, len(playlists))
	for n, p := range playlists {
		snapshots[n] = models.ClickhousePlaylistSnapshot{
			PlaylistID:   p.ID,
			SnapshotTime: at,
			RunID:        runID,
			Title:        p.Title,
			ItemCount:    p.ItemCount,
			VideoCount:   int64(len(p.VideoIDs)),
		}
	}
	return snapshots
}
