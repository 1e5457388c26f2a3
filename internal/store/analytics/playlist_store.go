package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
	"github.com/buildatscale/bas-server/internal/models"
)

type ClickhousePlaylistStore struct {
	conn driver.Conn
}

func NewClickhousePlaylistStore(conn driver.Conn) *ClickhousePlaylistStore {
	return &ClickhousePlaylistStore{conn: conn}
}

type PlaylistTimelineSnapshot struct {
	SnapshotTime time.Time `json:"snapshot_time"`
	RunID        string    `json:"run_id"`
	Title        string    `json:"title"`
	ItemCount    int64     `json:"item_count"`
	VideoCount   int64     `json:"video_count"`
}

type AnalyticsPlaylistStore interface {
	InsertPlaylistSnapshots(ctx context.Context, snapshots []models.ClickhousePlaylistSnapshot) error
	GetPlaylistSnapshotsByID(ctx context.Context, playlistID string) ([]PlaylistTimelineSnapshot, error)
}

func (c *ClickhousePlaylistStore) InsertPlaylistSnapshots(ctx context.Context, snapshots []models.ClickhousePlaylistSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	batch, err := c.conn.PrepareBatch(ctx, "INSERT INTO playlist_snapshots")
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot batch: %w", err)
	}

	for i := range snapshots {
		if err := batch.AppendStruct(&snapshots[i]); err != nil {
			batch.Abort()
			return fmt.Errorf("failed to append snapshot for %s: %w", snapshots[i].PlaylistID, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to send snapshot batch: %w", err)
	}
	return nil
}

func (c *ClickhousePlaylistStore) GetPlaylistSnapshotsByID(ctx context.Context, playlistID string) ([]PlaylistTimelineSnapshot, error) {
	query := `
		SELECT snapshot_time, run_id, title, item_count, video_count
		FROM playlist_snapshots
		WHERE playlist_id = ?
		ORDER BY snapshot_time DESC
	`

	rows, err := c.conn.Query(ctx, query, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist analytics: %w", err)
	}
	defer rows.Close()

	snapshots := []PlaylistTimelineSnapshot{}

	for rows.Next() {
		var snapshot PlaylistTimelineSnapshot

		err := rows.Scan(
			&snapshot.SnapshotTime,
			&snapshot.RunID,
			&snapshot.Title,
			&snapshot.ItemCount,
			&snapshot.VideoCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan playlist snapshot: %w", err)
		}
		snapshots = append(snapshots, snapshot)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over snapshot rows: %w", err)
	}

	return snapshots, nil
}
