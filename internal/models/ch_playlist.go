package models

import "time"

type ClickhousePlaylistSnapshot struct {
	PlaylistID   string    `ch:"playlist_id"`
	SnapshotTime time.Time `ch:"snapshot_time"`
	RunID        string    `ch:"run_id"`
	Title        string    `ch:"title"`
	ItemCount    int64     `ch:"item_count"`
	VideoCount   int64     `ch:"video_count"`
}
