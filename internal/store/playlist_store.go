package store

import (
	"context"
	"errors"
	"slices"

	"github.com/buildatscale/bas-server/internal/models"
)

var ErrNotFound = errors.New("record not found")

// PlaylistStore holds the playlists of the last successful ingestion, in the
// order they were loaded.
type PlaylistStore interface {
	Clear(ctx context.Context) error
	Set(ctx context.Context, id string, playlist models.Playlist) error
	ReplacePlaylists(ctx context.Context, playlists []models.Playlist) error
	GetPlaylists(ctx context.Context) ([]models.Playlist, error)
	GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error)
}

type MemoryPlaylistStore struct {
	records *memoryRecords[models.Playlist]
}

func NewMemoryPlaylistStore() *MemoryPlaylistStore {
	return &MemoryPlaylistStore{records: newMemoryRecords[models.Playlist]()}
}

func (s *MemoryPlaylistStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.records.clear()
	return nil
}

func (s *MemoryPlaylistStore) Set(ctx context.Context, id string, playlist models.Playlist) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.records.set(id, clonePlaylist(playlist))
	return nil
}

func (s *MemoryPlaylistStore) ReplacePlaylists(ctx context.Context, playlists []models.Playlist) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]string, len(playlists))
	records := make([]models.Playlist, len(playlists))
	for i, p := range playlists {
		ids[i] = p.ID
		records[i] = clonePlaylist(p)
	}
	s.records.replace(ids, records)
	return nil
}

func (s *MemoryPlaylistStore) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlists := s.records.all()
	for i := range playlists {
		playlists[i] = clonePlaylist(playlists[i])
	}
	return playlists, nil
}

func (s *MemoryPlaylistStore) GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	playlist, ok := s.records.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	playlist = clonePlaylist(playlist)
	return &playlist, nil
}

// clonePlaylist detaches VideoIDs from the caller's slice.
func clonePlaylist(p models.Playlist) models.Playlist {
	p.VideoIDs = slices.Clone(p.VideoIDs)
	if p.VideoIDs == nil {
		p.VideoIDs = []string{}
	}
	return p
}
