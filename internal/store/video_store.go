package store

import (
	"context"

	"github.com/buildatscale/bas-server/internal/models"
)

// VideoStore holds the channel's latest uploads, newest first.
type VideoStore interface {
	Clear(ctx context.Context) error
	Set(ctx context.Context, id string, video models.Video) error
	ReplaceVideos(ctx context.Context, videos []models.Video) error
	GetVideos(ctx context.Context) ([]models.Video, error)
	GetVideoByID(ctx context.Context, id string) (*models.Video, error)
}

type MemoryVideoStore struct {
	records *memoryRecords[models.Video]
}

func NewMemoryVideoStore() *MemoryVideoStore {
	return &MemoryVideoStore{records: newMemoryRecords[models.Video]()}
}

func (s *MemoryVideoStore) Clear(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.records.clear()
	return nil
}

func (s *MemoryVideoStore) Set(ctx context.Context, id string, video models.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.records.set(id, video)
	return nil
}

func (s *MemoryVideoStore) ReplaceVideos(ctx context.Context, videos []models.Video) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}
	s.records.replace(ids, videos)
	return nil
}

func (s *MemoryVideoStore) GetVideos(ctx context.Context) ([]models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.records.all(), nil
}

func (s *MemoryVideoStore) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	video, ok := s.records.get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return &video, nil
}
