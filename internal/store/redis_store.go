package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buildatscale/bas-server/internal/models"
	"github.com/redis/go-redis/v9"
)

// redisRecords stores JSON records in a hash keyed by id, with a list
// keeping their order.
type redisRecords[T any] struct {
	client     *redis.Client
	recordsKey string
	orderKey   string
}

func newRedisRecords[T any](client *redis.Client, prefix string) *redisRecords[T] {
	if client == nil {
		panic("redis client cannot be nil for " + prefix + " store")
	}
	return &redisRecords[T]{
		client:     client,
		recordsKey: prefix + ":records",
		orderKey:   prefix + ":order",
	}
}

func (r *redisRecords[T]) clear(ctx context.Context) error {
	return r.client.Del(ctx, r.recordsKey, r.orderKey).Err()
}

func (r *redisRecords[T]) set(ctx context.Context, id string, record T) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return err
	}

	exists, err := r.client.HExists(ctx, r.recordsKey, id).Result()
	if err != nil {
		return err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.recordsKey, id, raw)
		if !exists {
			pipe.RPush(ctx, r.orderKey, id)
		}
		return nil
	})
	return err
}

func (r *redisRecords[T]) replace(ctx context.Context, ids []string, records []T) error {
	values := make(map[string]any, len(ids))
	order := make([]any, 0, len(ids))
	for i, id := range ids {
		raw, err := json.Marshal(records[i])
		if err != nil {
			return err
		}
		if _, ok := values[id]; !ok {
			order = append(order, id)
		}
		values[id] = raw
	}

	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, r.recordsKey, r.orderKey)
		if len(order) > 0 {
			pipe.HSet(ctx, r.recordsKey, values)
			pipe.RPush(ctx, r.orderKey, order...)
		}
		return nil
	})
	return err
}

func (r *redisRecords[T]) all(ctx context.Context) ([]T, error) {
	ids, err := r.client.LRange(ctx, r.orderKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}

	records := make([]T, 0, len(ids))
	if len(ids) == 0 {
		return records, nil
	}

	raws, err := r.client.HMGet(ctx, r.recordsKey, ids...).Result()
	if err != nil {
		return nil, err
	}

	for i, raw := range raws {
		text, ok := raw.(string)
		if !ok {
			continue
		}
		var record T
		if err := json.Unmarshal([]byte(text), &record); err != nil {
			return nil, fmt.Errorf("failed to decode record %s: %w", ids[i], err)
		}
		records = append(records, record)
	}

	return records, nil
}

func (r *redisRecords[T]) get(ctx context.Context, id string) (*T, error) {
	raw, err := r.client.HGet(ctx, r.recordsKey, id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var record T
	if err := json.Unmarshal(raw, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record %s: %w", id, err)
	}
	return &record, nil
}

type RedisPlaylistStore struct {
	records *redisRecords[models.Playlist]
}

func NewRedisPlaylistStore(client *redis.Client) *RedisPlaylistStore {
	return &RedisPlaylistStore{records: newRedisRecords[models.Playlist](client, "bas:playlists")}
}

func (s *RedisPlaylistStore) Clear(ctx context.Context) error {
	if err := s.records.clear(ctx); err != nil {
		return fmt.Errorf("failed to clear playlists: %w", err)
	}
	return nil
}

func (s *RedisPlaylistStore) Set(ctx context.Context, id string, playlist models.Playlist) error {
	if err := s.records.set(ctx, id, clonePlaylist(playlist)); err != nil {
		return fmt.Errorf("failed to save playlist %s: %w", id, err)
	}
	return nil
}

func (s *RedisPlaylistStore) ReplacePlaylists(ctx context.Context, playlists []models.Playlist) error {
	ids := make([]string, len(playlists))
	records := make([]models.Playlist, len(playlists))
	for i, p := range playlists {
		ids[i] = p.ID
		records[i] = clonePlaylist(p)
	}

	if err := s.records.replace(ctx, ids, records); err != nil {
		return fmt.Errorf("failed to replace playlists: %w", err)
	}
	return nil
}

func (s *RedisPlaylistStore) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	playlists, err := s.records.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlists: %w", err)
	}
	return playlists, nil
}

func (s *RedisPlaylistStore) GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error) {
	playlist, err := s.records.get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %s: %w", id, err)
	}
	return playlist, nil
}

type RedisVideoStore struct {
	records *redisRecords[models.Video]
}

func NewRedisVideoStore(client *redis.Client) *RedisVideoStore {
	return &RedisVideoStore{records: newRedisRecords[models.Video](client, "bas:videos")}
}

func (s *RedisVideoStore) Clear(ctx context.Context) error {
	if err := s.records.clear(ctx); err != nil {
		return fmt.Errorf("failed to clear videos: %w", err)
	}
	return nil
}

func (s *RedisVideoStore) Set(ctx context.Context, id string, video models.Video) error {
	if err := s.records.set(ctx, id, video); err != nil {
		return fmt.Errorf("failed to save video %s: %w", id, err)
	}
	return nil
}

func (s *RedisVideoStore) ReplaceVideos(ctx context.Context, videos []models.Video) error {
	ids := make([]string, len(videos))
	for i, v := range videos {
		ids[i] = v.ID
	}

	if err := s.records.replace(ctx, ids, videos); err != nil {
		return fmt.Errorf("failed to replace videos: %w", err)
	}
	return nil
}

func (s *RedisVideoStore) GetVideos(ctx context.Context) ([]models.Video, error) {
	videos, err := s.records.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get videos: %w", err)
	}
	return videos, nil
}

func (s *RedisVideoStore) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.records.get(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get video %s: %w", id, err)
	}
	return video, nil
}
