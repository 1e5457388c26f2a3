package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/buildatscale/bas-server/internal/models"
)

type PostgresVideoStore struct {
	db *sql.DB
}

func NewPostgresVideoStore(db *sql.DB) *PostgresVideoStore {
	if db == nil {
		panic("db cannot be nil for PostgresVideoStore")
	}
	return &PostgresVideoStore{db: db}
}

func (pg *PostgresVideoStore) Clear(ctx context.Context) error {
	if _, err := pg.db.ExecContext(ctx, `DELETE FROM videos`); err != nil {
		return fmt.Errorf("failed to clear videos: %w", err)
	}
	return nil
}

func (pg *PostgresVideoStore) Set(ctx context.Context, id string, video models.Video) error {
	query := `
		INSERT INTO videos (id, position, title, description, thumbnail, published_at, duration, view_count, like_count, comment_count)
		VALUES ($1, COALESCE((SELECT MAX(position) + 1 FROM videos), 0), $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail = EXCLUDED.thumbnail,
			published_at = EXCLUDED.published_at,
			duration = EXCLUDED.duration,
			view_count = EXCLUDED.view_count,
			like_count = EXCLUDED.like_count,
			comment_count = EXCLUDED.comment_count,
			updated_at = NOW()
	`

	_, err := pg.db.ExecContext(ctx, query,
		id,
		video.Title,
		video.Description,
		video.Thumbnail,
		video.PublishedAt,
		video.Duration,
		int64(video.ViewCount),
		int64(video.LikeCount),
		int64(video.CommentCount),
	)
	if err != nil {
		return fmt.Errorf("failed to save video %s: %w", id, err)
	}
	return nil
}

func (pg *PostgresVideoStore) ReplaceVideos(ctx context.Context, videos []models.Video) error {
	tx, err := pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM videos`); err != nil {
		return fmt.Errorf("failed to clear videos: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO videos (id, position, title, description, thumbnail, published_at, duration, view_count, like_count, comment_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail = EXCLUDED.thumbnail,
			published_at = EXCLUDED.published_at,
			duration = EXCLUDED.duration,
			view_count = EXCLUDED.view_count,
			like_count = EXCLUDED.like_count,
			comment_count = EXCLUDED.comment_count
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare video insert: %w", err)
	}
	defer stmt.Close()

	for i, video := range videos {
		_, err := stmt.ExecContext(ctx,
			video.ID,
			i,
			video.Title,
			video.Description,
			video.Thumbnail,
			video.PublishedAt,
			video.Duration,
			int64(video.ViewCount),
			int64(video.LikeCount),
			int64(video.CommentCount),
		)
		if err != nil {
			return fmt.Errorf("failed to insert video %s: %w", video.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (pg *PostgresVideoStore) GetVideos(ctx context.Context) ([]models.Video, error) {
	rows, err := pg.db.QueryContext(ctx, `
		SELECT id, title, description, thumbnail, published_at, duration, view_count, like_count, comment_count
		FROM videos
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get videos: %w", err)
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over video rows: %w", err)
	}

	return videos, nil
}

func (pg *PostgresVideoStore) GetVideoByID(ctx context.Context, id string) (*models.Video, error) {
	row := pg.db.QueryRowContext(ctx, `
		SELECT id, title, description, thumbnail, published_at, duration, view_count, like_count, comment_count
		FROM videos
		WHERE id = $1
	`, id)

	video, err := scanVideo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return video, err
}

func scanVideo(row rowScanner) (*models.Video, error) {
	var video models.Video
	var views, likes, comments int64

	err := row.Scan(
		&video.ID,
		&video.Title,
		&video.Description,
		&video.Thumbnail,
		&video.PublishedAt,
		&video.Duration,
		&views,
		&likes,
		&comments,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan video: %w", err)
	}

	video.ViewCount = uint64(views)
	video.LikeCount = uint64(likes)
	video.CommentCount = uint64(comments)

	return &video, nil
}
