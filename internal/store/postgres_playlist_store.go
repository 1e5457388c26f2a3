package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/buildatscale/bas-server/internal/models"
)

type PostgresPlaylistStore struct {
	db *sql.DB
}

func NewPostgresPlaylistStore(db *sql.DB) *PostgresPlaylistStore {
	if db == nil {
		panic("db cannot be nil for PostgresPlaylistStore")
	}
	return &PostgresPlaylistStore{db: db}
}

const upsertPlaylistQuery = `
	INSERT INTO playlists (id, position, title, description, thumbnail, item_count, published_at, video_ids)
	VALUES ($1, COALESCE((SELECT MAX(position) + 1 FROM playlists), 0), $2, $3, $4, $5, $6, $7::jsonb)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		description = EXCLUDED.description,
		thumbnail = EXCLUDED.thumbnail,
		item_count = EXCLUDED.item_count,
		published_at = EXCLUDED.published_at,
		video_ids = EXCLUDED.video_ids,
		updated_at = NOW()
`

func (pg *PostgresPlaylistStore) Clear(ctx context.Context) error {
	if _, err := pg.db.ExecContext(ctx, `DELETE FROM playlists`); err != nil {
		return fmt.Errorf("failed to clear playlists: %w", err)
	}
	return nil
}

func (pg *PostgresPlaylistStore) Set(ctx context.Context, id string, playlist models.Playlist) error {
	videoIDs, err := encodeVideoIDs(playlist.VideoIDs)
	if err != nil {
		return err
	}

	_, err = pg.db.ExecContext(ctx, upsertPlaylistQuery,
		id,
		playlist.Title,
		playlist.Description,
		playlist.Thumbnail,
		playlist.ItemCount,
		playlist.PublishedAt,
		videoIDs,
	)
	if err != nil {
		return fmt.Errorf("failed to save playlist %s: %w", id, err)
	}
	return nil
}

// ReplacePlaylists swaps the table contents inside one transaction, so
// readers see either the previous or the new set.
func (pg *PostgresPlaylistStore) ReplacePlaylists(ctx context.Context, playlists []models.Playlist) error {
	tx, err := pg.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM playlists`); err != nil {
		return fmt.Errorf("failed to clear playlists: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO playlists (id, position, title, description, thumbnail, item_count, published_at, video_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			thumbnail = EXCLUDED.thumbnail,
			item_count = EXCLUDED.item_count,
			published_at = EXCLUDED.published_at,
			video_ids = EXCLUDED.video_ids
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare playlist insert: %w", err)
	}
	defer stmt.Close()

	for i, playlist := range playlists {
		videoIDs, err := encodeVideoIDs(playlist.VideoIDs)
		if err != nil {
			return err
		}

		_, err = stmt.ExecContext(ctx,
			playlist.ID,
			i,
			playlist.Title,
			playlist.Description,
			playlist.Thumbnail,
			playlist.ItemCount,
			playlist.PublishedAt,
			videoIDs,
		)
		if err != nil {
			return fmt.Errorf("failed to insert playlist %s: %w", playlist.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (pg *PostgresPlaylistStore) GetPlaylists(ctx context.Context) ([]models.Playlist, error) {
	rows, err := pg.db.QueryContext(ctx, `
		SELECT id, title, description, thumbnail, item_count, published_at, video_ids
		FROM playlists
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get playlists: %w", err)
	}
	defer rows.Close()

	playlists := []models.Playlist{}
	for rows.Next() {
		playlist, err := scanPlaylist(rows)
		if err != nil {
			return nil, err
		}
		playlists = append(playlists, *playlist)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over playlist rows: %w", err)
	}

	return playlists, nil
}

func (pg *PostgresPlaylistStore) GetPlaylistByID(ctx context.Context, id string) (*models.Playlist, error) {
	row := pg.db.QueryRowContext(ctx, `
		SELECT id, title, description, thumbnail, item_count, published_at, video_ids
		FROM playlists
		WHERE id = $1
	`, id)

	playlist, err := scanPlaylist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return playlist, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPlaylist(row rowScanner) (*models.Playlist, error) {
	var playlist models.Playlist
	var videoIDs []byte

	err := row.Scan(
		&playlist.ID,
		&playlist.Title,
		&playlist.Description,
		&playlist.Thumbnail,
		&playlist.ItemCount,
		&playlist.PublishedAt,
		&videoIDs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan playlist: %w", err)
	}

	playlist.VideoIDs = []string{}
	if len(videoIDs) > 0 {
		if err := json.Unmarshal(videoIDs, &playlist.VideoIDs); err != nil {
			return nil, fmt.Errorf("failed to decode video ids of %s: %w", playlist.ID, err)
		}
	}

	return &playlist, nil
}

func encodeVideoIDs(ids []string) (string, error) {
	if ids == nil {
		ids = []string{}
	}
	raw, err := json.Marshal(ids)
	if err != nil {
		return "", fmt.Errorf("failed to encode video ids: %w", err)
	}
	return string(raw), nil
}
