package youtube

import (
	"context"
	"fmt"
	"log"

	"github.com/buildatscale/bas-server/internal/models"
	"google.golang.org/api/youtube/v3"
)

// PlaylistSink receives the result of a playlist load. Its previous
// contents are cleared before the new playlists are written.
type PlaylistSink interface {
	Clear(ctx context.Context) error
	Set(ctx context.Context, id string, playlist models.Playlist) error
}

// PlaylistReplacer is implemented by sinks that can swap their whole
// contents in one step. Loaders prefer it over Clear followed by Set.
type PlaylistReplacer interface {
	ReplacePlaylists(ctx context.Context, playlists []models.Playlist) error
}

type PlaylistLoader struct {
	client     *Client
	channelID  string
	maxResults int
	logger     *log.Logger
}

func NewPlaylistLoader(client *Client, channelID string, maxResults int, logger *log.Logger) *PlaylistLoader {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = client.logger
	}
	return &PlaylistLoader{
		client:     client,
		channelID:  channelID,
		maxResults: maxResults,
		logger:     logger,
	}
}

func (l *PlaylistLoader) Name() string {
	return "youtube-playlists-loader"
}

// Load fetches the channel's playlists and replaces the sink's contents
// with them. The sink is left untouched when fetching fails.
func (l *PlaylistLoader) Load(ctx context.Context, sink PlaylistSink) ([]models.Playlist, error) {
	l.logger.Println("Fetching YouTube playlists...")

	playlists, err := l.FetchPlaylists(ctx)
	if err != nil {
		return nil, err
	}

	l.logger.Printf("Found %d playlists", len(playlists))

	if err := replacePlaylists(ctx, sink, playlists); err != nil {
		return nil, fmt.Errorf("failed to store playlists: %w", err)
	}

	return playlists, nil
}

// FetchPlaylists pages through the channel's playlists, one request at a
// time, resolving each playlist's video IDs before moving on. At most
// maxResults playlists are returned.
func (l *PlaylistLoader) FetchPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var playlists []models.Playlist
	pageToken := ""

	for {
		call := l.client.service.Playlists.List([]string{"snippet", "contentDetails"}).
			ChannelId(l.channelID).
			MaxResults(pageSize(l.maxResults)).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			apiErr := newAPIError("playlists", err)
			l.logger.Printf("Failed to fetch playlists: %s", apiErr.Body)
			return nil, apiErr
		}

		for _, item := range resp.Items {
			if len(playlists) >= l.maxResults {
				break
			}
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			videoIDs := l.client.FetchPlaylistVideoIDs(ctx, item.Id)
			playlists = append(playlists, newPlaylist(item, videoIDs.IDs))
		}

		pageToken = resp.NextPageToken
		if len(playlists) >= l.maxResults || pageToken == "" {
			break
		}
	}

	return playlists, nil
}

func newPlaylist(item *youtube.Playlist, videoIDs []string) models.Playlist {
	playlist := models.Playlist{
		ID:       item.Id,
		VideoIDs: videoIDs,
	}
	if playlist.VideoIDs == nil {
		playlist.VideoIDs = []string{}
	}

	if item.Snippet != nil {
		playlist.Title = item.Snippet.Title
		playlist.Description = item.Snippet.Description
		playlist.PublishedAt = item.Snippet.PublishedAt
		playlist.Thumbnail = BestThumbnail(item.Snippet.Thumbnails)
	}
	if item.ContentDetails != nil {
		playlist.ItemCount = item.ContentDetails.ItemCount
	}

	return playlist
}

func replacePlaylists(ctx context.Context, sink PlaylistSink, playlists []models.Playlist) error {
	if replacer, ok := sink.(PlaylistReplacer); ok {
		return replacer.ReplacePlaylists(ctx, playlists)
	}

	if err := sink.Clear(ctx); err != nil {
		return err
	}
	for _, playlist := range playlists {
		if err := sink.Set(ctx, playlist.ID, playlist); err != nil {
			return err
		}
	}
	return nil
}
