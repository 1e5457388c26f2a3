package youtube

import (
	"context"
	"fmt"
	"log"

	"github.com/buildatscale/bas-server/internal/models"
	"google.golang.org/api/youtube/v3"
)

type VideoSink interface {
	Clear(ctx context.Context) error
	Set(ctx context.Context, id string, video models.Video) error
}

type VideoReplacer interface {
	ReplaceVideos(ctx context.Context, videos []models.Video) error
}

// VideoLoader loads a channel's most recent uploads, newest first.
type VideoLoader struct {
	client     *Client
	channelID  string
	maxResults int
	logger     *log.Logger
}

func NewVideoLoader(client *Client, channelID string, maxResults int, logger *log.Logger) *VideoLoader {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = client.logger
	}
	return &VideoLoader{
		client:     client,
		channelID:  channelID,
		maxResults: maxResults,
		logger:     logger,
	}
}

func (l *VideoLoader) Name() string {
	return "youtube-videos-loader"
}

func (l *VideoLoader) Load(ctx context.Context, sink VideoSink) ([]models.Video, error) {
	l.logger.Println("Fetching YouTube videos...")

	videos, err := l.FetchVideos(ctx)
	if err != nil {
		return nil, err
	}

	l.logger.Printf("Found %d videos", len(videos))

	if err := replaceVideos(ctx, sink, videos); err != nil {
		return nil, fmt.Errorf("failed to store videos: %w", err)
	}

	return videos, nil
}

// FetchVideos lists the channel's uploads playlist and resolves details
// for up to maxResults of its videos.
func (l *VideoLoader) FetchVideos(ctx context.Context) ([]models.Video, error) {
	uploadsID, err := l.client.UploadsPlaylistID(ctx, l.channelID)
	if err != nil {
		return nil, err
	}

	ids := l.client.collectVideoIDs(ctx, uploadsID, l.maxResults)
	if !ids.Complete() {
		l.logger.Printf("Uploads listing for %s stopped early with %d videos", l.channelID, len(ids.IDs))
	}

	return l.client.FetchVideos(ctx, ids.IDs)
}

// UploadsPlaylistID returns the ID of the playlist holding every upload of
// the channel.
func (c *Client) UploadsPlaylistID(ctx context.Context, channelID string) (string, error) {
	resp, err := c.service.Channels.List([]string{"contentDetails"}).
		Id(channelID).
		Context(ctx).
		Do()
	if err != nil {
		apiErr := newAPIError("channels", err)
		c.logger.Printf("Failed to fetch channel %s: %s", channelID, apiErr.Body)
		return "", apiErr
	}

	if len(resp.Items) == 0 {
		return "", fmt.Errorf("%w: %s", ErrChannelNotFound, channelID)
	}

	details := resp.Items[0].ContentDetails
	if details == nil || details.RelatedPlaylists == nil || details.RelatedPlaylists.Uploads == "" {
		return "", fmt.Errorf("%w: %s has no uploads playlist", ErrChannelNotFound, channelID)
	}

	return details.RelatedPlaylists.Uploads, nil
}

// FetchVideos resolves snippet, duration and statistics for the given IDs
// in batches of 50. IDs the API does not return (private or deleted
// videos) are dropped; the rest keep the order of ids.
func (c *Client) FetchVideos(ctx context.Context, ids []string) ([]models.Video, error) {
	videos := make([]models.Video, 0, len(ids))

	for start := 0; start < len(ids); start += maxPageSize {
		end := min(start+maxPageSize, len(ids))
		batch := ids[start:end]

		resp, err := c.service.Videos.List([]string{"snippet", "contentDetails", "statistics"}).
			Id(batch...).
			Context(ctx).
			Do()
		if err != nil {
			apiErr := newAPIError("videos", err)
			c.logger.Printf("Failed to fetch videos: %s", apiErr.Body)
			return nil, apiErr
		}

		byID := make(map[string]*youtube.Video, len(resp.Items))
		for _, item := range resp.Items {
			byID[item.Id] = item
		}

		for _, id := range batch {
			if item, ok := byID[id]; ok {
				videos = append(videos, newVideo(item))
			}
		}
	}

	return videos, nil
}

func newVideo(item *youtube.Video) models.Video {
	video := models.Video{ID: item.Id}

	if item.Snippet != nil {
		video.Title = item.Snippet.Title
		video.Description = item.Snippet.Description
		video.PublishedAt = item.Snippet.PublishedAt
		video.Thumbnail = BestThumbnail(item.Snippet.Thumbnails)
	}
	if item.ContentDetails != nil {
		video.Duration = item.ContentDetails.Duration
	}
	if item.Statistics != nil {
		video.ViewCount = item.Statistics.ViewCount
		video.LikeCount = item.Statistics.LikeCount
		video.CommentCount = item.Statistics.CommentCount
	}

	return video
}

func replaceVideos(ctx context.Context, sink VideoSink, videos []models.Video) error {
	if replacer, ok := sink.(VideoReplacer); ok {
		return replacer.ReplaceVideos(ctx, videos)
	}

	if err := sink.Clear(ctx); err != nil {
		return err
	}
	for _, video := range videos {
		if err := sink.Set(ctx, video.ID, video); err != nil {
			return err
		}
	}
	return nil
}
