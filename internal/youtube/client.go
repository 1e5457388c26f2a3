// Package youtube reads channel playlists and videos from the YouTube Data
// API v3 and hands them to a store with replace-all semantics.
package youtube

import (
	"context"
	"fmt"
	"io"
	"log"

	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// maxPageSize is the largest maxResults the Data API accepts.
const maxPageSize = 50

// DefaultMaxResults caps a loader when no maximum is configured.
const DefaultMaxResults = 50

// Client wraps the Data API service. The API key it was built with is the
// only credential used.
type Client struct {
	service *youtube.Service
	logger  *log.Logger
}

func NewClient(ctx context.Context, apiKey string, logger *log.Logger, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create youtube service: %w", err)
	}

	return newClient(service, logger), nil
}

func newClient(service *youtube.Service, logger *log.Logger) *Client {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Client{service: service, logger: logger}
}

// BestThumbnail picks the highest resolution thumbnail available, in the
// order maxres, standard, high, medium, default.
func BestThumbnail(details *youtube.ThumbnailDetails) string {
	if details == nil {
		return ""
	}

	for _, thumb := range []*youtube.Thumbnail{
		details.Maxres,
		details.Standard,
		details.High,
		details.Medium,
		details.Default,
	} {
		if thumb != nil && thumb.Url != "" {
			return thumb.Url
		}
	}
	return ""
}

func pageSize(maxResults int) int64 {
	if maxResults <= 0 || maxResults > maxPageSize {
		return maxPageSize
	}
	return int64(maxResults)
}
