package youtube

import "context"

// VideoIDList is the outcome of walking a playlist's items. A failed page
// ends the walk without discarding earlier pages: IDs holds everything
// collected and Err records why the walk stopped early.
type VideoIDList struct {
	IDs []string
	Err error
}

// Complete reports whether every page was read.
func (l VideoIDList) Complete() bool {
	return l.Err == nil
}

// FetchPlaylistVideoIDs returns the IDs of every video in the playlist in
// playlist order. It never fails outright; see VideoIDList.
func (c *Client) FetchPlaylistVideoIDs(ctx context.Context, playlistID string) VideoIDList {
	return c.collectVideoIDs(ctx, playlistID, 0)
}

// collectVideoIDs stops once limit IDs are collected. limit <= 0 reads
// the whole playlist.
func (c *Client) collectVideoIDs(ctx context.Context, playlistID string, limit int) VideoIDList {
	var result VideoIDList
	pageToken := ""

	for {
		call := c.service.PlaylistItems.List([]string{"snippet"}).
			PlaylistId(playlistID).
			MaxResults(maxPageSize).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		if err != nil {
			apiErr := newAPIError("playlistItems", err)
			c.logger.Printf("Failed to fetch playlist items for %s: %s", playlistID, apiErr.Body)
			result.Err = apiErr
			return result
		}

		for _, item := range resp.Items {
			if item.Snippet == nil || item.Snippet.ResourceId == nil || item.Snippet.ResourceId.VideoId == "" {
				continue
			}
			result.IDs = append(result.IDs, item.Snippet.ResourceId.VideoId)
		}

		if limit > 0 && len(result.IDs) >= limit {
			result.IDs = result.IDs[:limit]
			return result
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return result
		}
	}
}
