package models

// Playlist is a channel playlist enriched with the IDs of its videos.
// VideoIDs is kept exactly as the API paged it and may disagree with
// ItemCount.
type Playlist struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	ItemCount   int64    `json:"itemCount"`
	PublishedAt string   `json:"publishedAt"`
	VideoIDs    []string `json:"videoIds"`
}
