package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/youtube/v3"
)

// fakeAPI serves the subset of the Data API the loaders use. Page tokens
// are the decimal offset of the next item.
type fakeAPI struct {
	mu sync.Mutex

	playlists     []*youtube.Playlist
	playlistItems map[string][]string
	uploads       map[string]string
	videos        map[string]*youtube.Video

	// failPlaylistsPage and failItemsPage hold 1-based page numbers that
	// answer with a 403.
	failPlaylistsPage int
	failItemsPage     map[string]int
	failVideos        bool

	requests map[string]int
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		playlistItems: map[string][]string{},
		uploads:       map[string]string{},
		videos:        map[string]*youtube.Video{},
		failItemsPage: map[string]int{},
		requests:      map[string]int{},
	}
}

func (f *fakeAPI) count(endpoint string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[endpoint]
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	endpoint := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	f.requests[endpoint]++
	q := r.URL.Query()

	switch endpoint {
	case "playlists":
		offset, size := pageWindow(q.Get("pageToken"), q.Get("maxResults"))
		if f.failPlaylistsPage > 0 && offset/size+1 == f.failPlaylistsPage {
			writeAPIError(w, http.StatusForbidden, "quotaExceeded")
			return
		}
		items, next := window(len(f.playlists), offset, size)
		resp := &youtube.PlaylistListResponse{NextPageToken: next}
		for i := items[0]; i < items[1]; i++ {
			resp.Items = append(resp.Items, f.playlists[i])
		}
		writeJSON(w, resp)

	case "playlistItems":
		playlistID := q.Get("playlistId")
		offset, size := pageWindow(q.Get("pageToken"), q.Get("maxResults"))
		if page := f.failItemsPage[playlistID]; page > 0 && offset/size+1 == page {
			writeAPIError(w, http.StatusForbidden, "playlistItemsNotAccessible")
			return
		}
		ids := f.playlistItems[playlistID]
		items, next := window(len(ids), offset, size)
		resp := &youtube.PlaylistItemListResponse{NextPageToken: next}
		for i := items[0]; i < items[1]; i++ {
			item := &youtube.PlaylistItem{Id: "item-" + ids[i]}
			if ids[i] != "" {
				item.Snippet = &youtube.PlaylistItemSnippet{
					ResourceId: &youtube.ResourceId{Kind: "youtube#video", VideoId: ids[i]},
				}
			}
			resp.Items = append(resp.Items, item)
		}
		writeJSON(w, resp)

	case "channels":
		resp := &youtube.ChannelListResponse{}
		if uploads, ok := f.uploads[q.Get("id")]; ok {
			resp.Items = []*youtube.Channel{{
				Id: q.Get("id"),
				ContentDetails: &youtube.ChannelContentDetails{
					RelatedPlaylists: &youtube.ChannelContentDetailsRelatedPlaylists{Uploads: uploads},
				},
			}}
		}
		writeJSON(w, resp)

	case "videos":
		if f.failVideos {
			writeAPIError(w, http.StatusInternalServerError, "backendError")
			return
		}
		resp := &youtube.VideoListResponse{}
		for _, id := range strings.Split(strings.Join(q["id"], ","), ",") {
			if video, ok := f.videos[id]; ok {
				resp.Items = append(resp.Items, video)
			}
		}
		writeJSON(w, resp)

	default:
		http.NotFound(w, r)
	}
}

func pageWindow(token, maxResults string) (offset, size int) {
	offset, _ = strconv.Atoi(token)
	size, _ = strconv.Atoi(maxResults)
	if size <= 0 {
		size = 5
	}
	return offset, size
}

func window(total, offset, size int) ([2]int, string) {
	end := min(offset+size, total)
	if offset > total {
		offset = total
	}
	next := ""
	if end < total {
		next = strconv.Itoa(end)
	}
	return [2]int{offset, end}, next
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func writeAPIError(w http.ResponseWriter, status int, reason string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	fmt.Fprintf(w, `{"error":{"code":%d,"message":"%s","errors":[{"reason":"%s"}]}}`, status, reason, reason)
}

// newTestClient points a real Data API client at api.
func newTestClient(t *testing.T, api *fakeAPI) (*Client, *bytes.Buffer) {
	t.Helper()

	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	service, err := youtube.NewService(context.Background(),
		option.WithHTTPClient(srv.Client()),
		option.WithEndpoint(srv.URL+"/"),
	)
	require.NoError(t, err)

	var logs bytes.Buffer
	return newClient(service, log.New(&logs, "", 0)), &logs
}

func videoIDs(prefix string, n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("%s-%03d", prefix, i)
	}
	return ids
}

func testPlaylist(id string, itemCount int64) *youtube.Playlist {
	return &youtube.Playlist{
		Id: id,
		Snippet: &youtube.PlaylistSnippet{
			Title:       "Title " + id,
			Description: "Description " + id,
			PublishedAt: "2024-03-01T10:00:00Z",
			Thumbnails: &youtube.ThumbnailDetails{
				Default: &youtube.Thumbnail{Url: "https://i.ytimg.com/" + id + "/default.jpg"},
				High:    &youtube.Thumbnail{Url: "https://i.ytimg.com/" + id + "/hqdefault.jpg"},
			},
		},
		ContentDetails: &youtube.PlaylistContentDetails{ItemCount: itemCount},
	}
}
