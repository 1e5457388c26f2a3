package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/buildatscale/bas-server/internal/models"
	"github.com/buildatscale/bas-server/internal/store"
	"github.com/buildatscale/bas-server/internal/utils"
	"github.com/go-chi/chi/v5"
)

type PlaylistHandler struct {
	PlaylistStore store.PlaylistStore
	Logger        *log.Logger
}

func NewPlaylistHandler(playlistStore store.PlaylistStore, logger *log.Logger) *PlaylistHandler {
	return &PlaylistHandler{
		PlaylistStore: playlistStore,
		Logger:        logger,
	}
}

type PlaylistResponse struct {
	models.Playlist
	VideoCount   int    `json:"videoCount"`
	PublishedAgo string `json:"publishedAgo"`
}

func newPlaylistResponse(p models.Playlist) PlaylistResponse {
	return PlaylistResponse{
		Playlist:     p,
		VideoCount:   len(p.VideoIDs),
		PublishedAgo: utils.TimeAgoString(p.PublishedAt),
	}
}

func (ph *PlaylistHandler) HandlerGetPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := ph.PlaylistStore.GetPlaylists(r.Context())
	if err != nil {
		ph.Logger.Printf("Error getting playlists from store: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	response := make([]PlaylistResponse, len(playlists))
	for i, p := range playlists {
		response[i] = newPlaylistResponse(p)
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": response})
}

func (ph *PlaylistHandler) HandlerGetPlaylistByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		ph.Logger.Println("Error: id parameter is missing")
		utils.WriteJSON(w, http.StatusBadRequest, utils.Envelope{"message": "Bad Request"})
		return
	}

	playlist, err := ph.PlaylistStore.GetPlaylistByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.Envelope{"message": "Not Found"})
		return
	}
	if err != nil {
		ph.Logger.Printf("Error getting playlist %s from store: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": newPlaylistResponse(*playlist)})
}
