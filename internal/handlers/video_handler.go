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

type ShortsFilter string

const (
	ShortsInclude ShortsFilter = "include"
	ShortsExclude ShortsFilter = "exclude"
	ShortsOnly    ShortsFilter = "only"
)

type VideoHandler struct {
	VideoStore store.VideoStore
	Logger     *log.Logger
}

func NewVideoHandler(videoStore store.VideoStore, logger *log.Logger) *VideoHandler {
	return &VideoHandler{
		VideoStore: videoStore,
		Logger:     logger,
	}
}

type VideoResponse struct {
	models.Video
	DurationText string `json:"durationText"`
	Views        string `json:"views"`
	Likes        string `json:"likes"`
	PublishedAgo string `json:"publishedAgo"`
	IsShort      bool   `json:"isShort"`
}

func newVideoResponse(v models.Video) VideoResponse {
	return VideoResponse{
		Video:        v,
		DurationText: utils.FormatDuration(v.Duration),
		Views:        utils.FormatViews(v.ViewCount),
		Likes:        utils.FormatLikes(v.LikeCount),
		PublishedAgo: utils.TimeAgoString(v.PublishedAt),
		IsShort:      utils.IsShortForm(v.Duration),
	}
}

func (vh *VideoHandler) HandlerGetVideos(w http.ResponseWriter, r *http.Request) {
	filter := ShortsFilter(r.URL.Query().Get("shorts"))
	switch filter {
	case "":
		filter = ShortsInclude
	case ShortsInclude, ShortsExclude, ShortsOnly:
	default:
		vh.Logger.Printf("Error: invalid shorts parameter '%s'", filter)
		utils.WriteJSON(w, http.StatusBadRequest, utils.Envelope{"message": "Bad Request"})
		return
	}

	videos, err := vh.VideoStore.GetVideos(r.Context())
	if err != nil {
		vh.Logger.Printf("Error getting videos from store: %v", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	response := make([]VideoResponse, 0, len(videos))
	for _, v := range videos {
		item := newVideoResponse(v)
		if filter == ShortsExclude && item.IsShort {
			continue
		}
		if filter == ShortsOnly && !item.IsShort {
			continue
		}
		response = append(response, item)
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": response})
}

func (vh *VideoHandler) HandlerGetVideoByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		vh.Logger.Println("Error: id parameter is missing")
		utils.WriteJSON(w, http.StatusBadRequest, utils.Envelope{"message": "Bad Request"})
		return
	}

	video, err := vh.VideoStore.GetVideoByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		utils.WriteJSON(w, http.StatusNotFound, utils.Envelope{"message": "Not Found"})
		return
	}
	if err != nil {
		vh.Logger.Printf("Error getting video %s from store: %v", id, err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": newVideoResponse(*video)})
}
