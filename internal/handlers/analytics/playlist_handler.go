package analytics

import (
	"log"
	"net/http"

	"github.com/buildatscale/bas-server/internal/store/analytics"
	"github.com/buildatscale/bas-server/internal/utils"
	"github.com/go-chi/chi/v5"
)

type AnalyticsPlaylistHandler struct {
	AnalyticsPlaylistStore analytics.AnalyticsPlaylistStore
	Logger                 *log.Logger
}

// NewAnalyticsPlaylistHandler accepts a nil store when ClickHouse is not
// configured; requests then get a 503.
func NewAnalyticsPlaylistHandler(analyticsPlaylistStore analytics.AnalyticsPlaylistStore, logger *log.Logger) *AnalyticsPlaylistHandler {
	return &AnalyticsPlaylistHandler{
		AnalyticsPlaylistStore: analyticsPlaylistStore,
		Logger:                 logger,
	}
}

func (ah *AnalyticsPlaylistHandler) HandlerGetPlaylistAnalyticsByID(w http.ResponseWriter, r *http.Request) {
	if ah.AnalyticsPlaylistStore == nil {
		utils.WriteJSON(w, http.StatusServiceUnavailable, utils.Envelope{"message": "Analytics not configured"})
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		ah.Logger.Println("Error: id parameter is missing")
		utils.WriteJSON(w, http.StatusBadRequest, utils.Envelope{"message": "Bad Request"})
		return
	}

	response, err := ah.AnalyticsPlaylistStore.GetPlaylistSnapshotsByID(r.Context(), id)
	if err != nil {
		ah.Logger.Println("Error getting playlist analytics from store", err)
		utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": response})
}
