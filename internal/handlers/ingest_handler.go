package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/buildatscale/bas-server/internal/services"
	"github.com/buildatscale/bas-server/internal/utils"
	"github.com/buildatscale/bas-server/internal/youtube"
)

type IngestRunner interface {
	Run(ctx context.Context) (*services.IngestReport, error)
	LastReport() *services.IngestReport
}

type IngestHandler struct {
	Ingester IngestRunner
	Logger   *log.Logger
}

func NewIngestHandler(ingester IngestRunner, logger *log.Logger) *IngestHandler {
	return &IngestHandler{
		Ingester: ingester,
		Logger:   logger,
	}
}

func (ih *IngestHandler) HandlerRunIngest(w http.ResponseWriter, r *http.Request) {
	report, err := ih.Ingester.Run(r.Context())
	if err != nil {
		var apiErr *youtube.APIError

		switch {
		case errors.Is(err, services.ErrIngestInProgress):
			utils.WriteJSON(w, http.StatusConflict, utils.Envelope{"message": "Ingestion already in progress"})
		case errors.As(err, &apiErr):
			ih.Logger.Printf("Error running ingestion: %v", err)
			utils.WriteJSON(w, http.StatusBadGateway, utils.Envelope{"error": apiErr.Error()})
		default:
			ih.Logger.Printf("Error running ingestion: %v", err)
			utils.WriteJSON(w, http.StatusInternalServerError, utils.Envelope{"message": "Internal Server Error"})
		}
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": report})
}

func (ih *IngestHandler) HandlerGetLastIngest(w http.ResponseWriter, r *http.Request) {
	report := ih.Ingester.LastReport()
	if report == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.Envelope{"message": "No ingestion has completed yet"})
		return
	}

	utils.WriteJSON(w, http.StatusOK, utils.Envelope{"data": report})
}
