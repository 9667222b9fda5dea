package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/XavierBriggs/laxstat/internal/middleware"
	"github.com/XavierBriggs/laxstat/internal/providers/laxapi"
	"github.com/XavierBriggs/laxstat/internal/selection"
)

// ExportHandler streams CSV exports from the stats backend to the browser
type ExportHandler struct {
	backend StatsBackend
	seasons selection.Defaults
}

// NewExportHandler creates a new export handler
func NewExportHandler(backend StatsBackend, seasons selection.Defaults) *ExportHandler {
	return &ExportHandler{
		backend: backend,
		seasons: seasons,
	}
}

// ExportGames downloads games.csv for the selected season and team
func (h *ExportHandler) ExportGames(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, laxapi.DatasetGames)
}

// ExportTeams downloads teams.csv for the selected season and team
func (h *ExportHandler) ExportTeams(w http.ResponseWriter, r *http.Request) {
	h.export(w, r, laxapi.DatasetTeams)
}

func (h *ExportHandler) export(w http.ResponseWriter, r *http.Request, dataset laxapi.Dataset) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	sel, err := selection.FromQuery(r.URL.Query(), h.seasons)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	stream, err := h.backend.OpenCSV(ctx, dataset, sel.Filter())
	if err != nil {
		respondError(w, r, statusFor(err), fmt.Sprintf("failed to export %s", dataset), err)
		return
	}
	defer stream.Close()

	w.Header().Set("Content-Type", stream.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", stream.Filename()))
	if stream.ContentLength >= 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(stream.ContentLength, 10))
	}
	w.WriteHeader(http.StatusOK)

	// Headers are gone; a failure now can only be logged
	n, err := io.Copy(w, stream.Body)
	if err != nil {
		log.Warn().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Str("dataset", string(dataset)).
			Int64("bytes", n).
			Msg("csv export interrupted")
	}
}
