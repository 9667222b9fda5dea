package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/XavierBriggs/laxstat/internal/middleware"
	"github.com/XavierBriggs/laxstat/internal/providers/laxapi"
	"github.com/XavierBriggs/laxstat/internal/selection"
	"github.com/XavierBriggs/laxstat/pkg/models"
	"github.com/XavierBriggs/laxstat/pkg/rowgroup"
)

const (
	// Upper bound on one handler's backend work, retries included
	backendTimeout = 30 * time.Second
	healthTimeout  = 2 * time.Second
)

// StatsBackend is the stats backend as the handlers see it
type StatsBackend interface {
	Games(ctx context.Context, f laxapi.Filter) ([]models.Game, error)
	Teams(ctx context.Context, f laxapi.Filter) ([]models.TeamSeasonRow, error)
	TeamNames(ctx context.Context, years []int) ([]string, error)
	Schedule(ctx context.Context) ([]models.ScheduledGame, error)
	Results(ctx context.Context) ([]models.Game, error)
	OpenCSV(ctx context.Context, d laxapi.Dataset, f laxapi.Filter) (*laxapi.CSVStream, error)
	Ping(ctx context.Context) error
}

// Handler serves the JSON API and the health check
type Handler struct {
	backend StatsBackend
	seasons selection.Defaults
}

// NewHandler creates a new handler with dependencies
func NewHandler(backend StatsBackend, seasons selection.Defaults) *Handler {
	return &Handler{
		backend: backend,
		seasons: seasons,
	}
}

// HealthCheck reports whether the stats backend answers
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.backend.Ping(ctx); err != nil {
		respondError(w, r, http.StatusServiceUnavailable, "stats backend unhealthy", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "laxstat-dashboard",
	})
}

// GetGames returns decoded game lines
// Query params: year (comma-separated), team
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	filter, err := h.parseFilter(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	games, err := h.backend.Games(ctx, filter)
	if err != nil {
		respondError(w, r, statusFor(err), "failed to retrieve games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"games": games,
		"count": len(games),
		"years": filter.Years,
		"team":  filter.Team,
	})
}

// GetTeams returns team season rows, each marked with whether its identity cell is shown
// Query params: year (comma-separated), team
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	filter, err := h.parseFilter(r)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	rows, err := h.backend.Teams(ctx, filter)
	if err != nil {
		respondError(w, r, statusFor(err), "failed to retrieve teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": rowgroup.Annotate(rows),
		"count": len(rows),
		"years": filter.Years,
		"team":  filter.Team,
	})
}

// GetTeamNames lists the teams playing in the requested seasons
// Query params: year (comma-separated)
func (h *Handler) GetTeamNames(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	years, err := selection.ParseYears(r.URL.Query().Get("year"), h.seasons)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error(), nil)
		return
	}

	names, err := h.backend.TeamNames(ctx, years)
	if err != nil {
		respondError(w, r, statusFor(err), "failed to retrieve team names", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"names": names,
		"count": len(names),
	})
}

// GetSchedule returns the games still to be played
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	schedule, err := h.backend.Schedule(ctx)
	if err != nil {
		respondError(w, r, statusFor(err), "failed to retrieve schedule", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"schedule": schedule,
		"count":    len(schedule),
	})
}

// GetResults returns the current season's results
func (h *Handler) GetResults(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	results, err := h.backend.Results(ctx)
	if err != nil {
		respondError(w, r, statusFor(err), "failed to retrieve results", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"results": results,
		"count":   len(results),
	})
}

// parseFilter reads the year list and team from the query string
func (h *Handler) parseFilter(r *http.Request) (laxapi.Filter, error) {
	years, err := selection.ParseYears(r.URL.Query().Get("year"), h.seasons)
	if err != nil {
		return laxapi.Filter{}, err
	}
	return laxapi.Filter{
		Years: years,
		Team:  strings.TrimSpace(r.URL.Query().Get("team")),
	}, nil
}

// statusFor maps a backend or selection error onto the status returned to the browser
func statusFor(err error) int {
	var invalid *selection.InvalidSelectionError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.Is(err, laxapi.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	errResp := models.ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}

	if err != nil {
		log.Error().
			Err(err).
			Str("request_id", middleware.GetRequestID(r.Context())).
			Int("status", status).
			Msg(message)
	}

	if err := json.NewEncoder(w).Encode(errResp); err != nil {
		log.Error().Err(err).Msg("error encoding error response")
	}
}
