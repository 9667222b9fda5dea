package handlers

import (
	"bytes"
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/XavierBriggs/laxstat/internal/charts"
	"github.com/XavierBriggs/laxstat/internal/middleware"
	"github.com/XavierBriggs/laxstat/internal/providers/laxapi"
	"github.com/XavierBriggs/laxstat/internal/selection"
	"github.com/XavierBriggs/laxstat/internal/teamdir"
	"github.com/XavierBriggs/laxstat/internal/views"
	"github.com/XavierBriggs/laxstat/pkg/rowgroup"
)

// PageHandler serves the HTML dashboard
type PageHandler struct {
	backend  StatsBackend
	renderer *views.Renderer
	teams    *teamdir.Directory
	seasons  selection.Defaults
}

// NewPageHandler creates a new page handler
func NewPageHandler(backend StatsBackend, renderer *views.Renderer, teams *teamdir.Directory, seasons selection.Defaults) *PageHandler {
	return &PageHandler{
		backend:  backend,
		renderer: renderer,
		teams:    teams,
		seasons:  seasons,
	}
}

// Home shows the upcoming schedule and recent results.
// A failing section renders its empty state instead of failing the page.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	page := views.Page{
		Title:     "Home",
		Nav:       views.PageHome,
		Path:      "/",
		Selection: selection.Initial(h.seasons),
	}

	schedule, scheduleErr := h.backend.Schedule(ctx)
	if scheduleErr != nil {
		h.logFailure(r, scheduleErr, "failed to retrieve schedule")
	}
	results, resultsErr := h.backend.Results(ctx)
	if resultsErr != nil {
		h.logFailure(r, resultsErr, "failed to retrieve results")
	}

	if scheduleErr != nil && resultsErr != nil {
		h.renderError(w, r, statusFor(resultsErr), "The stats backend is unavailable. Try again shortly.")
		return
	}

	page.Schedule = schedule
	page.Results = results
	h.render(w, r, http.StatusOK, views.PageHome, page)
}

// Teams shows cumulative team statistics for the selected season
func (h *PageHandler) Teams(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	sel, ok := h.selection(w, r)
	if !ok {
		return
	}

	rows, err := h.backend.Teams(ctx, sel.Filter())
	if err != nil {
		h.logFailure(r, err, "failed to retrieve teams")
		h.renderError(w, r, statusFor(err), failureMessage(err, sel))
		return
	}

	page := h.filteredPage(ctx, r, sel, "Teams", views.PageTeams, "/teams")
	page.CSVURL = views.Link("/teams/csv", sel)
	page.Teams = rowgroup.Annotate(rows)

	h.render(w, r, http.StatusOK, views.PageTeams, page)
}

// Games shows game-by-game statistics for the selected season and team
func (h *PageHandler) Games(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	sel, ok := h.selection(w, r)
	if !ok {
		return
	}

	games, err := h.backend.Games(ctx, sel.Filter())
	if err != nil {
		h.logFailure(r, err, "failed to retrieve games")
		h.renderError(w, r, statusFor(err), failureMessage(err, sel))
		return
	}

	page := h.filteredPage(ctx, r, sel, "Games", views.PageGames, "/games")
	page.CSVURL = views.Link("/games/csv", sel)
	page.Games = games
	if !sel.AllTeams() && len(games) > 0 {
		page.ChartURL = views.Link("/games/chart", sel)
	}

	h.render(w, r, http.StatusOK, views.PageGames, page)
}

// GameChart renders the selected team's season as a standalone chart page
func (h *PageHandler) GameChart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), backendTimeout)
	defer cancel()

	sel, ok := h.selection(w, r)
	if !ok {
		return
	}
	if sel.AllTeams() {
		h.renderError(w, r, http.StatusBadRequest, "Select a team to chart its season.")
		return
	}

	games, err := h.backend.Games(ctx, sel.Filter())
	if err != nil {
		h.logFailure(r, err, "failed to retrieve games for chart")
		h.renderError(w, r, statusFor(err), failureMessage(err, sel))
		return
	}

	cfg := charts.DefaultChartConfig()
	cfg.Title = h.teams.DisplayName(sel.Team)
	cfg.Subtitle = "Goals for and against"

	var buf bytes.Buffer
	if err := charts.RenderSeasonChart(&buf, sel.Team, games, cfg); err != nil {
		h.logFailure(r, err, "failed to render chart")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// NotFound renders the error page for unknown paths
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found.")
}

// selection parses the request's year/team, rendering a 400 page when it is invalid
func (h *PageHandler) selection(w http.ResponseWriter, r *http.Request) (selection.Selection, bool) {
	sel, err := selection.FromQuery(r.URL.Query(), h.seasons)
	if err != nil {
		h.renderError(w, r, http.StatusBadRequest, err.Error())
		return selection.Selection{}, false
	}
	return sel, true
}

// filteredPage builds the shared data for pages with year/team dropdowns.
// The team list is best effort: without it the dropdown only offers all teams.
func (h *PageHandler) filteredPage(ctx context.Context, r *http.Request, sel selection.Selection, title, nav, path string) views.Page {
	names, err := h.backend.TeamNames(ctx, sel.Years())
	if err != nil {
		h.logFailure(r, err, "failed to retrieve team names")
		names = nil
	}

	return views.Page{
		Title:     title,
		Nav:       nav,
		Path:      path,
		Selection: sel,
		Seasons:   selection.Seasons(h.seasons),
		TeamNames: names,
	}
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, name string, page views.Page) {
	var buf bytes.Buffer
	if err := h.renderer.Render(&buf, name, page); err != nil {
		h.logFailure(r, err, "failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, views.PageError, views.Page{
		Title:        http.StatusText(status),
		Selection:    selection.Initial(h.seasons),
		ErrorMessage: message,
	})
}

func (h *PageHandler) logFailure(r *http.Request, err error, msg string) {
	log.Error().
		Err(err).
		Str("request_id", middleware.GetRequestID(r.Context())).
		Str("path", r.URL.Path).
		Msg(msg)
}

// failureMessage turns a backend error into text for the error page
func failureMessage(err error, sel selection.Selection) string {
	if errors.Is(err, laxapi.ErrNotFound) {
		if sel.AllTeams() {
			return "No statistics were found for that season."
		}
		return "No statistics were found for " + sel.Team + " in that season."
	}
	return "The stats backend is unavailable. Try again shortly."
}
