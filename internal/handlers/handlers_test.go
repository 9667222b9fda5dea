package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/XavierBriggs/laxstat/internal/handlers"
	"github.com/XavierBriggs/laxstat/internal/providers/laxapi"
	"github.com/XavierBriggs/laxstat/internal/selection"
	"github.com/XavierBriggs/laxstat/internal/teamdir"
	"github.com/XavierBriggs/laxstat/internal/views"
	"github.com/XavierBriggs/laxstat/pkg/datecodec"
	"github.com/XavierBriggs/laxstat/pkg/models"
)

// MockBackend implements handlers.StatsBackend for testing
type MockBackend struct {
	games       []models.Game
	teams       []models.TeamSeasonRow
	names       []string
	schedule    []models.ScheduledGame
	results     []models.Game
	csv         string
	err         error
	namesErr    error
	lastFilter  laxapi.Filter
	lastYears   []int
	lastDataset laxapi.Dataset
}

func (m *MockBackend) Games(ctx context.Context, f laxapi.Filter) ([]models.Game, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return m.games, nil
}

func (m *MockBackend) Teams(ctx context.Context, f laxapi.Filter) ([]models.TeamSeasonRow, error) {
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return m.teams, nil
}

func (m *MockBackend) TeamNames(ctx context.Context, years []int) ([]string, error) {
	m.lastYears = years
	if m.namesErr != nil {
		return nil, m.namesErr
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.names, nil
}

func (m *MockBackend) Schedule(ctx context.Context) ([]models.ScheduledGame, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.schedule, nil
}

func (m *MockBackend) Results(ctx context.Context) ([]models.Game, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.results, nil
}

func (m *MockBackend) OpenCSV(ctx context.Context, d laxapi.Dataset, f laxapi.Filter) (*laxapi.CSVStream, error) {
	m.lastDataset = d
	m.lastFilter = f
	if m.err != nil {
		return nil, m.err
	}
	return &laxapi.CSVStream{
		Dataset:       d,
		ContentType:   "text/csv",
		ContentLength: int64(len(m.csv)),
		Body:          io.NopCloser(strings.NewReader(m.csv)),
	}, nil
}

func (m *MockBackend) Ping(ctx context.Context) error {
	return m.err
}

var errBackendDown = &laxapi.APIError{Path: "/teams", StatusCode: http.StatusInternalServerError, Body: "boom"}

func testSeasons() selection.Defaults {
	return selection.Defaults{
		FirstSeason: 2018,
		LastSeason:  2024,
		Clock:       clockwork.NewFakeClockAt(time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)),
	}
}

func sampleTeams() []models.TeamSeasonRow {
	return []models.TeamSeasonRow{
		{ID: 1, TeamName: "duke", Conference: "ACC", Year: 2024},
		{ID: 2, TeamName: "duke", Conference: "ACC", Year: 2023},
		{ID: 3, TeamName: "yale", Conference: "Ivy", Year: 2024},
		{ID: 4, TeamName: "yale", Conference: "Ivy", Year: 2023},
		{ID: 5, TeamName: "duke", Conference: "ACC", Year: 2022},
	}
}

func sampleGames() []models.Game {
	return []models.Game{
		{
			Date:     datecodec.Date{Year: 2024, Month: time.February, Day: 10},
			RawDate:  2102024,
			TeamName: "duke",
			Opponent: "jacksonville",
			Result:   "15-7",
			Win:      true,
			Stats:    models.GameStats{Goals: 15, GoalsAllowed: 7},
		},
	}
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()

	var response map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return response
}

func TestHealthCheck_Success(t *testing.T) {
	handler := handlers.NewHandler(&MockBackend{}, testSeasons())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.HealthCheck(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	if response := decode(t, w); response["status"] != "healthy" {
		t.Errorf("expected status 'healthy', got %v", response["status"])
	}
}

func TestHealthCheck_BackendUnhealthy(t *testing.T) {
	handler := handlers.NewHandler(&MockBackend{err: errBackendDown}, testSeasons())

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	handler.HealthCheck(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
}

func TestGetTeams_AnnotatesIdentity(t *testing.T) {
	mock := &MockBackend{teams: sampleTeams()}
	handler := handlers.NewHandler(mock, testSeasons())

	req := httptest.NewRequest("GET", "/api/v1/teams?year=2024,2023&team=duke", nil)
	w := httptest.NewRecorder()

	handler.GetTeams(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	if len(mock.lastFilter.Years) != 2 || mock.lastFilter.Team != "duke" {
		t.Errorf("unexpected backend filter: %+v", mock.lastFilter)
	}

	var response struct {
		Teams []models.TeamRowView `json:"teams"`
		Count int                  `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	want := []bool{true, false, true, false, true}
	if response.Count != len(want) || len(response.Teams) != len(want) {
		t.Fatalf("expected %d teams, got %d", len(want), len(response.Teams))
	}
	for i, row := range response.Teams {
		if row.ShowIdentity != want[i] {
			t.Errorf("row %d (%s) show_identity = %v, want %v", i, row.TeamName, row.ShowIdentity, want[i])
		}
	}
}

func TestGetTeams_InvalidYear(t *testing.T) {
	handler := handlers.NewHandler(&MockBackend{}, testSeasons())

	req := httptest.NewRequest("GET", "/api/v1/teams?year=1999", nil)
	w := httptest.NewRecorder()

	handler.GetTeams(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if response := decode(t, w); response["code"] != float64(http.StatusBadRequest) {
		t.Errorf("expected error envelope with code 400, got %v", response)
	}
}

func TestGetGames_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", errors.Join(errors.New("fetching games"), laxapi.ErrNotFound), http.StatusNotFound},
		{"backend failure", errBackendDown, http.StatusBadGateway},
		{"transport failure", context.DeadlineExceeded, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := handlers.NewHandler(&MockBackend{err: tt.err}, testSeasons())

			req := httptest.NewRequest("GET", "/api/v1/games?team=nobody", nil)
			w := httptest.NewRecorder()

			handler.GetGames(w, req)

			if w.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestGetGames_Success(t *testing.T) {
	handler := handlers.NewHandler(&MockBackend{games: sampleGames()}, testSeasons())

	req := httptest.NewRequest("GET", "/api/v1/games?year=2024", nil)
	w := httptest.NewRecorder()

	handler.GetGames(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var response struct {
		Games []models.Game `json:"games"`
		Count int           `json:"count"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response.Count != 1 || response.Games[0].Date.String() != "February 10, 2024" {
		t.Errorf("unexpected games payload: %+v", response)
	}
}

func TestGetTeamNames(t *testing.T) {
	mock := &MockBackend{names: []string{"duke", "yale"}}
	handler := handlers.NewHandler(mock, testSeasons())

	req := httptest.NewRequest("GET", "/api/v1/teams/names?year=2022", nil)
	w := httptest.NewRecorder()

	handler.GetTeamNames(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if len(mock.lastYears) != 1 || mock.lastYears[0] != 2022 {
		t.Errorf("expected years [2022], got %v", mock.lastYears)
	}
	if response := decode(t, w); response["count"] != float64(2) {
		t.Errorf("expected count 2, got %v", response["count"])
	}
}

func TestGetScheduleAndResults(t *testing.T) {
	mock := &MockBackend{
		schedule: []models.ScheduledGame{{TeamName: "army", Opponent: "navy"}},
		results:  sampleGames(),
	}
	handler := handlers.NewHandler(mock, testSeasons())

	w := httptest.NewRecorder()
	handler.GetSchedule(w, httptest.NewRequest("GET", "/api/v1/schedule", nil))
	if w.Code != http.StatusOK || decode(t, w)["count"] != float64(1) {
		t.Errorf("schedule: unexpected response %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.GetResults(w, httptest.NewRequest("GET", "/api/v1/results", nil))
	if w.Code != http.StatusOK || decode(t, w)["count"] != float64(1) {
		t.Errorf("results: unexpected response %d", w.Code)
	}
}

func newPageHandler(t *testing.T, mock *MockBackend) *handlers.PageHandler {
	t.Helper()

	dir, err := teamdir.Default()
	if err != nil {
		t.Fatalf("failed to load team directory: %v", err)
	}
	renderer, err := views.New(dir)
	if err != nil {
		t.Fatalf("failed to parse templates: %v", err)
	}
	return handlers.NewPageHandler(mock, renderer, dir, testSeasons())
}

func TestTeamsPage_DefaultSelection(t *testing.T) {
	mock := &MockBackend{teams: sampleTeams(), names: []string{"duke", "yale"}}
	handler := newPageHandler(t, mock)

	req := httptest.NewRequest("GET", "/teams", nil)
	w := httptest.NewRecorder()

	handler.Teams(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	// The fake clock reads 2026, clamped to the last season
	if len(mock.lastFilter.Years) != 1 || mock.lastFilter.Years[0] != 2024 {
		t.Errorf("expected default year 2024, got %v", mock.lastFilter.Years)
	}

	body := w.Body.String()
	if got := strings.Count(body, `alt="duke"`); got != 2 {
		t.Errorf("expected duke identity shown twice (two runs), got %d", got)
	}
	if got := strings.Count(body, `alt="yale"`); got != 1 {
		t.Errorf("expected yale identity shown once, got %d", got)
	}
	if !strings.Contains(body, `href="/teams/csv?year=2024"`) {
		t.Error("expected CSV link carrying the selection")
	}
}

func TestTeamsPage_InvalidSelection(t *testing.T) {
	mock := &MockBackend{}
	handler := newPageHandler(t, mock)

	req := httptest.NewRequest("GET", "/teams?year=abc", nil)
	w := httptest.NewRecorder()

	handler.Teams(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected status 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "invalid year") {
		t.Error("expected the error page to explain the bad year")
	}
}

func TestTeamsPage_TeamNotFound(t *testing.T) {
	handler := newPageHandler(t, &MockBackend{err: laxapi.ErrNotFound})

	req := httptest.NewRequest("GET", "/teams?year=2024&team=nobody", nil)
	w := httptest.NewRecorder()

	handler.Teams(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No statistics were found for nobody") {
		t.Error("expected not found message")
	}
}

func TestGamesPage_TeamNamesBestEffort(t *testing.T) {
	mock := &MockBackend{games: sampleGames(), namesErr: errBackendDown}
	handler := newPageHandler(t, mock)

	req := httptest.NewRequest("GET", "/games?year=2024&team=duke", nil)
	w := httptest.NewRecorder()

	handler.Games(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	if !strings.Contains(body, "February 10, 2024") {
		t.Error("expected decoded game date")
	}
	if !strings.Contains(body, `src="/games/chart?team=duke&amp;year=2024"`) {
		t.Error("expected season chart for the selected team")
	}
}

func TestGamesPage_BackendDown(t *testing.T) {
	handler := newPageHandler(t, &MockBackend{err: errBackendDown})

	req := httptest.NewRequest("GET", "/games", nil)
	w := httptest.NewRecorder()

	handler.Games(w, req)

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", w.Code)
	}
}

func TestHomePage(t *testing.T) {
	mock := &MockBackend{
		schedule: []models.ScheduledGame{{
			Date:     datecodec.Date{Year: 2024, Month: time.May, Day: 4},
			TeamName: "army west point",
			Opponent: "navy",
		}},
	}
	handler := newPageHandler(t, mock)

	w := httptest.NewRecorder()
	handler.Home(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "May 4, 2024") || !strings.Contains(body, "No results yet") {
		t.Error("expected schedule row and empty results")
	}
}

func TestHomePage_BackendDown(t *testing.T) {
	handler := newPageHandler(t, &MockBackend{err: errBackendDown})

	w := httptest.NewRecorder()
	handler.Home(w, httptest.NewRequest("GET", "/", nil))

	if w.Code != http.StatusBadGateway {
		t.Errorf("expected status 502, got %d", w.Code)
	}
}

func TestGameChart(t *testing.T) {
	handler := newPageHandler(t, &MockBackend{games: sampleGames()})

	w := httptest.NewRecorder()
	handler.GameChart(w, httptest.NewRequest("GET", "/games/chart?year=2024&team=duke", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Goals for") {
		t.Error("expected chart series in output")
	}

	w = httptest.NewRecorder()
	handler.GameChart(w, httptest.NewRequest("GET", "/games/chart?year=2024", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without a team, got %d", w.Code)
	}
}

func TestExport_ProxiesCSV(t *testing.T) {
	mock := &MockBackend{csv: "Id,Team Name\n1,duke\n"}
	handler := handlers.NewExportHandler(mock, testSeasons())

	req := httptest.NewRequest("GET", "/teams/csv?year=2023&team=duke", nil)
	w := httptest.NewRecorder()

	handler.ExportTeams(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=teams.csv" {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
	if got := w.Header().Get("Content-Type"); got != "text/csv" {
		t.Errorf("unexpected Content-Type %q", got)
	}
	if w.Body.String() != mock.csv {
		t.Errorf("body not proxied: %q", w.Body.String())
	}
	if mock.lastDataset != laxapi.DatasetTeams || mock.lastFilter.Team != "duke" || mock.lastFilter.Years[0] != 2023 {
		t.Errorf("unexpected export request: %s %+v", mock.lastDataset, mock.lastFilter)
	}
}

func TestExport_GamesFilename(t *testing.T) {
	handler := handlers.NewExportHandler(&MockBackend{csv: "Date\n2102024\n"}, testSeasons())

	w := httptest.NewRecorder()
	handler.ExportGames(w, httptest.NewRequest("GET", "/games/csv", nil))

	if got := w.Header().Get("Content-Disposition"); got != "attachment; filename=games.csv" {
		t.Errorf("unexpected Content-Disposition %q", got)
	}
}

func TestExport_Errors(t *testing.T) {
	handler := handlers.NewExportHandler(&MockBackend{err: laxapi.ErrNotFound}, testSeasons())

	w := httptest.NewRecorder()
	handler.ExportGames(w, httptest.NewRequest("GET", "/games/csv?team=nobody", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	handler.ExportGames(w, httptest.NewRequest("GET", "/games/csv?year=2030", nil))
	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}
