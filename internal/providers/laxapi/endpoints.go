package laxapi

import (
	"net/url"
	"strconv"
	"strings"
)

// Backend paths
const (
	ScheduleEndpoint  = "/"
	ResultsEndpoint   = "/results"
	GamesEndpoint     = "/games"
	TeamsEndpoint     = "/teams"
	TeamNamesEndpoint = "/teams/names"
	GamesCSVEndpoint  = "/games/csv"
	TeamsCSVEndpoint  = "/teams/csv"
)

// Dataset names one of the backend's CSV exports
type Dataset string

const (
	DatasetGames Dataset = "games"
	DatasetTeams Dataset = "teams"
)

// Filename is the attachment name offered to the browser
func (d Dataset) Filename() string {
	return string(d) + ".csv"
}

// Valid reports whether d is a known dataset
func (d Dataset) Valid() bool {
	return d == DatasetGames || d == DatasetTeams
}

func (d Dataset) path() string {
	if d == DatasetTeams {
		return TeamsCSVEndpoint
	}
	return GamesCSVEndpoint
}

// Filter narrows a backend query to a set of seasons and one team.
// The zero Filter selects everything.
type Filter struct {
	Years []int
	Team  string
}

// Values encodes f the way the backend expects: year=2024,2021&team=duke.
// Empty parts are omitted.
func (f Filter) Values() url.Values {
	q := url.Values{}
	if len(f.Years) > 0 {
		years := make([]string, len(f.Years))
		for i, y := range f.Years {
			years[i] = strconv.Itoa(y)
		}
		q.Set("year", strings.Join(years, ","))
	}
	if team := strings.TrimSpace(f.Team); team != "" {
		q.Set("team", team)
	}
	return q
}
