// Package selection holds the dashboard's year/team state.
//
// A Selection is parsed from the query string on every request and never
// mutated; the With methods return a new value.
package selection

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonboulle/clockwork"

	"github.com/XavierBriggs/laxstat/internal/providers/laxapi"
)

// Selection is the year and team the user is looking at.
// An empty Team means every team.
type Selection struct {
	Year int
	Team string
}

// Defaults bounds the selectable seasons and supplies the clock for the default year
type Defaults struct {
	FirstSeason int
	LastSeason  int
	Clock       clockwork.Clock
}

// InvalidSelectionError reports a query parameter that cannot become a Selection
type InvalidSelectionError struct {
	Param  string
	Value  string
	Reason string
}

func (e *InvalidSelectionError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Param, e.Value, e.Reason)
}

// Initial is the landing state: the current year clamped to the season range, all teams
func Initial(d Defaults) Selection {
	clock := d.Clock
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	year := clock.Now().Year()
	if year > d.LastSeason {
		year = d.LastSeason
	}
	if year < d.FirstSeason {
		year = d.FirstSeason
	}
	return Selection{Year: year}
}

// FromQuery parses the year and team query parameters, falling back to Initial for
// anything missing
func FromQuery(q url.Values, d Defaults) (Selection, error) {
	sel := Initial(d)

	if raw := strings.TrimSpace(q.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return Selection{}, &InvalidSelectionError{Param: "year", Value: raw, Reason: "not a number"}
		}
		if year < d.FirstSeason || year > d.LastSeason {
			return Selection{}, &InvalidSelectionError{
				Param:  "year",
				Value:  raw,
				Reason: fmt.Sprintf("outside %d-%d", d.FirstSeason, d.LastSeason),
			}
		}
		sel = sel.WithYear(year)
	}

	return sel.WithTeam(q.Get("team")), nil
}

// ParseYears parses a comma-separated season list such as "2024,2021".
// Blank input means every season and returns nil.
func ParseYears(raw string, d Defaults) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	years := make([]int, 0, len(parts))
	for _, part := range parts {
		year, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, &InvalidSelectionError{Param: "year", Value: raw, Reason: "not a comma-separated list of years"}
		}
		if year < d.FirstSeason || year > d.LastSeason {
			return nil, &InvalidSelectionError{
				Param:  "year",
				Value:  raw,
				Reason: fmt.Sprintf("%d outside %d-%d", year, d.FirstSeason, d.LastSeason),
			}
		}
		years = append(years, year)
	}
	return years, nil
}

// WithYear returns s with the year replaced
func (s Selection) WithYear(year int) Selection {
	s.Year = year
	return s
}

// WithTeam returns s with the team replaced; blank means all teams
func (s Selection) WithTeam(team string) Selection {
	s.Team = strings.TrimSpace(team)
	return s
}

// AllTeams reports whether no team is selected
func (s Selection) AllTeams() bool {
	return s.Team == ""
}

// Query encodes s for links and forms
func (s Selection) Query() url.Values {
	q := url.Values{}
	if s.Year != 0 {
		q.Set("year", strconv.Itoa(s.Year))
	}
	if s.Team != "" {
		q.Set("team", s.Team)
	}
	return q
}

// Years returns the selected seasons as a backend year list
func (s Selection) Years() []int {
	if s.Year == 0 {
		return nil
	}
	return []int{s.Year}
}

// Filter converts s into a backend query filter
func (s Selection) Filter() laxapi.Filter {
	return laxapi.Filter{Years: s.Years(), Team: s.Team}
}

// Seasons lists the selectable years, newest first
func Seasons(d Defaults) []int {
	if d.LastSeason < d.FirstSeason {
		return []int{}
	}
	years := make([]int, 0, d.LastSeason-d.FirstSeason+1)
	for y := d.LastSeason; y >= d.FirstSeason; y-- {
		years = append(years, y)
	}
	return years
}
