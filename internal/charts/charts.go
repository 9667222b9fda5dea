package charts

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/XavierBriggs/laxstat/pkg/models"
)

// ChartConfig holds configuration for charts.
type ChartConfig struct {
	Title    string   // Chart title
	Subtitle string   // Chart subtitle
	Width    string   // Chart width (e.g., "900px")
	Height   string   // Chart height (e.g., "500px")
	Theme    string   // Chart theme
	Smooth   bool     // Smooth lines
	Colors   []string // Goals for, goals against
}

// DefaultChartConfig returns default chart configuration.
func DefaultChartConfig() ChartConfig {
	return ChartConfig{
		Width:  "900px",
		Height: "420px",
		Theme:  "light",
		Smooth: true,
		Colors: []string{"#32CD32", "#FF6347"},
	}
}

// GamePoint is one game on the season chart.
type GamePoint struct {
	Label        string
	Opponent     string
	GoalsFor     int
	GoalsAgainst int
}

// SeasonPoints returns the team's games in date order as chart points.
// Games whose date did not decode are left out.
func SeasonPoints(team string, games []models.Game) []GamePoint {
	played := make([]models.Game, 0, len(games))
	for _, g := range games {
		if !g.HasDate() || !strings.EqualFold(strings.TrimSpace(g.TeamName), strings.TrimSpace(team)) {
			continue
		}
		played = append(played, g)
	}

	sort.SliceStable(played, func(i, j int) bool {
		return played[i].Date.Before(played[j].Date)
	})

	points := make([]GamePoint, len(played))
	for i, g := range played {
		points[i] = GamePoint{
			Label:        g.Date.Short(),
			Opponent:     g.Opponent,
			GoalsFor:     g.Stats.Goals,
			GoalsAgainst: g.Stats.GoalsAllowed,
		}
	}
	return points
}

// SeasonChart builds a goals for / goals against line chart for one team's season.
func SeasonChart(team string, games []models.Game, config ChartConfig) *charts.Line {
	points := SeasonPoints(team, games)

	if config.Title == "" {
		config.Title = team
	}
	if len(config.Colors) < 2 {
		config.Colors = DefaultChartConfig().Colors
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: fmt.Sprintf("%s season", config.Title),
			Width:     config.Width,
			Height:    config.Height,
			Theme:     config.Theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    config.Title,
			Subtitle: config.Subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "Goals",
		}),
		charts.WithColorsOpts(opts.Colors{
			config.Colors[0],
			config.Colors[1],
		}),
	)

	xLabels := make([]string, len(points))
	goalsFor := make([]opts.LineData, len(points))
	goalsAgainst := make([]opts.LineData, len(points))
	for i, p := range points {
		xLabels[i] = p.Label
		goalsFor[i] = opts.LineData{Value: p.GoalsFor, Name: p.Opponent}
		goalsAgainst[i] = opts.LineData{Value: p.GoalsAgainst, Name: p.Opponent}
	}

	line.SetXAxis(xLabels).
		AddSeries("Goals for", goalsFor).
		AddSeries("Goals against", goalsAgainst).
		SetSeriesOptions(
			charts.WithLineChartOpts(opts.LineChart{
				Smooth: opts.Bool(config.Smooth),
			}),
			charts.WithLabelOpts(opts.Label{
				Show: opts.Bool(false),
			}),
		)

	return line
}

// RenderSeasonChart writes the season chart as a standalone HTML page.
func RenderSeasonChart(w io.Writer, team string, games []models.Game, config ChartConfig) error {
	if err := SeasonChart(team, games, config).Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
