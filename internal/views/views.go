// Package views renders the dashboard's HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"github.com/XavierBriggs/laxstat/internal/selection"
	"github.com/XavierBriggs/laxstat/internal/teamdir"
	"github.com/XavierBriggs/laxstat/pkg/datecodec"
	"github.com/XavierBriggs/laxstat/pkg/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page names
const (
	PageHome  = "home"
	PageTeams = "teams"
	PageGames = "games"
	PageError = "error"
)

// Page is the data every template receives. Pages read only the fields they need.
type Page struct {
	Title string
	Nav   string
	Path  string

	Selection selection.Selection
	Seasons   []int
	TeamNames []string

	CSVURL   string
	ChartURL string

	Schedule []models.ScheduledGame
	Results  []models.Game
	Teams    []models.TeamRowView
	Games    []models.Game

	ErrorMessage string
}

// Renderer executes the embedded page templates. It is safe for concurrent use.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page against the shared layout
func New(dir *teamdir.Directory) (*Renderer, error) {
	funcs := Funcs(dir)

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageHome, PageTeams, PageGames, PageError} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parsing %s template: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes page to w. Output is buffered so a template error never leaves a
// half-written page.
func (r *Renderer) Render(w io.Writer, page string, data Page) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("rendering %s: %w", page, err)
	}

	_, err := buf.WriteTo(w)
	return err
}

// Funcs returns the template helpers backed by the team directory
func Funcs(dir *teamdir.Directory) template.FuncMap {
	return template.FuncMap{
		"logo": func(name string) string {
			url, _ := dir.Logo(name)
			return url
		},
		"display":     dir.DisplayName,
		"dateOr":      DateOr,
		"resultClass": ResultClass,
		"mark":        Mark,
		"pct":         Pct,
		"optional":    Optional,
		"link":        Link,
	}
}

// Link appends the selection's query to path
func Link(path string, sel selection.Selection) string {
	if q := sel.Query().Encode(); q != "" {
		return path + "?" + q
	}
	return path
}

// DateOr formats a decoded date, or shows the packed backend value when decoding failed
func DateOr(d datecodec.Date, raw int) string {
	if d.IsZero() {
		return strconv.Itoa(raw)
	}
	return d.String()
}

// ResultClass colours a result cell: losses red, everything else green
func ResultClass(g models.Game) string {
	if g.Loss {
		return "loss"
	}
	return "win"
}

// Mark renders a flag column
func Mark(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// Pct renders a 0-1 ratio with three decimals
func Pct(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// Optional renders a statistic that is not reported for every game
func Optional(v *int) string {
	if v == nil {
		return "-"
	}
	return strconv.Itoa(*v)
}
