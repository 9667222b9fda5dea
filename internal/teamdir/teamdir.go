// Package teamdir maps backend team names to logos and display names.
package teamdir

import (
	_ "embed"
	"fmt"
	"os"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"

	"gopkg.in/yaml.v3"
)

//go:embed teams.yaml
var defaultTeams []byte

// Team is one directory entry
type Team struct {
	Logo    string `yaml:"logo"`
	Display string `yaml:"display"`
}

type file struct {
	LogoPrefix string          `yaml:"logo_prefix"`
	Teams      map[string]Team `yaml:"teams"`
}

// Directory is a read-only team lookup, safe for concurrent use
type Directory struct {
	logoPrefix string
	teams      map[string]Team
}

// Default returns the embedded directory
func Default() (*Directory, error) {
	return Parse(defaultTeams)
}

// Load reads a directory from a YAML file. An empty path returns Default.
func Load(filename string) (*Directory, error) {
	if filename == "" {
		return Default()
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("reading team directory: %w", err)
	}
	return Parse(data)
}

// Parse builds a directory from YAML
func Parse(data []byte) (*Directory, error) {
	var f file
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing team directory: %w", err)
	}

	d := &Directory{
		logoPrefix: f.LogoPrefix,
		teams:      make(map[string]Team, len(f.Teams)),
	}
	if d.logoPrefix == "" {
		d.logoPrefix = "/static/logos"
	}

	for name, team := range f.Teams {
		key := normalize(name)
		if key == "" {
			return nil, fmt.Errorf("parsing team directory: empty team name")
		}
		d.teams[key] = team
	}
	return d, nil
}

// Len returns the number of teams in the directory
func (d *Directory) Len() int {
	return len(d.teams)
}

// Logo returns the logo URL for a backend team name
func (d *Directory) Logo(name string) (string, bool) {
	team, ok := d.teams[normalize(name)]
	if !ok || team.Logo == "" {
		return "", false
	}
	return path.Join(d.logoPrefix, team.Logo), true
}

// DisplayName returns the configured name for a team, or the backend name with
// its first letter upper-cased
func (d *Directory) DisplayName(name string) string {
	if team, ok := d.teams[normalize(name)]; ok && team.Display != "" {
		return team.Display
	}
	return Capitalize(name)
}

// Capitalize upper-cases the first letter of s
func Capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// normalize lower-cases and trims; the backend pads some names with a trailing space
func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
