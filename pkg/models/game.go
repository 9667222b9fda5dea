package models

import "github.com/XavierBriggs/laxstat/pkg/datecodec"

// Game is one team's line for a single played game
type Game struct {
	Date       datecodec.Date `json:"date"`
	RawDate    int            `json:"raw_date"` // Packed backend value, kept for display when Date is zero
	TeamID     int            `json:"team_id"`
	TeamName   string         `json:"team_name"`
	Opponent   string         `json:"opponent"`
	OpponentID int            `json:"opponent_id"`
	Result     string         `json:"result"` // "12-9", scored first
	Year       int            `json:"year"`

	Win      bool    `json:"win"`
	Loss     bool    `json:"loss"`
	Overtime bool    `json:"overtime"`
	Home     bool    `json:"home"`
	Away     bool    `json:"away"`
	Location string  `json:"location"`
	Distance float64 `json:"distance_traveled"`

	Stats         GameStats `json:"stats"`
	OpponentStats GameStats `json:"opponent_stats"`
}

// GameStats holds the box score numbers for one side of a game
type GameStats struct {
	Goals        int     `json:"goals"`
	Assists      int     `json:"assists"`
	Points       int     `json:"points"`
	Shots        int     `json:"shots"`
	SOG          int     `json:"sog"`
	ManUpGoals   *int    `json:"man_up_goals,omitempty"` // Not reported for every game
	GroundBalls  int     `json:"ground_balls"`
	Turnovers    int     `json:"turnovers"`
	CausedTO     int     `json:"caused_turnovers"`
	FaceoffsWon  int     `json:"faceoffs_won"`
	FaceoffsTook int     `json:"faceoffs_taken"`
	Penalties    int     `json:"penalties"`
	GoalsAllowed int     `json:"goals_allowed"`
	Saves        int     `json:"saves"`
	ClearPct     float64 `json:"clear_pct"`
}

// HasDate reports whether the packed backend date decoded cleanly
func (g Game) HasDate() bool {
	return !g.Date.IsZero()
}

// ScheduledGame is an upcoming game from the backend schedule
type ScheduledGame struct {
	Date     datecodec.Date `json:"date"`
	RawDate  int            `json:"raw_date"`
	TeamName string         `json:"team_name"`
	Opponent string         `json:"opponent"`
	Home     bool           `json:"home"`
	Away     bool           `json:"away"`
	Location string         `json:"location"`
}
