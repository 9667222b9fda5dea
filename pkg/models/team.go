package models

// TeamSeasonRow is one team's cumulative statistics for one season
type TeamSeasonRow struct {
	ID           int     `json:"id"`
	TeamName     string  `json:"team_name"`
	Conference   string  `json:"conference"`
	Games        int     `json:"games"`
	Goals        int     `json:"goals"`
	Assists      int     `json:"assists"`
	Points       int     `json:"points"`
	Shots        int     `json:"shots"`
	SOG          int     `json:"sog"`
	ManUpGoals   int     `json:"man_up_goals"`
	GroundBalls  int     `json:"ground_balls"`
	Turnovers    int     `json:"turnovers"`
	CausedTO     int     `json:"caused_turnovers"`
	FaceoffPct   float64 `json:"faceoff_pct"`
	Penalties    int     `json:"penalties"`
	GoalsAllowed int     `json:"goals_allowed"`
	Saves        int     `json:"saves"`
	ClearPct     float64 `json:"clear_pct"`
	Year         int     `json:"year"`
}

// TeamRowView pairs a season row with its identity-cell visibility mark
type TeamRowView struct {
	TeamSeasonRow
	ShowIdentity bool `json:"show_identity"`
}

// ErrorResponse represents an API error
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code"`
}
