package laxapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/XavierBriggs/laxstat/internal/middleware"
	"github.com/XavierBriggs/laxstat/pkg/datecodec"
	"github.com/XavierBriggs/laxstat/pkg/models"
)

// number accepts JSON numbers, numeric strings and null.
// Integer columns holding a missing value arrive from the backend as floats (3.0).
type number struct {
	value float64
	valid bool
}

func (n *number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = number{}
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			*n = number{}
			return nil
		}
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", string(b))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		*n = number{}
		return nil
	}

	*n = number{value: v, valid: true}
	return nil
}

func (n number) Int() int {
	if !n.valid {
		return 0
	}
	return int(math.Round(n.value))
}

func (n number) IntPtr() *int {
	if !n.valid {
		return nil
	}
	v := n.Int()
	return &v
}

func (n number) Float() float64 {
	return n.value
}

func (n number) Bool() bool {
	return n.valid && n.value != 0
}

// wireGame mirrors one record of /games and /results
type wireGame struct {
	Date         number `json:"Date"`
	TeamName     string `json:"Team_Name"`
	TeamNameRaw  string `json:"Team Name"`
	Opponent     string `json:"Opponent"`
	Result       string `json:"Result"`
	Goals        number `json:"Goals"`
	Assists      number `json:"Assists"`
	Points       number `json:"Points"`
	Shots        number `json:"Shots"`
	SOG          number `json:"SOG"`
	ManUpG       number `json:"Man_Up_G"`
	GB           number `json:"GB"`
	TO           number `json:"TO"`
	CT           number `json:"CT"`
	FOWon        number `json:"FO_Won"`
	FOsTaken     number `json:"FOs_Taken"`
	Pen          number `json:"Pen"`
	GoalsAllowed number `json:"Goals_Allowed"`
	Saves        number `json:"Saves"`
	W            number `json:"W"`
	L            number `json:"L"`
	ClearPct     number `json:"Clear_Pct"`

	OppGoals    number `json:"Opp_Goals"`
	OppAssists  number `json:"Opp_Assists"`
	OppPoints   number `json:"Opp_Points"`
	OppShots    number `json:"Opp_Shots"`
	OppSOG      number `json:"Opp_SOG"`
	OppManUpG   number `json:"Opp_Man_Up_G"`
	OppGB       number `json:"Opp_GB"`
	OppTO       number `json:"Opp_TO"`
	OppCT       number `json:"Opp_CT"`
	OppFOWon    number `json:"Opp_FO_Won"`
	OppFOsTaken number `json:"Opp_FOs_Taken"`
	OppPen      number `json:"Opp_Pen"`
	OppSaves    number `json:"Opp_Saves"`
	OppClearPct number `json:"Opp_Clear_Pct"`

	Year       number `json:"Year"`
	Home       number `json:"Home"`
	Away       number `json:"Away"`
	Location   string `json:"Location"`
	OT         number `json:"OT"`
	Distance   number `json:"Distance_Traveled"`
	TeamID     number `json:"Team_Id"`
	OpponentID number `json:"Opponent_Id"`
}

// wireTeam mirrors one record of /teams
type wireTeam struct {
	ID           number `json:"Id"`
	TeamName     string `json:"Team_Name"`
	TeamNameRaw  string `json:"Team Name"`
	Conference   string `json:"Conference"`
	Games        number `json:"Games"`
	Goals        number `json:"Goals"`
	Assists      number `json:"Assists"`
	Points       number `json:"Points"`
	Shots        number `json:"Shots"`
	SOG          number `json:"SOG"`
	ManUpG       number `json:"Man_Up_G"`
	GB           number `json:"GB"`
	TO           number `json:"TO"`
	CT           number `json:"CT"`
	FOPct        number `json:"FO_Pct"`
	Pen          number `json:"Pen"`
	GoalsAllowed number `json:"Goals_Allowed"`
	Saves        number `json:"Saves"`
	ClearPct     number `json:"Clear_Pct"`
	Year         number `json:"Year"`
}

// wireScheduledGame mirrors one record of / (the schedule)
type wireScheduledGame struct {
	Date        number `json:"Date"`
	TeamName    string `json:"Team_Name"`
	TeamNameRaw string `json:"Team Name"`
	Opponent    string `json:"Opponent"`
	Home        number `json:"Home"`
	Away        number `json:"Away"`
	Location    string `json:"Location"`
}

func pickName(cleaned, raw string) string {
	if cleaned != "" {
		return cleaned
	}
	return raw
}

// decodeDate decodes a packed date, logging and returning the zero Date on failure
func decodeDate(ctx context.Context, packed int, team string) datecodec.Date {
	d, err := datecodec.Decode(packed)
	if err != nil {
		log.Warn().
			Err(err).
			Str("request_id", middleware.GetRequestID(ctx)).
			Str("team", team).
			Int("packed_date", packed).
			Msg("undecodable game date")
		return datecodec.Date{}
	}
	return d
}

func (w wireGame) toModel(ctx context.Context) models.Game {
	team := pickName(w.TeamName, w.TeamNameRaw)
	raw := w.Date.Int()

	return models.Game{
		Date:       decodeDate(ctx, raw, team),
		RawDate:    raw,
		TeamID:     w.TeamID.Int(),
		TeamName:   team,
		Opponent:   w.Opponent,
		OpponentID: w.OpponentID.Int(),
		Result:     w.Result,
		Year:       w.Year.Int(),
		Win:        w.W.Bool(),
		Loss:       w.L.Bool(),
		Overtime:   w.OT.Bool(),
		Home:       w.Home.Bool(),
		Away:       w.Away.Bool(),
		Location:   w.Location,
		Distance:   w.Distance.Float(),
		Stats: models.GameStats{
			Goals:        w.Goals.Int(),
			Assists:      w.Assists.Int(),
			Points:       w.Points.Int(),
			Shots:        w.Shots.Int(),
			SOG:          w.SOG.Int(),
			ManUpGoals:   w.ManUpG.IntPtr(),
			GroundBalls:  w.GB.Int(),
			Turnovers:    w.TO.Int(),
			CausedTO:     w.CT.Int(),
			FaceoffsWon:  w.FOWon.Int(),
			FaceoffsTook: w.FOsTaken.Int(),
			Penalties:    w.Pen.Int(),
			GoalsAllowed: w.GoalsAllowed.Int(),
			Saves:        w.Saves.Int(),
			ClearPct:     w.ClearPct.Float(),
		},
		OpponentStats: models.GameStats{
			Goals:        w.OppGoals.Int(),
			Assists:      w.OppAssists.Int(),
			Points:       w.OppPoints.Int(),
			Shots:        w.OppShots.Int(),
			SOG:          w.OppSOG.Int(),
			ManUpGoals:   w.OppManUpG.IntPtr(),
			GroundBalls:  w.OppGB.Int(),
			Turnovers:    w.OppTO.Int(),
			CausedTO:     w.OppCT.Int(),
			FaceoffsWon:  w.OppFOWon.Int(),
			FaceoffsTook: w.OppFOsTaken.Int(),
			Penalties:    w.OppPen.Int(),
			GoalsAllowed: w.Goals.Int(),
			Saves:        w.OppSaves.Int(),
			ClearPct:     w.OppClearPct.Float(),
		},
	}
}

func (w wireTeam) toModel() models.TeamSeasonRow {
	return models.TeamSeasonRow{
		ID:           w.ID.Int(),
		TeamName:     pickName(w.TeamName, w.TeamNameRaw),
		Conference:   w.Conference,
		Games:        w.Games.Int(),
		Goals:        w.Goals.Int(),
		Assists:      w.Assists.Int(),
		Points:       w.Points.Int(),
		Shots:        w.Shots.Int(),
		SOG:          w.SOG.Int(),
		ManUpGoals:   w.ManUpG.Int(),
		GroundBalls:  w.GB.Int(),
		Turnovers:    w.TO.Int(),
		CausedTO:     w.CT.Int(),
		FaceoffPct:   w.FOPct.Float(),
		Penalties:    w.Pen.Int(),
		GoalsAllowed: w.GoalsAllowed.Int(),
		Saves:        w.Saves.Int(),
		ClearPct:     w.ClearPct.Float(),
		Year:         w.Year.Int(),
	}
}

func (w wireScheduledGame) toModel(ctx context.Context) models.ScheduledGame {
	team := pickName(w.TeamName, w.TeamNameRaw)
	raw := w.Date.Int()

	return models.ScheduledGame{
		Date:     decodeDate(ctx, raw, team),
		RawDate:  raw,
		TeamName: team,
		Opponent: w.Opponent,
		Home:     w.Home.Bool(),
		Away:     w.Away.Bool(),
		Location: w.Location,
	}
}
