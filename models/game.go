package models

import (
	"encoding/json"
	"fmt"
	"time"
)

type GameResult int

// Result encoding is shared with the stored rows: -2 not played,
// 1 team1 win, -1 team2 win, 0 tie.
const (
	ResultNotPlayed GameResult = -2
	ResultTeam1Win  GameResult = 1
	ResultTeam2Win  GameResult = -1
	ResultTie       GameResult = 0
)

func (r GameResult) Valid() bool {
	switch r {
	case ResultNotPlayed, ResultTeam1Win, ResultTeam2Win, ResultTie:
		return true
	}
	return false
}

type Game struct {
	ID           int        `json:"id" db:"id"`
	TournamentID int        `json:"tournament_id" db:"tournament_id"`
	StageID      int        `json:"stage_id" db:"stage_id"`
	RoundNumber  int        `json:"round_number" db:"round_number"`
	MatchNum     int        `json:"match_num" db:"match_num"`
	Team1        string     `json:"team1" db:"team1"`
	Team2        string     `json:"team2" db:"team2"`
	Result       GameResult `json:"result" db:"result"`

	// ResultOverride holds a manual adjudication. When set it takes
	// precedence over the derived result, but the scorecard the result was
	// derived from is kept untouched for audit.
	ResultOverride *GameResult `json:"result_override,omitempty" db:"result_override"`

	ScorecardJSON *string   `json:"-" db:"scorecard"`
	Version       int       `json:"version" db:"version"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

func (g *Game) Played() bool {
	return g.Result != ResultNotPlayed
}

// EffectiveResult is the result callers should act on: the manual override
// when present, otherwise the derived result.
func (g *Game) EffectiveResult() GameResult {
	if g.ResultOverride != nil {
		return *g.ResultOverride
	}
	return g.Result
}

// Cycles decodes the stored scorecard into canonical cycles. Games that
// have never been scored return an empty slice.
func (g *Game) Cycles() ([]Cycle, error) {
	if g.ScorecardJSON == nil || *g.ScorecardJSON == "" {
		return nil, nil
	}
	var cycles []Cycle
	if err := json.Unmarshal([]byte(*g.ScorecardJSON), &cycles); err != nil {
		return nil, fmt.Errorf("failed to decode scorecard for game %d: %w", g.ID, err)
	}
	return cycles, nil
}
