// Package scoring holds the pure scorecard math: normalizing legacy wire
// shapes into canonical cycles, deriving game results, and the per-cycle
// accounting standings are built from. It has no storage dependencies.
package scoring

import (
	"errors"
	"fmt"

	"github.com/Dosada05/quizbowl-system/models"
)

var (
	ErrUnknownCycleShape = errors.New("unrecognized cycle shape")
	ErrDoubleCredit      = errors.New("both teams credited on the same tossup")
)

// CycleScore sums one cycle for both teams: player tossup points plus the
// team's bonus total.
func CycleScore(c models.Cycle) (team1, team2 int) {
	for _, pts := range c.Team1 {
		team1 += pts
	}
	for _, pts := range c.Team2 {
		team2 += pts
	}
	team1 += c.Team1Bonus
	team2 += c.Team2Bonus
	return team1, team2
}

// GameScore sums all cycles.
func GameScore(cycles []models.Cycle) (team1, team2 int) {
	for _, c := range cycles {
		t1, t2 := CycleScore(c)
		team1 += t1
		team2 += t2
	}
	return team1, team2
}

// DeriveResult computes the game result from the cycle sequence alone.
func DeriveResult(cycles []models.Cycle) models.GameResult {
	t1, t2 := GameScore(cycles)
	switch {
	case t1 > t2:
		return models.ResultTeam1Win
	case t2 > t1:
		return models.ResultTeam2Win
	default:
		return models.ResultTie
	}
}

// TossupWinner reports which team converted the cycle's tossup: 1 or 2
// when exactly one side has a positive tossup sum, 0 otherwise. The team
// that converted the tossup is the team that heard the bonus.
func TossupWinner(c models.Cycle) int {
	t1, t2 := 0, 0
	for _, pts := range c.Team1 {
		t1 += pts
	}
	for _, pts := range c.Team2 {
		t2 += pts
	}
	switch {
	case t1 > 0 && t2 <= 0:
		return 1
	case t2 > 0 && t1 <= 0:
		return 2
	default:
		return 0
	}
}

// ValidateCycles enforces the per-cycle invariant that at most one player
// across both teams earns positive tossup credit, and that every point
// value is one of the legal tossup values.
func ValidateCycles(cycles []models.Cycle) error {
	for i, c := range cycles {
		credits := 0
		for _, team := range []map[string]int{c.Team1, c.Team2} {
			for _, pts := range team {
				switch pts {
				case models.PointsPower, models.PointsGet:
					credits++
				case models.PointsNeg, 0:
				default:
					return fmt.Errorf("%w: cycle %d has point value %d", ErrUnknownCycleShape, i+1, pts)
				}
			}
		}
		if credits > 1 {
			return fmt.Errorf("%w: cycle %d", ErrDoubleCredit, i+1)
		}
	}
	return nil
}
