package scoring

import (
	"encoding/json"
	"testing"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/stretchr/testify/assert"
)

func TestNormalizeScorecard_Canonical(t *testing.T) {
	raw := json.RawMessage(`[
		{"team1": {"p1": 15}, "team2": {}, "team1Bonus": 20, "team2Bonus": 0},
		{"team1": {}, "team2": {"p5": -5}}
	]`)

	cycles, err := NormalizeScorecard(raw, Rosters{})

	assert.NoError(t, err)
	assert.Len(t, cycles, 2)
	assert.Equal(t, 15, cycles[0].Team1["p1"])
	assert.Equal(t, 20, cycles[0].Team1Bonus)
	assert.Equal(t, -5, cycles[1].Team2["p5"])
}

func TestNormalizeScorecard_CanonicalStringPoints(t *testing.T) {
	raw := json.RawMessage(`[{"team1": {"p1": "15"}, "team1Bonus": "10"}]`)

	cycles, err := NormalizeScorecard(raw, Rosters{})

	assert.NoError(t, err)
	assert.Equal(t, 15, cycles[0].Team1["p1"])
	assert.Equal(t, 10, cycles[0].Team1Bonus)
}

func TestNormalizeScorecard_TossupObject(t *testing.T) {
	raw := json.RawMessage(`[
		{"tossup": {"points": 15, "team": 1, "player": "p1"}, "bonus": [1, 0, 1]},
		{"tossup": {"points": -5, "team": 2, "player": "p5"}}
	]`)

	cycles, err := NormalizeScorecard(raw, Rosters{})

	assert.NoError(t, err)
	assert.Equal(t, 15, cycles[0].Team1["p1"])
	assert.Equal(t, 20, cycles[0].Team1Bonus)
	assert.Equal(t, -5, cycles[1].Team2["p5"])
	assert.Equal(t, 0, cycles[1].Team2Bonus)
}

func TestNormalizeScorecard_TossupObjectIntBonus(t *testing.T) {
	raw := json.RawMessage(`[{"tossup": {"points": 10, "team": 2, "player": "p5"}, "bonus": 20}]`)

	cycles, err := NormalizeScorecard(raw, Rosters{})

	assert.NoError(t, err)
	assert.Equal(t, 20, cycles[0].Team2Bonus)
}

func TestNormalizeScorecard_DeadTossupObject(t *testing.T) {
	raw := json.RawMessage(`[{"tossup": {"points": 0, "team": null, "player": ""}}]`)

	cycles, err := NormalizeScorecard(raw, Rosters{})

	assert.NoError(t, err)
	assert.True(t, cycles[0].Empty())
}

func TestNormalizeScorecard_FlatArrays(t *testing.T) {
	rosters := Rosters{
		Team1: []string{"p1", "p2", "p3", "p4"},
		Team2: []string{"p5", "p6", "p7", "p8"},
	}
	raw := json.RawMessage(`[
		[[15, 0, 0, 0], 20, [0, 0, 0, 0], 0],
		[[0, -5, 0, 0], 0, [0, 10, 0, 0], 10]
	]`)

	cycles, err := NormalizeScorecard(raw, rosters)

	assert.NoError(t, err)
	assert.Equal(t, 15, cycles[0].Team1["p1"])
	assert.Equal(t, 20, cycles[0].Team1Bonus)
	assert.Equal(t, -5, cycles[1].Team1["p2"])
	assert.Equal(t, 10, cycles[1].Team2["p6"])
	assert.Equal(t, 10, cycles[1].Team2Bonus)
}

func TestNormalizeScorecard_FlatRequiresRosters(t *testing.T) {
	raw := json.RawMessage(`[[[15, 0], 0, [0, 0], 0]]`)

	_, err := NormalizeScorecard(raw, Rosters{})

	assert.ErrorIs(t, err, ErrUnknownCycleShape)
}

func TestNormalizeScorecard_MixedShapes(t *testing.T) {
	rosters := Rosters{Team1: []string{"p1"}, Team2: []string{"p5"}}
	raw := json.RawMessage(`[
		{"team1": {"p1": 10}, "team1Bonus": 10},
		{"tossup": {"points": 15, "team": 2, "player": "p5"}},
		[[0], 0, [10], 0]
	]`)

	cycles, err := NormalizeScorecard(raw, rosters)

	assert.NoError(t, err)
	assert.Len(t, cycles, 3)
	assert.Equal(t, 10, cycles[0].Team1["p1"])
	assert.Equal(t, 15, cycles[1].Team2["p5"])
	assert.Equal(t, 10, cycles[2].Team2["p5"])
}

func TestNormalizeScorecard_RejectsUnknownShape(t *testing.T) {
	raw := json.RawMessage(`[{"score": 10}]`)

	_, err := NormalizeScorecard(raw, Rosters{})

	assert.ErrorIs(t, err, ErrUnknownCycleShape)
}

func TestNormalizeScorecard_RejectsNonList(t *testing.T) {
	_, err := NormalizeScorecard(json.RawMessage(`{"team1": {}}`), Rosters{})

	assert.ErrorIs(t, err, ErrUnknownCycleShape)
}

func TestNormalizeScorecard_RoundTripsThroughDeriveResult(t *testing.T) {
	raw := json.RawMessage(`[
		{"team1": {"p1": 15}, "team1Bonus": 10},
		{"team2": {"p5": 10}, "team2Bonus": 10}
	]`)

	cycles, err := NormalizeScorecard(raw, Rosters{})

	assert.NoError(t, err)
	assert.NoError(t, ValidateCycles(cycles))
	assert.Equal(t, models.ResultTeam1Win, DeriveResult(cycles))

	t1, t2 := GameScore(cycles)
	assert.Equal(t, 25, t1)
	assert.Equal(t, 20, t2)
}
