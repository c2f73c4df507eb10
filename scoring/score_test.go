package scoring

import (
	"testing"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/stretchr/testify/assert"
)

func TestCycleScore_SumsTossupAndBonus(t *testing.T) {
	c := models.Cycle{
		Team1:      map[string]int{"p1": 15, "p2": -5},
		Team2:      map[string]int{"p5": 10},
		Team1Bonus: 20,
		Team2Bonus: 10,
	}

	t1, t2 := CycleScore(c)

	assert.Equal(t, 30, t1)
	assert.Equal(t, 20, t2)
}

func TestDeriveResult_Team1Win(t *testing.T) {
	cycles := []models.Cycle{
		{Team1: map[string]int{"p1": 15}, Team1Bonus: 10},
		{Team2: map[string]int{"p5": 10}, Team2Bonus: 10},
	}

	assert.Equal(t, models.ResultTeam1Win, DeriveResult(cycles))
}

func TestDeriveResult_Team2Win(t *testing.T) {
	cycles := []models.Cycle{
		{Team2: map[string]int{"p5": 15}, Team2Bonus: 30},
		{Team1: map[string]int{"p1": 10}},
	}

	assert.Equal(t, models.ResultTeam2Win, DeriveResult(cycles))
}

func TestDeriveResult_Tie(t *testing.T) {
	cycles := []models.Cycle{
		{Team1: map[string]int{"p1": 10}},
		{Team2: map[string]int{"p5": 10}},
	}

	assert.Equal(t, models.ResultTie, DeriveResult(cycles))
}

func TestDeriveResult_EmptyCardIsTie(t *testing.T) {
	assert.Equal(t, models.ResultTie, DeriveResult(nil))
}

func TestTossupWinner_ConvertingTeamHeardBonus(t *testing.T) {
	assert.Equal(t, 1, TossupWinner(models.Cycle{Team1: map[string]int{"p1": 15}}))
	assert.Equal(t, 2, TossupWinner(models.Cycle{Team2: map[string]int{"p5": 10}}))
}

func TestTossupWinner_NegOnlyIsNobody(t *testing.T) {
	assert.Equal(t, 0, TossupWinner(models.Cycle{Team1: map[string]int{"p1": -5}}))
}

func TestTossupWinner_NegAgainstConversion(t *testing.T) {
	c := models.Cycle{
		Team1: map[string]int{"p1": -5},
		Team2: map[string]int{"p5": 10},
	}

	assert.Equal(t, 2, TossupWinner(c))
}

func TestTossupWinner_DeadTossup(t *testing.T) {
	assert.Equal(t, 0, TossupWinner(models.Cycle{}))
}

func TestValidateCycles_LegalValues(t *testing.T) {
	cycles := []models.Cycle{
		{Team1: map[string]int{"p1": 15, "p2": 0}},
		{Team1: map[string]int{"p1": -5}, Team2: map[string]int{"p5": 10}},
	}

	assert.NoError(t, ValidateCycles(cycles))
}

func TestValidateCycles_RejectsIllegalPointValue(t *testing.T) {
	cycles := []models.Cycle{{Team1: map[string]int{"p1": 7}}}

	assert.ErrorIs(t, ValidateCycles(cycles), ErrUnknownCycleShape)
}

func TestValidateCycles_RejectsDoubleCredit(t *testing.T) {
	cycles := []models.Cycle{{
		Team1: map[string]int{"p1": 10},
		Team2: map[string]int{"p5": 15},
	}}

	assert.ErrorIs(t, ValidateCycles(cycles), ErrDoubleCredit)
}

func TestValidateCycles_RejectsTwoCreditsSameTeam(t *testing.T) {
	cycles := []models.Cycle{{
		Team1: map[string]int{"p1": 10, "p2": 10},
	}}

	assert.ErrorIs(t, ValidateCycles(cycles), ErrDoubleCredit)
}
