package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/stretchr/testify/assert"
)

type scoreFixture struct {
	games   *fakeGameRepo
	aliases *fakeAliasRepo
	players *fakePlayerRepo
	scores  *ScoreService
}

func newScoreFixture(t *testing.T) *scoreFixture {
	t.Helper()
	games := newFakeGameRepo()
	aliases := newFakeAliasRepo()
	players := newFakePlayerRepo()
	return &scoreFixture{
		games:   games,
		aliases: aliases,
		players: players,
		scores:  NewScoreService(games, aliases, players, nil, testLogger()),
	}
}

func (f *scoreFixture) addTeam(t *testing.T, teamID, teamName string, playerNames ...string) {
	t.Helper()
	ctx := context.Background()
	alias := &models.TeamAlias{TournamentID: 1, StageID: 1, TeamID: teamID, TeamName: teamName}
	assert.NoError(t, f.aliases.Create(ctx, nil, alias))
	for _, name := range playerNames {
		assert.NoError(t, f.players.Create(ctx, &models.Player{TournamentID: 1, TeamID: teamID, Name: name}))
	}
}

func (f *scoreFixture) addGame(t *testing.T, stage, round, match int, team1, team2 string) *models.Game {
	t.Helper()
	game := &models.Game{
		TournamentID: 1, StageID: stage, RoundNumber: round, MatchNum: match,
		Team1: team1, Team2: team2, Result: models.ResultNotPlayed,
	}
	inserted, err := f.games.CreateIfPairAbsent(context.Background(), nil, game)
	assert.NoError(t, err)
	assert.True(t, inserted)
	return game
}

const basicScorecard = `[
	{"team1": {"p1": 15}, "team1Bonus": 10},
	{"team2": {"p5": 10}, "team2Bonus": 10}
]`

func TestSubmitScorecard_DerivesResult(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy", "p1", "p2")
	f.addTeam(t, "B", "Beta Prep", "p5", "p6")
	game := f.addGame(t, 1, 1, 1, "A", "B")

	result, err := f.scores.SubmitScorecard(context.Background(), game.ID, json.RawMessage(basicScorecard), nil)

	assert.NoError(t, err)
	assert.Equal(t, models.ResultTeam1Win, result)

	stored, err := f.games.GetByID(context.Background(), game.ID)
	assert.NoError(t, err)
	assert.Equal(t, models.ResultTeam1Win, stored.Result)
	assert.Equal(t, 1, stored.Version)

	cycles, err := stored.Cycles()
	assert.NoError(t, err)
	assert.Len(t, cycles, 2)
	assert.Equal(t, 15, cycles[0].Team1["p1"])
}

func TestSubmitScorecard_OverrideWins(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy")
	f.addTeam(t, "B", "Beta Prep")
	game := f.addGame(t, 1, 1, 1, "A", "B")

	override := models.ResultTeam2Win
	result, err := f.scores.SubmitScorecard(context.Background(), game.ID, json.RawMessage(basicScorecard), &override)

	assert.NoError(t, err)
	assert.Equal(t, models.ResultTeam2Win, result)

	stored, err := f.games.GetByID(context.Background(), game.ID)
	assert.NoError(t, err)
	// The derived result is kept alongside the override for audit.
	assert.Equal(t, models.ResultTeam1Win, stored.Result)
	assert.Equal(t, models.ResultTeam2Win, stored.EffectiveResult())
}

func TestSubmitScorecard_InvalidCardWritesNothing(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy")
	f.addTeam(t, "B", "Beta Prep")
	game := f.addGame(t, 1, 1, 1, "A", "B")

	_, err := f.scores.SubmitScorecard(context.Background(), game.ID, json.RawMessage(`[{"score": 3}]`), nil)
	assert.ErrorIs(t, err, ErrInvalidScorecard)

	stored, err := f.games.GetByID(context.Background(), game.ID)
	assert.NoError(t, err)
	assert.False(t, stored.Played())
	assert.Nil(t, stored.ScorecardJSON)
	assert.Equal(t, 0, stored.Version)
}

// staleReadGameRepo hands out a copy of the game with an outdated
// version, simulating a concurrent writer landing between read and write.
type staleReadGameRepo struct {
	*fakeGameRepo
}

func (r *staleReadGameRepo) GetByID(ctx context.Context, id int) (*models.Game, error) {
	game, err := r.fakeGameRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	stale := *game
	stale.Version--
	return &stale, nil
}

func TestSubmitScorecard_VersionConflict(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy")
	f.addTeam(t, "B", "Beta Prep")
	game := f.addGame(t, 1, 1, 1, "A", "B")
	game.Version = 1

	racing := NewScoreService(&staleReadGameRepo{f.games}, f.aliases, f.players, nil, testLogger())

	_, err := racing.SubmitScorecard(context.Background(), game.ID, json.RawMessage(basicScorecard), nil)

	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestSubmitScorecard_UnresolvedDynamicTeam(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy")
	f.addTeam(t, "B", "Beta Prep")
	f.addGame(t, 2, 1, 1, "A", "B")
	final := f.addGame(t, 2, 2, 1, "W(S2R1M1)", "C")

	_, err := f.scores.SubmitScorecard(context.Background(), final.ID, json.RawMessage(basicScorecard), nil)

	assert.ErrorIs(t, err, ErrTeamsUnresolved)
}

func TestSubmitScorecard_PinsResolvedReference(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy", "p1")
	f.addTeam(t, "B", "Beta Prep", "p5")
	f.addTeam(t, "C", "Carver High")
	semi := f.addGame(t, 2, 1, 1, "A", "B")
	final := f.addGame(t, 2, 2, 1, "W(S2R1M1)", "C")

	_, err := f.scores.SubmitScorecard(context.Background(), semi.ID, json.RawMessage(basicScorecard), nil)
	assert.NoError(t, err)

	_, err = f.scores.SubmitScorecard(context.Background(), final.ID, json.RawMessage(basicScorecard), nil)
	assert.NoError(t, err)

	stored, err := f.games.GetByID(context.Background(), final.ID)
	assert.NoError(t, err)
	assert.Equal(t, "A", stored.Team1)
}

func TestSubmitScorecard_UnknownGame(t *testing.T) {
	f := newScoreFixture(t)

	_, err := f.scores.SubmitScorecard(context.Background(), 42, json.RawMessage(basicScorecard), nil)

	assert.ErrorIs(t, err, ErrGameNotFound)
}

func TestComputeStandings_EndToEnd(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy", "p1", "p2")
	f.addTeam(t, "B", "Beta Prep", "p5", "p6")
	game := f.addGame(t, 1, 1, 1, "A", "B")

	_, err := f.scores.SubmitScorecard(context.Background(), game.ID, json.RawMessage(basicScorecard), nil)
	assert.NoError(t, err)

	standings, err := f.scores.ComputeStandings(context.Background(), 1, nil)
	assert.NoError(t, err)
	assert.Len(t, standings, 2)

	alpha := standings[0]
	assert.Equal(t, "Alpha Academy", alpha.TeamName)
	assert.Equal(t, 1, alpha.Wins)
	assert.Equal(t, 0, alpha.Losses)
	assert.Equal(t, 100.0, alpha.WinPct)
	assert.Equal(t, 25, alpha.TotalPoints)
	assert.Equal(t, 15, alpha.TossupPoints)
	assert.Equal(t, 10, alpha.BonusPoints)
	assert.Equal(t, 1, alpha.BonusHeard)
	assert.Equal(t, 10.0, alpha.BonusConversionRate)

	beta := standings[1]
	assert.Equal(t, "Beta Prep", beta.TeamName)
	assert.Equal(t, 0, beta.Wins)
	assert.Equal(t, 1, beta.Losses)
	assert.Equal(t, 20, beta.TotalPoints)
	assert.Equal(t, 1, beta.BonusHeard)
}

func TestComputeStandings_SkipsUnplayedGames(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy")
	f.addTeam(t, "B", "Beta Prep")
	f.addGame(t, 1, 1, 1, "A", "B")

	standings, err := f.scores.ComputeStandings(context.Background(), 1, nil)

	assert.NoError(t, err)
	assert.Empty(t, standings)
}

func TestComputeStandings_TieCountsForBoth(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy")
	f.addTeam(t, "B", "Beta Prep")
	game := f.addGame(t, 1, 1, 1, "A", "B")

	tied := `[{"team1": {"p1": 10}}, {"team2": {"p5": 10}}]`
	result, err := f.scores.SubmitScorecard(context.Background(), game.ID, json.RawMessage(tied), nil)
	assert.NoError(t, err)
	assert.Equal(t, models.ResultTie, result)

	standings, err := f.scores.ComputeStandings(context.Background(), 1, nil)
	assert.NoError(t, err)
	assert.Len(t, standings, 2)
	for _, row := range standings {
		assert.Equal(t, 1, row.Ties)
		assert.Equal(t, 0, row.Wins)
	}
}

func TestComputeStandings_StageFilter(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy")
	f.addTeam(t, "B", "Beta Prep")
	prelim := f.addGame(t, 1, 1, 1, "A", "B")
	playoff := f.addGame(t, 2, 1, 1, "A", "B")

	_, err := f.scores.SubmitScorecard(context.Background(), prelim.ID, json.RawMessage(basicScorecard), nil)
	assert.NoError(t, err)
	_, err = f.scores.SubmitScorecard(context.Background(), playoff.ID, json.RawMessage(basicScorecard), nil)
	assert.NoError(t, err)

	stage2 := 2
	standings, err := f.scores.ComputeStandings(context.Background(), 1, &stage2)
	assert.NoError(t, err)
	assert.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].GamesPlayed)

	all, err := f.scores.ComputeStandings(context.Background(), 1, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, all[0].GamesPlayed)
}

func TestPlayerStats_Aggregates(t *testing.T) {
	f := newScoreFixture(t)
	f.addTeam(t, "A", "Alpha Academy", "p1", "p2")
	f.addTeam(t, "B", "Beta Prep", "p5", "p6")
	game := f.addGame(t, 1, 1, 1, "A", "B")

	card := `[
		{"team1": {"p1": 15}, "team1Bonus": 10},
		{"team2": {"p5": 10}, "team2Bonus": 10},
		{"team1": {"p1": -5}, "team2": {"p5": 10}}
	]`
	_, err := f.scores.SubmitScorecard(context.Background(), game.ID, json.RawMessage(card), nil)
	assert.NoError(t, err)

	stats, err := f.scores.PlayerStats(context.Background(), 1, nil)
	assert.NoError(t, err)

	byName := make(map[string]*models.PlayerLine, len(stats))
	for _, line := range stats {
		byName[line.Name] = line
	}

	p1 := byName["p1"]
	assert.NotNil(t, p1)
	assert.Equal(t, 1, p1.Powers)
	assert.Equal(t, 0, p1.Gets)
	assert.Equal(t, 1, p1.Negs)
	assert.Equal(t, 10, p1.TossupPoints)
	assert.Equal(t, 3, p1.TossupsHeard)

	p5 := byName["p5"]
	assert.NotNil(t, p5)
	assert.Equal(t, 2, p5.Gets)
	assert.Equal(t, 20, p5.TossupPoints)
	assert.Equal(t, 3, p5.TossupsHeard)
	assert.InDelta(t, 6.67, p5.PPTH, 0.001)
}
