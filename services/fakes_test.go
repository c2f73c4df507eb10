package services

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeTournamentRepo struct {
	mu          sync.Mutex
	nextID      int
	tournaments map[int]*models.Tournament
}

func newFakeTournamentRepo() *fakeTournamentRepo {
	return &fakeTournamentRepo{nextID: 1, tournaments: map[int]*models.Tournament{}}
}

func (r *fakeTournamentRepo) Create(_ context.Context, t *models.Tournament) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.tournaments {
		if existing.Name == t.Name || existing.Slug == t.Slug {
			return repositories.ErrTournamentNameConflict
		}
	}
	t.ID = r.nextID
	r.nextID++
	r.tournaments[t.ID] = t
	return nil
}

func (r *fakeTournamentRepo) GetByID(_ context.Context, id int) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	return t, nil
}

func (r *fakeTournamentRepo) GetBySlug(_ context.Context, slug string) (*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tournaments {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, repositories.ErrTournamentNotFound
}

func (r *fakeTournamentRepo) List(_ context.Context) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*models.Tournament, 0, len(r.tournaments))
	for _, t := range r.tournaments {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeTournamentRepo) ListByStatus(_ context.Context, status models.TournamentStatus) ([]*models.Tournament, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Tournament
	for _, t := range r.tournaments {
		if t.Status == status {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeTournamentRepo) UpdateStatus(_ context.Context, id int, status models.TournamentStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tournaments[id]
	if !ok {
		return repositories.ErrTournamentNotFound
	}
	t.Status = status
	return nil
}

func (r *fakeTournamentRepo) Delete(_ context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tournaments[id]; !ok {
		return repositories.ErrTournamentNotFound
	}
	delete(r.tournaments, id)
	return nil
}

type fakeGameRepo struct {
	mu     sync.Mutex
	nextID int
	games  []*models.Game
}

func newFakeGameRepo() *fakeGameRepo {
	return &fakeGameRepo{nextID: 1}
}

func (r *fakeGameRepo) CreateIfPairAbsent(_ context.Context, _ repositories.SQLExecutor, game *models.Game) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.TournamentID != game.TournamentID || g.StageID != game.StageID || g.RoundNumber != game.RoundNumber {
			continue
		}
		if (g.Team1 == game.Team1 && g.Team2 == game.Team2) || (g.Team1 == game.Team2 && g.Team2 == game.Team1) {
			return false, nil
		}
	}
	game.ID = r.nextID
	r.nextID++
	r.games = append(r.games, game)
	return true, nil
}

func (r *fakeGameRepo) GetByID(_ context.Context, id int) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.ID == id {
			return g, nil
		}
	}
	return nil, repositories.ErrGameNotFound
}

func (r *fakeGameRepo) GameByMatchNum(_ context.Context, tournamentID, stageID, roundNumber, matchNum int) (*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.TournamentID == tournamentID && g.StageID == stageID && g.RoundNumber == roundNumber && g.MatchNum == matchNum {
			return g, nil
		}
	}
	return nil, nil
}

func (r *fakeGameRepo) GamesInRound(_ context.Context, tournamentID, stageID, roundNumber int) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Game
	for _, g := range r.games {
		if g.TournamentID == tournamentID && g.StageID == stageID && g.RoundNumber == roundNumber {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *fakeGameRepo) ListByTournament(_ context.Context, tournamentID int, stageID *int) ([]*models.Game, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Game
	for _, g := range r.games {
		if g.TournamentID != tournamentID {
			continue
		}
		if stageID != nil && g.StageID != *stageID {
			continue
		}
		out = append(out, g)
	}
	return out, nil
}

func (r *fakeGameRepo) CountUnplayedByStage(_ context.Context, tournamentID, stageID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, g := range r.games {
		if g.TournamentID == tournamentID && g.StageID == stageID && !g.Played() {
			count++
		}
	}
	return count, nil
}

func (r *fakeGameRepo) UpdateScorecard(_ context.Context, id int, scorecardJSON string, result models.GameResult, override *models.GameResult, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.ID != id {
			continue
		}
		if g.Version != expectedVersion {
			return repositories.ErrGameVersionConflict
		}
		card := scorecardJSON
		g.ScorecardJSON = &card
		g.Result = result
		g.ResultOverride = override
		g.Version++
		return nil
	}
	return repositories.ErrGameNotFound
}

func (r *fakeGameRepo) ReplaceTeam(_ context.Context, id int, team1, team2 string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.games {
		if g.ID == id {
			g.Team1, g.Team2 = team1, team2
			return nil
		}
	}
	return repositories.ErrGameNotFound
}

type fakeAliasRepo struct {
	mu      sync.Mutex
	nextID  int
	aliases []*models.TeamAlias
}

func newFakeAliasRepo() *fakeAliasRepo {
	return &fakeAliasRepo{nextID: 1}
}

func (r *fakeAliasRepo) Create(_ context.Context, _ repositories.SQLExecutor, alias *models.TeamAlias) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.aliases {
		if a.TournamentID != alias.TournamentID || a.StageID != alias.StageID {
			continue
		}
		if a.TeamID == alias.TeamID {
			return repositories.ErrTeamAliasConflict
		}
		if a.Placeholder != nil && alias.Placeholder != nil && *a.Placeholder == *alias.Placeholder {
			return repositories.ErrTeamAliasConflict
		}
	}
	alias.ID = r.nextID
	r.nextID++
	r.aliases = append(r.aliases, alias)
	return nil
}

func (r *fakeAliasRepo) ListByStage(_ context.Context, tournamentID, stageID int) ([]*models.TeamAlias, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TeamAlias
	for _, a := range r.aliases {
		if a.TournamentID == tournamentID && a.StageID == stageID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAliasRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.TeamAlias, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.TeamAlias
	for _, a := range r.aliases {
		if a.TournamentID == tournamentID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeAliasRepo) GetByTeamID(_ context.Context, tournamentID, stageID int, teamID string) (*models.TeamAlias, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.aliases {
		if a.TournamentID == tournamentID && a.StageID == stageID && a.TeamID == teamID {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAliasRepo) GetByPlaceholder(_ context.Context, tournamentID, stageID int, placeholder string) (*models.TeamAlias, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.aliases {
		if a.TournamentID == tournamentID && a.StageID == stageID && a.Placeholder != nil && *a.Placeholder == placeholder {
			return a, nil
		}
	}
	return nil, nil
}

func (r *fakeAliasRepo) DeleteByStage(_ context.Context, tournamentID, stageID int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var kept []*models.TeamAlias
	removed := 0
	for _, a := range r.aliases {
		if a.TournamentID == tournamentID && a.StageID == stageID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	r.aliases = kept
	return removed, nil
}

type fakePlayerRepo struct {
	mu      sync.Mutex
	nextID  int
	players []*models.Player
}

func newFakePlayerRepo() *fakePlayerRepo {
	return &fakePlayerRepo{nextID: 1}
}

func (r *fakePlayerRepo) Create(_ context.Context, player *models.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	player.ID = r.nextID
	r.nextID++
	r.players = append(r.players, player)
	return nil
}

func (r *fakePlayerRepo) GetByID(_ context.Context, id int) (*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.players {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, repositories.ErrPlayerNotFound
}

func (r *fakePlayerRepo) ListByTeam(_ context.Context, tournamentID int, teamID string) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Player
	for _, p := range r.players {
		if p.TournamentID == tournamentID && p.TeamID == teamID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakePlayerRepo) ListByTournament(_ context.Context, tournamentID int) ([]*models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Player
	for _, p := range r.players {
		if p.TournamentID == tournamentID {
			out = append(out, p)
		}
	}
	return out, nil
}
