package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"

	"github.com/Dosada05/quizbowl-system/brackets"
	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
	"github.com/Dosada05/quizbowl-system/scoring"
	"github.com/Dosada05/quizbowl-system/storage"
	"github.com/google/uuid"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"golang.org/x/sync/errgroup"
)

// ScoreService finalizes games from submitted scorecards and derives
// standings from the finalized set.
type ScoreService struct {
	games    repositories.GameRepository
	aliases  repositories.TeamAliasRepository
	players  repositories.PlayerRepository
	resolver *brackets.Resolver
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewScoreService builds the service. uploader may be nil, in which case
// finalized scorecards are not archived.
func NewScoreService(
	games repositories.GameRepository,
	aliases repositories.TeamAliasRepository,
	players repositories.PlayerRepository,
	uploader storage.FileUploader,
	logger *slog.Logger,
) *ScoreService {
	sources := resolverSources{games: games, aliases: aliases}
	return &ScoreService{
		games:    games,
		aliases:  aliases,
		players:  players,
		resolver: brackets.NewResolver(sources, sources),
		uploader: uploader,
		logger:   logger,
	}
}

// SubmitScorecard normalizes and validates the scorecard, derives the
// result, and writes both to the game under an optimistic version check.
// Dynamic team slots are resolved and pinned first; a pending reference
// means the game cannot be scored yet. The returned result is the
// effective one, the override when provided.
func (s *ScoreService) SubmitScorecard(ctx context.Context, gameID int, raw json.RawMessage, override *models.GameResult) (models.GameResult, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, repositories.ErrGameNotFound) {
			return models.ResultNotPlayed, ErrGameNotFound
		}
		return models.ResultNotPlayed, err
	}

	if override != nil && (!override.Valid() || *override == models.ResultNotPlayed) {
		return models.ResultNotPlayed, fmt.Errorf("%w: unknown result override %d", ErrValidationFailed, *override)
	}

	if err := s.pinTeams(ctx, game); err != nil {
		return models.ResultNotPlayed, err
	}

	rosters, err := s.rosters(ctx, game)
	if err != nil {
		return models.ResultNotPlayed, err
	}

	cycles, err := scoring.NormalizeScorecard(raw, rosters)
	if err != nil {
		return models.ResultNotPlayed, fmt.Errorf("%w: %v", ErrInvalidScorecard, err)
	}
	if err := scoring.ValidateCycles(cycles); err != nil {
		return models.ResultNotPlayed, fmt.Errorf("%w: %v", ErrInvalidScorecard, err)
	}

	result := scoring.DeriveResult(cycles)
	canonical, err := json.Marshal(cycles)
	if err != nil {
		return models.ResultNotPlayed, fmt.Errorf("failed to encode canonical scorecard: %w", err)
	}

	err = s.games.UpdateScorecard(ctx, game.ID, string(canonical), result, override, game.Version)
	if err != nil {
		switch {
		case errors.Is(err, repositories.ErrGameVersionConflict):
			return models.ResultNotPlayed, ErrConcurrentModification
		case errors.Is(err, repositories.ErrGameNotFound):
			return models.ResultNotPlayed, ErrGameNotFound
		}
		return models.ResultNotPlayed, err
	}

	s.archive(ctx, game, canonical)

	if override != nil {
		return *override, nil
	}
	return result, nil
}

// pinTeams resolves any dynamic reference still stored on the game to the
// concrete team it now names and writes the concrete ids back, so the
// game row is stable from this point on.
func (s *ScoreService) pinTeams(ctx context.Context, game *models.Game) error {
	team1, changed1, err := s.resolveTeam(ctx, game, game.Team1)
	if err != nil {
		return err
	}
	team2, changed2, err := s.resolveTeam(ctx, game, game.Team2)
	if err != nil {
		return err
	}
	if !changed1 && !changed2 {
		return nil
	}
	if err := s.games.ReplaceTeam(ctx, game.ID, team1, team2); err != nil {
		return err
	}
	game.Team1, game.Team2 = team1, team2
	return nil
}

func (s *ScoreService) resolveTeam(ctx context.Context, game *models.Game, slot string) (string, bool, error) {
	if !brackets.IsDynamic(slot) && !brackets.IsSeedPlaceholder(slot) {
		return slot, false, nil
	}
	resolution, err := s.resolver.ResolveSlot(ctx, game.TournamentID, game.StageID, slot)
	if err != nil {
		return "", false, err
	}
	if resolution.Outcome != brackets.OutcomeResolved {
		return "", false, fmt.Errorf("%w: %s", ErrTeamsUnresolved, slot)
	}
	if resolution.TeamID == slot {
		// Seed placeholder with no alias assigned yet.
		return "", false, fmt.Errorf("%w: %s", ErrTeamsUnresolved, slot)
	}
	return resolution.TeamID, true, nil
}

func (s *ScoreService) rosters(ctx context.Context, game *models.Game) (scoring.Rosters, error) {
	var rosters scoring.Rosters
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		players, err := s.players.ListByTeam(ctx, game.TournamentID, game.Team1)
		if err != nil {
			return err
		}
		rosters.Team1 = playerNames(players)
		return nil
	})
	g.Go(func() error {
		players, err := s.players.ListByTeam(ctx, game.TournamentID, game.Team2)
		if err != nil {
			return err
		}
		rosters.Team2 = playerNames(players)
		return nil
	})
	if err := g.Wait(); err != nil {
		return scoring.Rosters{}, err
	}
	return rosters, nil
}

func playerNames(players []*models.Player) []string {
	names := make([]string, len(players))
	for i, p := range players {
		names[i] = p.Name
	}
	return names
}

// archive uploads the canonical scorecard for audit. Failures are logged
// and swallowed: the database row is the source of truth.
func (s *ScoreService) archive(ctx context.Context, game *models.Game, canonical []byte) {
	if s.uploader == nil {
		return
	}
	key := fmt.Sprintf("scorecards/%d/%d/%s.json", game.TournamentID, game.ID, uuid.NewString())
	if _, err := s.uploader.Upload(ctx, key, "application/json", bytes.NewReader(canonical)); err != nil {
		s.logger.Warn("scorecard archive failed", "game_id", game.ID, "key", key, "error", err)
	}
}

// ComputeStandings aggregates the played games in scope into one line per
// team, ordered by wins then total points. Standings are recomputed on
// every call, never cached or stored.
func (s *ScoreService) ComputeStandings(ctx context.Context, tournamentID int, stageID *int) ([]*models.Standing, error) {
	games, aliases, _, err := s.fetchScope(ctx, tournamentID, stageID, false)
	if err != nil {
		return nil, err
	}

	names := aliasNames(aliases)
	rows := make(map[string]*models.Standing)
	line := func(teamID string) *models.Standing {
		if row, ok := rows[teamID]; ok {
			return row
		}
		row := &models.Standing{TeamID: teamID, TeamName: s.displayName(teamID, names)}
		rows[teamID] = row
		return row
	}

	for _, game := range games {
		if !game.Played() || brackets.IsDynamic(game.Team1) || brackets.IsDynamic(game.Team2) {
			continue
		}
		cycles, err := game.Cycles()
		if err != nil {
			return nil, err
		}

		row1, row2 := line(game.Team1), line(game.Team2)
		row1.GamesPlayed++
		row2.GamesPlayed++

		switch game.EffectiveResult() {
		case models.ResultTeam1Win:
			row1.Wins++
			row2.Losses++
		case models.ResultTeam2Win:
			row2.Wins++
			row1.Losses++
		case models.ResultTie:
			row1.Ties++
			row2.Ties++
		}

		for _, cycle := range cycles {
			row1.TossupPoints += sumPoints(cycle.Team1)
			row2.TossupPoints += sumPoints(cycle.Team2)
			row1.BonusPoints += cycle.Team1Bonus
			row2.BonusPoints += cycle.Team2Bonus
			switch scoring.TossupWinner(cycle) {
			case 1:
				row1.BonusHeard++
			case 2:
				row2.BonusHeard++
			}
		}
	}

	standings := make([]*models.Standing, 0, len(rows))
	for _, row := range rows {
		row.TotalPoints = row.TossupPoints + row.BonusPoints
		if row.GamesPlayed > 0 {
			row.WinPct = round1(float64(row.Wins) / float64(row.GamesPlayed) * 100)
		}
		if row.BonusHeard > 0 {
			row.BonusConversionRate = round2(float64(row.BonusPoints) / float64(row.BonusHeard))
		}
		standings = append(standings, row)
	}
	sort.Slice(standings, func(i, j int) bool {
		if standings[i].Wins != standings[j].Wins {
			return standings[i].Wins > standings[j].Wins
		}
		if standings[i].TotalPoints != standings[j].TotalPoints {
			return standings[i].TotalPoints > standings[j].TotalPoints
		}
		return standings[i].TeamName < standings[j].TeamName
	})
	return standings, nil
}

// PlayerStats aggregates individual lines over the played games in scope.
// A player's tossups heard is the number of scored cycles in the games
// their team appeared in.
func (s *ScoreService) PlayerStats(ctx context.Context, tournamentID int, stageID *int) ([]*models.PlayerLine, error) {
	games, aliases, players, err := s.fetchScope(ctx, tournamentID, stageID, true)
	if err != nil {
		return nil, err
	}

	names := aliasNames(aliases)
	byID := make(map[string]*models.Player, len(players))
	byName := make(map[string]*models.Player, len(players))
	byTeam := make(map[string][]*models.Player)
	for _, p := range players {
		byID[strconv.Itoa(p.ID)] = p
		byName[p.Name] = p
		byTeam[p.TeamID] = append(byTeam[p.TeamID], p)
	}

	lines := make(map[int]*models.PlayerLine)
	line := func(p *models.Player) *models.PlayerLine {
		if l, ok := lines[p.ID]; ok {
			return l
		}
		l := &models.PlayerLine{
			PlayerID: strconv.Itoa(p.ID),
			Name:     p.Name,
			TeamID:   p.TeamID,
			TeamName: s.displayName(p.TeamID, names),
		}
		lines[p.ID] = l
		return l
	}

	for _, game := range games {
		if !game.Played() {
			continue
		}
		cycles, err := game.Cycles()
		if err != nil {
			return nil, err
		}

		heard := 0
		for _, cycle := range cycles {
			if cycle.Empty() {
				continue
			}
			heard++
			for _, side := range []map[string]int{cycle.Team1, cycle.Team2} {
				for key, points := range side {
					player := lookupPlayer(key, byID, byName)
					if player == nil {
						continue
					}
					l := line(player)
					l.TossupPoints += points
					switch points {
					case models.PointsPower:
						l.Powers++
					case models.PointsGet:
						l.Gets++
					case models.PointsNeg:
						l.Negs++
					}
				}
			}
		}
		for _, teamID := range []string{game.Team1, game.Team2} {
			for _, p := range byTeam[teamID] {
				line(p).TossupsHeard += heard
			}
		}
	}

	result := make([]*models.PlayerLine, 0, len(lines))
	for _, l := range lines {
		if l.TossupsHeard > 0 {
			l.PPTH = round2(float64(l.TossupPoints) / float64(l.TossupsHeard))
		}
		result = append(result, l)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].TossupPoints != result[j].TossupPoints {
			return result[i].TossupPoints > result[j].TossupPoints
		}
		return result[i].Name < result[j].Name
	})
	return result, nil
}

func (s *ScoreService) fetchScope(ctx context.Context, tournamentID int, stageID *int, withPlayers bool) ([]*models.Game, []*models.TeamAlias, []*models.Player, error) {
	var (
		games   []*models.Game
		aliases []*models.TeamAlias
		players []*models.Player
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		games, err = s.games.ListByTournament(ctx, tournamentID, stageID)
		return err
	})
	g.Go(func() error {
		var err error
		aliases, err = s.aliases.ListByTournament(ctx, tournamentID)
		return err
	})
	if withPlayers {
		g.Go(func() error {
			var err error
			players, err = s.players.ListByTournament(ctx, tournamentID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, nil, err
	}
	return games, aliases, players, nil
}

// displayName prefers an exact alias for the team id, then the closest
// alias name for scorecards that recorded the name instead of the id.
func (s *ScoreService) displayName(teamID string, names map[string]string) string {
	if name, ok := names[teamID]; ok {
		return name
	}
	candidates := make([]string, 0, len(names))
	for _, name := range names {
		candidates = append(candidates, name)
	}
	if ranks := fuzzy.RankFindNormalizedFold(teamID, candidates); len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	return teamID
}

func aliasNames(aliases []*models.TeamAlias) map[string]string {
	names := make(map[string]string, len(aliases))
	for _, alias := range aliases {
		names[alias.TeamID] = alias.TeamName
	}
	return names
}

func lookupPlayer(key string, byID, byName map[string]*models.Player) *models.Player {
	if p, ok := byID[key]; ok {
		return p
	}
	return byName[key]
}

func sumPoints(side map[string]int) int {
	total := 0
	for _, points := range side {
		total += points
	}
	return total
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
