package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/quizbowl-system/brackets"
	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
)

// ScheduleEntry is one game rendered for display: team slots resolved to
// names where possible, pending references rendered as TBD with the
// blocking game attached.
type ScheduleEntry struct {
	GameID      int               `json:"game_id"`
	StageID     int               `json:"stage_id"`
	RoundNumber int               `json:"round_number"`
	MatchNum    int               `json:"match_num"`
	Team1       ScheduleSlot      `json:"team1"`
	Team2       ScheduleSlot      `json:"team2"`
	Result      models.GameResult `json:"result"`
	Played      bool              `json:"played"`
}

type ScheduleSlot struct {
	TeamID  string                `json:"team_id"`
	Name    string                `json:"name"`
	Pending *brackets.PendingGame `json:"pending,omitempty"`
}

type ScheduleService struct {
	tournaments repositories.TournamentRepository
	games       repositories.GameRepository
	resolver    *brackets.Resolver
	logger      *slog.Logger
}

func NewScheduleService(
	tournaments repositories.TournamentRepository,
	games repositories.GameRepository,
	aliases repositories.TeamAliasRepository,
	logger *slog.Logger,
) *ScheduleService {
	sources := resolverSources{games: games, aliases: aliases}
	return &ScheduleService{
		tournaments: tournaments,
		games:       games,
		resolver:    brackets.NewResolver(sources, sources),
		logger:      logger,
	}
}

// Schedule lists the games of a tournament, optionally narrowed to one
// stage, with every team slot resolved for display.
func (s *ScheduleService) Schedule(ctx context.Context, tournamentID int, stageID *int) ([]*ScheduleEntry, error) {
	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	games, err := s.games.ListByTournament(ctx, tournamentID, stageID)
	if err != nil {
		return nil, err
	}

	entries := make([]*ScheduleEntry, 0, len(games))
	for _, game := range games {
		team1, err := s.slot(ctx, game, game.Team1)
		if err != nil {
			return nil, err
		}
		team2, err := s.slot(ctx, game, game.Team2)
		if err != nil {
			return nil, err
		}
		entries = append(entries, &ScheduleEntry{
			GameID:      game.ID,
			StageID:     game.StageID,
			RoundNumber: game.RoundNumber,
			MatchNum:    game.MatchNum,
			Team1:       team1,
			Team2:       team2,
			Result:      game.EffectiveResult(),
			Played:      game.Played(),
		})
	}
	return entries, nil
}

func (s *ScheduleService) slot(ctx context.Context, game *models.Game, slot string) (ScheduleSlot, error) {
	resolution, err := s.resolver.ResolveSlot(ctx, game.TournamentID, game.StageID, slot)
	if err != nil {
		if errors.Is(err, brackets.ErrGameNotFound) || errors.Is(err, brackets.ErrRecursionLimit) {
			// Render the raw slot rather than failing the whole schedule.
			s.logger.Warn("unresolvable schedule slot", "game_id", game.ID, "slot", slot, "error", err)
			return ScheduleSlot{TeamID: slot, Name: slot}, nil
		}
		return ScheduleSlot{}, err
	}

	switch resolution.Outcome {
	case brackets.OutcomePending:
		return ScheduleSlot{TeamID: slot, Name: "TBD", Pending: resolution.Pending}, nil
	case brackets.OutcomeTie:
		return ScheduleSlot{TeamID: slot, Name: "TBD"}, nil
	default:
		return ScheduleSlot{TeamID: resolution.TeamID, Name: resolution.TeamName}, nil
	}
}
