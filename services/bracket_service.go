package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Dosada05/quizbowl-system/brackets"
	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
)

// BracketService turns a tournament's format document into game rows.
// Materialization is idempotent: the insert skips pairings whose
// unordered team pair already has a game in the round, so re-running a
// stage never duplicates games and placeholder games created earlier
// survive a re-run with resolved names.
type BracketService struct {
	tournaments repositories.TournamentRepository
	games       repositories.GameRepository
	aliases     repositories.TeamAliasRepository
	seeding     *SeedingService
	resolver    *brackets.Resolver
	locks       *scopeLocks
	logger      *slog.Logger
}

func NewBracketService(
	tournaments repositories.TournamentRepository,
	games repositories.GameRepository,
	aliases repositories.TeamAliasRepository,
	seeding *SeedingService,
	logger *slog.Logger,
) *BracketService {
	sources := resolverSources{games: games, aliases: aliases}
	return &BracketService{
		tournaments: tournaments,
		games:       games,
		aliases:     aliases,
		seeding:     seeding,
		resolver:    brackets.NewResolver(sources, sources),
		locks:       newScopeLocks(),
		logger:      logger,
	}
}

// MaterializeStage creates the games of one stage from the format
// document and reports how many rows were inserted. For stages past the
// first it requires the previous stage to be fully materialized and
// played, and assigns seeds automatically when the stage's pairings use
// seed placeholders that have no aliases yet.
func (s *BracketService) MaterializeStage(ctx context.Context, tournamentID, stageID int) (int, error) {
	unlock := s.locks.lock(stageScopeKey(tournamentID, stageID))
	defer unlock()

	tournament, err := s.tournaments.GetByID(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, err
	}

	spec, err := tournament.ParseFormat()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrFormatInvalid, err)
	}
	stage := spec.Stage(stageID)
	if stage == nil {
		return 0, fmt.Errorf("%w: stage %d", ErrStageNotFound, stageID)
	}

	if prev := previousStage(spec, stageID); prev != nil {
		if err := s.checkStageComplete(ctx, tournament, prev.StageID); err != nil {
			return 0, err
		}
		if err := s.ensureSeeds(ctx, tournamentID, prev.StageID, stage); err != nil {
			return 0, err
		}
	}

	created := 0
	for _, round := range stage.Rounds {
		for i, pairing := range round.Pairings {
			team1, err := s.resolveSlot(ctx, tournamentID, stageID, pairing.Teams[0])
			if err != nil {
				return created, err
			}
			team2, err := s.resolveSlot(ctx, tournamentID, stageID, pairing.Teams[1])
			if err != nil {
				return created, err
			}

			game := &models.Game{
				TournamentID: tournamentID,
				StageID:      stageID,
				RoundNumber:  round.RoundInStage,
				MatchNum:     i + 1,
				Team1:        team1,
				Team2:        team2,
				Result:       models.ResultNotPlayed,
			}
			inserted, err := s.games.CreateIfPairAbsent(ctx, nil, game)
			if err != nil {
				return created, err
			}
			if inserted {
				created++
			}
		}
	}

	s.logger.Info("stage materialized",
		"tournament_id", tournamentID,
		"stage_id", stageID,
		"created", created,
	)
	return created, nil
}

// resolveSlot maps a pairing slot to the team id stored on the game row.
// Dynamic references are stored verbatim and resolved later, at scoring
// and display time; seed placeholders and concrete ids resolve now.
func (s *BracketService) resolveSlot(ctx context.Context, tournamentID, stageID int, slot string) (string, error) {
	if brackets.IsDynamic(slot) {
		return slot, nil
	}
	resolution, err := s.resolver.ResolveSlot(ctx, tournamentID, stageID, slot)
	if err != nil {
		return "", err
	}
	return resolution.TeamID, nil
}

func (s *BracketService) checkStageComplete(ctx context.Context, tournament *models.Tournament, stageID int) error {
	spec, err := tournament.ParseFormat()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFormatInvalid, err)
	}

	games, err := s.games.ListByTournament(ctx, tournament.ID, &stageID)
	if err != nil {
		return err
	}
	if expected := spec.ExpectedGames(stageID); len(games) < expected {
		return fmt.Errorf("%w: stage %d has %d of %d games", ErrStagePrerequisite, stageID, len(games), expected)
	}

	unplayed, err := s.games.CountUnplayedByStage(ctx, tournament.ID, stageID)
	if err != nil {
		return err
	}
	if unplayed > 0 {
		return fmt.Errorf("%w: stage %d has %d unplayed games", ErrStagePrerequisite, stageID, unplayed)
	}
	return nil
}

// ensureSeeds assigns seeds from the previous stage when the stage's
// pairings use seed placeholders and none exist yet.
func (s *BracketService) ensureSeeds(ctx context.Context, tournamentID, fromStage int, stage *models.FormatStage) error {
	if !stageUsesSeeds(stage) {
		return nil
	}
	existing, err := s.aliases.ListByStage(ctx, tournamentID, stage.StageID)
	if err != nil {
		return err
	}
	for _, alias := range existing {
		if alias.Placeholder != nil {
			return nil
		}
	}
	_, err = s.seeding.AssignSeeds(ctx, tournamentID, fromStage, stage.StageID)
	return err
}

func stageUsesSeeds(stage *models.FormatStage) bool {
	for _, round := range stage.Rounds {
		for _, pairing := range round.Pairings {
			for _, slot := range pairing.Teams {
				if brackets.IsSeedPlaceholder(slot) {
					return true
				}
			}
		}
	}
	return false
}

func previousStage(spec *models.FormatSpec, stageID int) *models.FormatStage {
	var prev *models.FormatStage
	for i := range spec.Stages {
		if spec.Stages[i].StageID == stageID {
			return prev
		}
		prev = &spec.Stages[i]
	}
	return nil
}
