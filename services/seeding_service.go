package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
)

// SeedingService carries teams from a finished stage into the seed slots
// of the next one: teams ranked by wins become T1..Tn aliases the playoff
// pairings refer to.
type SeedingService struct {
	tournaments repositories.TournamentRepository
	games       repositories.GameRepository
	aliases     repositories.TeamAliasRepository
	locks       *scopeLocks
	logger      *slog.Logger
}

func NewSeedingService(
	tournaments repositories.TournamentRepository,
	games repositories.GameRepository,
	aliases repositories.TeamAliasRepository,
	logger *slog.Logger,
) *SeedingService {
	return &SeedingService{
		tournaments: tournaments,
		games:       games,
		aliases:     aliases,
		locks:       newScopeLocks(),
		logger:      logger,
	}
}

// AssignSeeds ranks the teams of fromStage by wins and creates T1..Tn
// aliases in toStage. It is idempotent: teams that already hold a seed in
// toStage keep it, and occupied placeholders are never reassigned. It
// reports the number of aliases created.
func (s *SeedingService) AssignSeeds(ctx context.Context, tournamentID, fromStage, toStage int) (int, error) {
	unlock := s.locks.lock(stageScopeKey(tournamentID, toStage))
	defer unlock()

	if _, err := s.tournaments.GetByID(ctx, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return 0, ErrTournamentNotFound
		}
		return 0, err
	}

	sourceAliases, err := s.aliases.ListByStage(ctx, tournamentID, fromStage)
	if err != nil {
		return 0, err
	}
	if len(sourceAliases) == 0 {
		return 0, ErrNoTeamsToSeed
	}

	unplayed, err := s.games.CountUnplayedByStage(ctx, tournamentID, fromStage)
	if err != nil {
		return 0, err
	}
	if unplayed > 0 {
		return 0, fmt.Errorf("%w: stage %d has %d unplayed games", ErrStagePrerequisite, fromStage, unplayed)
	}

	games, err := s.games.ListByTournament(ctx, tournamentID, &fromStage)
	if err != nil {
		return 0, err
	}

	ranked := rankByWins(sourceAliases, games)

	existing, err := s.aliases.ListByStage(ctx, tournamentID, toStage)
	if err != nil {
		return 0, err
	}
	seededTeams := make(map[string]bool, len(existing))
	takenSlots := make(map[string]bool, len(existing))
	for _, alias := range existing {
		seededTeams[alias.TeamID] = true
		if alias.Placeholder != nil {
			takenSlots[*alias.Placeholder] = true
		}
	}

	created := 0
	for i, team := range ranked {
		placeholder := fmt.Sprintf("T%d", i+1)
		if seededTeams[team.TeamID] || takenSlots[placeholder] {
			continue
		}
		alias := &models.TeamAlias{
			TournamentID: tournamentID,
			StageID:      toStage,
			TeamID:       team.TeamID,
			TeamName:     team.TeamName,
			Placeholder:  &placeholder,
		}
		if err := s.aliases.Create(ctx, nil, alias); err != nil {
			if errors.Is(err, repositories.ErrTeamAliasConflict) {
				// A concurrent call got there first; the seed is in place.
				continue
			}
			return created, err
		}
		created++
	}

	s.logger.Info("seeds assigned",
		"tournament_id", tournamentID,
		"from_stage", fromStage,
		"to_stage", toStage,
		"created", created,
	)
	return created, nil
}

// ClearSeeds removes every alias of the stage so an admin can re-run
// seeding from scratch. It reports the number of aliases removed.
func (s *SeedingService) ClearSeeds(ctx context.Context, tournamentID, stageID int) (int, error) {
	unlock := s.locks.lock(stageScopeKey(tournamentID, stageID))
	defer unlock()

	removed, err := s.aliases.DeleteByStage(ctx, tournamentID, stageID)
	if err != nil {
		return 0, err
	}
	s.logger.Info("seeds cleared", "tournament_id", tournamentID, "stage_id", stageID, "removed", removed)
	return removed, nil
}

// rankByWins orders teams by wins descending, name ascending for a
// deterministic order on equal records.
func rankByWins(aliases []*models.TeamAlias, games []*models.Game) []*models.TeamAlias {
	wins := make(map[string]int, len(aliases))
	for _, game := range games {
		switch game.EffectiveResult() {
		case models.ResultTeam1Win:
			wins[game.Team1]++
		case models.ResultTeam2Win:
			wins[game.Team2]++
		}
	}

	ranked := make([]*models.TeamAlias, len(aliases))
	copy(ranked, aliases)
	sort.SliceStable(ranked, func(i, j int) bool {
		if wins[ranked[i].TeamID] != wins[ranked[j].TeamID] {
			return wins[ranked[i].TeamID] > wins[ranked[j].TeamID]
		}
		return ranked[i].TeamName < ranked[j].TeamName
	})
	return ranked
}
