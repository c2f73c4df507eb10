package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
)

// scopeLocks serializes mutating operations per scope key, e.g. one
// materialization per (tournament, stage) at a time. The repository's
// atomic insert is the hard guarantee; this keeps concurrent admin
// triggers from doing redundant work.
type scopeLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newScopeLocks() *scopeLocks {
	return &scopeLocks{locks: make(map[string]*sync.Mutex)}
}

func (s *scopeLocks) lock(key string) func() {
	s.mu.Lock()
	l, ok := s.locks[key]
	if !ok {
		l = &sync.Mutex{}
		s.locks[key] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func stageScopeKey(tournamentID, stageID int) string {
	return fmt.Sprintf("%d/%d", tournamentID, stageID)
}

// resolverSources adapts the repositories to the lookup interfaces the
// bracket resolver wants.
type resolverSources struct {
	games   repositories.GameRepository
	aliases repositories.TeamAliasRepository
}

func (s resolverSources) GameByMatchNum(ctx context.Context, tournamentID, stageID, roundNumber, matchNum int) (*models.Game, error) {
	return s.games.GameByMatchNum(ctx, tournamentID, stageID, roundNumber, matchNum)
}

func (s resolverSources) GamesInRound(ctx context.Context, tournamentID, stageID, roundNumber int) ([]*models.Game, error) {
	return s.games.GamesInRound(ctx, tournamentID, stageID, roundNumber)
}

func (s resolverSources) AliasByTeamID(ctx context.Context, tournamentID, stageID int, teamID string) (*models.TeamAlias, error) {
	return s.aliases.GetByTeamID(ctx, tournamentID, stageID, teamID)
}

func (s resolverSources) AliasByPlaceholder(ctx context.Context, tournamentID, stageID int, placeholder string) (*models.TeamAlias, error) {
	return s.aliases.GetByPlaceholder(ctx, tournamentID, stageID, placeholder)
}

func isValidStatusTransition(current, next models.TournamentStatus) bool {
	if current == next {
		return true
	}
	allowed := map[models.TournamentStatus][]models.TournamentStatus{
		models.StatusPlanning:     {models.StatusRegistration, models.StatusActive},
		models.StatusRegistration: {models.StatusActive},
		models.StatusActive:       {models.StatusCompleted},
		models.StatusCompleted:    {},
	}
	for _, n := range allowed[current] {
		if next == n {
			return true
		}
	}
	return false
}
