package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/Dosada05/quizbowl-system/repositories"
	"github.com/Dosada05/quizbowl-system/utils"
	"github.com/gosimple/slug"
)

const joinCodeLength = 10

type CreateTournamentInput struct {
	Name     string          `json:"name"`
	Date     time.Time       `json:"date"`
	Location *string         `json:"location,omitempty"`
	Format   json.RawMessage `json:"format"`
}

type TournamentService struct {
	tournaments repositories.TournamentRepository
	aliases     repositories.TeamAliasRepository
	players     repositories.PlayerRepository
}

func NewTournamentService(
	tournaments repositories.TournamentRepository,
	aliases repositories.TeamAliasRepository,
	players repositories.PlayerRepository,
) *TournamentService {
	return &TournamentService{tournaments: tournaments, aliases: aliases, players: players}
}

func (s *TournamentService) Create(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameRequired
	}

	spec, err := models.ParseFormatSpec(input.Format)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatInvalid, err)
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormatInvalid, err)
	}

	joinCode, err := utils.GenerateJoinCode(joinCodeLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate join code: %w", err)
	}

	tournament := &models.Tournament{
		Name:       name,
		Slug:       slug.Make(name),
		Date:       input.Date,
		Location:   input.Location,
		JoinCode:   joinCode,
		FormatJSON: string(input.Format),
		Status:     models.StatusPlanning,
		Format:     spec,
	}

	if err := s.tournaments.Create(ctx, tournament); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrTournamentNameConflict
		}
		return nil, err
	}
	return tournament, nil
}

func (s *TournamentService) Get(ctx context.Context, id int) (*models.Tournament, error) {
	tournament, err := s.tournaments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *TournamentService) GetBySlug(ctx context.Context, tournamentSlug string) (*models.Tournament, error) {
	tournament, err := s.tournaments.GetBySlug(ctx, tournamentSlug)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return tournament, nil
}

func (s *TournamentService) List(ctx context.Context) ([]*models.Tournament, error) {
	return s.tournaments.List(ctx)
}

func (s *TournamentService) UpdateStatus(ctx context.Context, id int, status models.TournamentStatus) (*models.Tournament, error) {
	switch status {
	case models.StatusPlanning, models.StatusRegistration, models.StatusActive, models.StatusCompleted:
	default:
		return nil, ErrTournamentInvalidStatus
	}

	tournament, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(tournament.Status, status) {
		return nil, ErrTournamentInvalidStatusTransition
	}

	if err := s.tournaments.UpdateStatus(ctx, id, status); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	tournament.Status = status
	return tournament, nil
}

func (s *TournamentService) Delete(ctx context.Context, id int) error {
	err := s.tournaments.Delete(ctx, id)
	if errors.Is(err, repositories.ErrTournamentNotFound) {
		return ErrTournamentNotFound
	}
	return err
}

// AssignTeam registers a prelim team: an alias row in stage 1 binding the
// team id the format's pairings use to the display name.
func (s *TournamentService) AssignTeam(ctx context.Context, tournamentID int, teamID, teamName string) (*models.TeamAlias, error) {
	teamID = strings.TrimSpace(teamID)
	teamName = strings.TrimSpace(teamName)
	if teamID == "" || teamName == "" {
		return nil, ErrTeamNameRequired
	}
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}

	alias := &models.TeamAlias{
		TournamentID: tournamentID,
		StageID:      1,
		TeamID:       teamID,
		TeamName:     teamName,
	}
	if err := s.aliases.Create(ctx, nil, alias); err != nil {
		if errors.Is(err, repositories.ErrTeamAliasConflict) {
			return nil, ErrTeamAliasConflict
		}
		return nil, err
	}
	return alias, nil
}

func (s *TournamentService) ListTeams(ctx context.Context, tournamentID, stageID int) ([]*models.TeamAlias, error) {
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}
	return s.aliases.ListByStage(ctx, tournamentID, stageID)
}

func (s *TournamentService) AddPlayer(ctx context.Context, tournamentID int, teamID, name string) (*models.Player, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: player name is required", ErrValidationFailed)
	}
	if _, err := s.Get(ctx, tournamentID); err != nil {
		return nil, err
	}

	alias, err := s.aliases.GetByTeamID(ctx, tournamentID, 1, teamID)
	if err != nil {
		return nil, err
	}
	player := &models.Player{
		TournamentID: tournamentID,
		Name:         name,
		TeamID:       teamID,
	}
	if alias != nil {
		player.AliasID = &alias.ID
	}
	if err := s.players.Create(ctx, player); err != nil {
		return nil, err
	}
	return player, nil
}
