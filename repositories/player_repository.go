package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/quizbowl-system/models"
)

var ErrPlayerNotFound = errors.New("player not found")

type PlayerRepository interface {
	Create(ctx context.Context, player *models.Player) error
	GetByID(ctx context.Context, id int) (*models.Player, error)
	ListByTeam(ctx context.Context, tournamentID int, teamID string) ([]*models.Player, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.Player, error)
}

type postgresPlayerRepository struct {
	db *sql.DB
}

func NewPostgresPlayerRepository(db *sql.DB) PlayerRepository {
	return &postgresPlayerRepository{db: db}
}

func (r *postgresPlayerRepository) Create(ctx context.Context, player *models.Player) error {
	query := `
		INSERT INTO players (tournament_id, name, team_id, alias_id)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	return r.db.QueryRowContext(ctx, query,
		player.TournamentID, player.Name, player.TeamID, player.AliasID,
	).Scan(&player.ID)
}

func (r *postgresPlayerRepository) GetByID(ctx context.Context, id int) (*models.Player, error) {
	query := `SELECT id, tournament_id, name, team_id, alias_id FROM players WHERE id = $1`
	p := &models.Player{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&p.ID, &p.TournamentID, &p.Name, &p.TeamID, &p.AliasID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlayerNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *postgresPlayerRepository) ListByTeam(ctx context.Context, tournamentID int, teamID string) ([]*models.Player, error) {
	query := `
		SELECT id, tournament_id, name, team_id, alias_id FROM players
		WHERE tournament_id = $1 AND team_id = $2
		ORDER BY id`
	return r.list(ctx, query, tournamentID, teamID)
}

func (r *postgresPlayerRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Player, error) {
	query := `
		SELECT id, tournament_id, name, team_id, alias_id FROM players
		WHERE tournament_id = $1
		ORDER BY team_id, id`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresPlayerRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Player, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.Player
	for rows.Next() {
		p := &models.Player{}
		if err := rows.Scan(&p.ID, &p.TournamentID, &p.Name, &p.TeamID, &p.AliasID); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
