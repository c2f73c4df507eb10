package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/quizbowl-system/models"
	"github.com/lib/pq"
)

var (
	ErrTeamAliasNotFound = errors.New("team alias not found")
	ErrTeamAliasConflict = errors.New("team alias or placeholder already exists for this stage")
)

type TeamAliasRepository interface {
	Create(ctx context.Context, exec SQLExecutor, alias *models.TeamAlias) error
	ListByStage(ctx context.Context, tournamentID, stageID int) ([]*models.TeamAlias, error)
	ListByTournament(ctx context.Context, tournamentID int) ([]*models.TeamAlias, error)
	GetByTeamID(ctx context.Context, tournamentID, stageID int, teamID string) (*models.TeamAlias, error)
	GetByPlaceholder(ctx context.Context, tournamentID, stageID int, placeholder string) (*models.TeamAlias, error)
	DeleteByStage(ctx context.Context, tournamentID, stageID int) (int, error)
}

type postgresTeamAliasRepository struct {
	db *sql.DB
}

func NewPostgresTeamAliasRepository(db *sql.DB) TeamAliasRepository {
	return &postgresTeamAliasRepository{db: db}
}

func (r *postgresTeamAliasRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const aliasColumns = `id, tournament_id, stage_id, team_id, team_name, placeholder`

func (r *postgresTeamAliasRepository) Create(ctx context.Context, exec SQLExecutor, alias *models.TeamAlias) error {
	query := `
		INSERT INTO team_aliases (tournament_id, stage_id, team_id, team_name, placeholder)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	err := r.exec(exec).QueryRowContext(ctx, query,
		alias.TournamentID,
		alias.StageID,
		alias.TeamID,
		alias.TeamName,
		alias.Placeholder,
	).Scan(&alias.ID)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return ErrTeamAliasConflict
	}
	return err
}

func (r *postgresTeamAliasRepository) ListByStage(ctx context.Context, tournamentID, stageID int) ([]*models.TeamAlias, error) {
	query := `
		SELECT ` + aliasColumns + ` FROM team_aliases
		WHERE tournament_id = $1 AND stage_id = $2
		ORDER BY id`
	return r.list(ctx, query, tournamentID, stageID)
}

func (r *postgresTeamAliasRepository) ListByTournament(ctx context.Context, tournamentID int) ([]*models.TeamAlias, error) {
	query := `
		SELECT ` + aliasColumns + ` FROM team_aliases
		WHERE tournament_id = $1
		ORDER BY stage_id, id`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresTeamAliasRepository) GetByTeamID(ctx context.Context, tournamentID, stageID int, teamID string) (*models.TeamAlias, error) {
	query := `
		SELECT ` + aliasColumns + ` FROM team_aliases
		WHERE tournament_id = $1 AND stage_id = $2 AND team_id = $3
		ORDER BY id DESC`
	return r.one(ctx, query, tournamentID, stageID, teamID)
}

func (r *postgresTeamAliasRepository) GetByPlaceholder(ctx context.Context, tournamentID, stageID int, placeholder string) (*models.TeamAlias, error) {
	query := `
		SELECT ` + aliasColumns + ` FROM team_aliases
		WHERE tournament_id = $1 AND stage_id = $2 AND placeholder = $3
		ORDER BY id DESC`
	return r.one(ctx, query, tournamentID, stageID, placeholder)
}

// DeleteByStage clears a stage's aliases, the explicit admin reset before
// re-seeding. Returns the number of rows removed.
func (r *postgresTeamAliasRepository) DeleteByStage(ctx context.Context, tournamentID, stageID int) (int, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM team_aliases WHERE tournament_id = $1 AND stage_id = $2`,
		tournamentID, stageID)
	if err != nil {
		return 0, err
	}
	rows, err := result.RowsAffected()
	return int(rows), err
}

func (r *postgresTeamAliasRepository) one(ctx context.Context, query string, args ...interface{}) (*models.TeamAlias, error) {
	a := &models.TeamAlias{}
	err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&a.ID, &a.TournamentID, &a.StageID, &a.TeamID, &a.TeamName, &a.Placeholder,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *postgresTeamAliasRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.TeamAlias, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var aliases []*models.TeamAlias
	for rows.Next() {
		a := &models.TeamAlias{}
		if err := rows.Scan(&a.ID, &a.TournamentID, &a.StageID, &a.TeamID, &a.TeamName, &a.Placeholder); err != nil {
			return nil, err
		}
		aliases = append(aliases, a)
	}
	return aliases, rows.Err()
}
