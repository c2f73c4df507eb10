package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Dosada05/quizbowl-system/models"
)

var (
	ErrGameNotFound = errors.New("game not found")
	// ErrGameVersionConflict means the row changed between read and
	// write; the caller should re-fetch and retry.
	ErrGameVersionConflict = errors.New("game was modified concurrently")
)

type GameRepository interface {
	// CreateIfPairAbsent inserts the game unless a game with the same
	// unordered team pair already exists in (tournament, stage, round).
	// It reports whether a row was inserted. The check and the insert are
	// one statement, so concurrent materializations cannot both insert.
	CreateIfPairAbsent(ctx context.Context, exec SQLExecutor, game *models.Game) (bool, error)

	GetByID(ctx context.Context, id int) (*models.Game, error)
	GameByMatchNum(ctx context.Context, tournamentID, stageID, roundNumber, matchNum int) (*models.Game, error)
	GamesInRound(ctx context.Context, tournamentID, stageID, roundNumber int) ([]*models.Game, error)
	ListByTournament(ctx context.Context, tournamentID int, stageID *int) ([]*models.Game, error)
	CountUnplayedByStage(ctx context.Context, tournamentID, stageID int) (int, error)

	// UpdateScorecard replaces the scorecard, result and override as a
	// unit, guarded by the version the caller read. A mismatch returns
	// ErrGameVersionConflict and writes nothing.
	UpdateScorecard(ctx context.Context, id int, scorecardJSON string, result models.GameResult, override *models.GameResult, expectedVersion int) error

	ReplaceTeam(ctx context.Context, id int, team1, team2 string) error
}

type postgresGameRepository struct {
	db *sql.DB
}

func NewPostgresGameRepository(db *sql.DB) GameRepository {
	return &postgresGameRepository{db: db}
}

func (r *postgresGameRepository) exec(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const gameColumns = `id, tournament_id, stage_id, round_number, match_num, team1, team2, result, result_override, scorecard, version, created_at`

func (r *postgresGameRepository) CreateIfPairAbsent(ctx context.Context, exec SQLExecutor, game *models.Game) (bool, error) {
	query := `
		INSERT INTO games (tournament_id, stage_id, round_number, match_num, team1, team2, result)
		SELECT $1, $2, $3, $4, $5, $6, $7
		WHERE NOT EXISTS (
			SELECT 1 FROM games
			WHERE tournament_id = $1 AND stage_id = $2 AND round_number = $3
			  AND ((team1 = $5 AND team2 = $6) OR (team1 = $6 AND team2 = $5))
		)
		RETURNING id, version, created_at`

	err := r.exec(exec).QueryRowContext(ctx, query,
		game.TournamentID,
		game.StageID,
		game.RoundNumber,
		game.MatchNum,
		game.Team1,
		game.Team2,
		game.Result,
	).Scan(&game.ID, &game.Version, &game.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		// The pair already exists; absorbed by design.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *postgresGameRepository) GetByID(ctx context.Context, id int) (*models.Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE id = $1`
	game, err := scanGame(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, err
	}
	return game, nil
}

func (r *postgresGameRepository) GameByMatchNum(ctx context.Context, tournamentID, stageID, roundNumber, matchNum int) (*models.Game, error) {
	query := `
		SELECT ` + gameColumns + ` FROM games
		WHERE tournament_id = $1 AND stage_id = $2 AND round_number = $3 AND match_num = $4`
	game, err := scanGame(r.db.QueryRowContext(ctx, query, tournamentID, stageID, roundNumber, matchNum))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return game, nil
}

func (r *postgresGameRepository) GamesInRound(ctx context.Context, tournamentID, stageID, roundNumber int) ([]*models.Game, error) {
	query := `
		SELECT ` + gameColumns + ` FROM games
		WHERE tournament_id = $1 AND stage_id = $2 AND round_number = $3
		ORDER BY id`
	return r.list(ctx, query, tournamentID, stageID, roundNumber)
}

func (r *postgresGameRepository) ListByTournament(ctx context.Context, tournamentID int, stageID *int) ([]*models.Game, error) {
	if stageID != nil {
		query := `
			SELECT ` + gameColumns + ` FROM games
			WHERE tournament_id = $1 AND stage_id = $2
			ORDER BY stage_id, round_number, id`
		return r.list(ctx, query, tournamentID, *stageID)
	}
	query := `
		SELECT ` + gameColumns + ` FROM games
		WHERE tournament_id = $1
		ORDER BY stage_id, round_number, id`
	return r.list(ctx, query, tournamentID)
}

func (r *postgresGameRepository) CountUnplayedByStage(ctx context.Context, tournamentID, stageID int) (int, error) {
	query := `
		SELECT COUNT(*) FROM games
		WHERE tournament_id = $1 AND stage_id = $2 AND result = $3`
	var count int
	err := r.db.QueryRowContext(ctx, query, tournamentID, stageID, models.ResultNotPlayed).Scan(&count)
	return count, err
}

func (r *postgresGameRepository) UpdateScorecard(ctx context.Context, id int, scorecardJSON string, result models.GameResult, override *models.GameResult, expectedVersion int) error {
	query := `
		UPDATE games
		SET scorecard = $1, result = $2, result_override = $3, version = version + 1
		WHERE id = $4 AND version = $5`

	res, err := r.db.ExecContext(ctx, query, scorecardJSON, result, override, id, expectedVersion)
	if err != nil {
		return err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		// Distinguish a stale version from a missing row.
		var exists bool
		if err := r.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM games WHERE id = $1)`, id).Scan(&exists); err != nil {
			return err
		}
		if exists {
			return ErrGameVersionConflict
		}
		return ErrGameNotFound
	}
	return nil
}

// ReplaceTeam rewrites a game's team slots, used when a dynamic reference
// pins down to a concrete team.
func (r *postgresGameRepository) ReplaceTeam(ctx context.Context, id int, team1, team2 string) error {
	query := `UPDATE games SET team1 = $1, team2 = $2 WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, team1, team2, id)
	if err != nil {
		return err
	}
	return checkAffectedRows(result, ErrGameNotFound)
}

func (r *postgresGameRepository) list(ctx context.Context, query string, args ...interface{}) ([]*models.Game, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var games []*models.Game
	for rows.Next() {
		g := &models.Game{}
		if err := rows.Scan(
			&g.ID, &g.TournamentID, &g.StageID, &g.RoundNumber, &g.MatchNum,
			&g.Team1, &g.Team2, &g.Result, &g.ResultOverride, &g.ScorecardJSON,
			&g.Version, &g.CreatedAt,
		); err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

func scanGame(row *sql.Row) (*models.Game, error) {
	g := &models.Game{}
	err := row.Scan(
		&g.ID, &g.TournamentID, &g.StageID, &g.RoundNumber, &g.MatchNum,
		&g.Team1, &g.Team2, &g.Result, &g.ResultOverride, &g.ScorecardJSON,
		&g.Version, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}
