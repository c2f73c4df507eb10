package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/quizbowl-system/models"
	"golang.org/x/sync/errgroup"
)

// DefaultMaxDepth bounds reference chains. A well-formed bracket never
// chains more than a handful of winner-of links; anything deeper is a
// malformed or cyclic format document.
const DefaultMaxDepth = 5

var (
	ErrRecursionLimit   = errors.New("reference recursion limit exceeded")
	ErrGameNotFound     = errors.New("referenced game not found")
	ErrInvalidReference = errors.New("invalid team reference")
)

// GameSource looks up games for resolution. Implementations return
// (nil, nil) when no game matches.
type GameSource interface {
	GameByMatchNum(ctx context.Context, tournamentID, stageID, roundNumber, matchNum int) (*models.Game, error)
	GamesInRound(ctx context.Context, tournamentID, stageID, roundNumber int) ([]*models.Game, error)
}

// AliasSource looks up team aliases for display names and seed slots.
// Implementations return (nil, nil) when no alias matches.
type AliasSource interface {
	AliasByTeamID(ctx context.Context, tournamentID, stageID int, teamID string) (*models.TeamAlias, error)
	AliasByPlaceholder(ctx context.Context, tournamentID, stageID int, placeholder string) (*models.TeamAlias, error)
}

type Outcome int

const (
	OutcomeResolved Outcome = iota
	// OutcomePending means the referenced game has not been played yet.
	// It is a first-class result, not an error: callers render it as
	// "TBD" with the referenced game's team names attached.
	OutcomePending
	// OutcomeTie means the referenced game finished without a winner, so
	// neither a winner nor a loser can be propagated.
	OutcomeTie
)

type Resolution struct {
	Outcome  Outcome
	TeamID   string
	TeamName string
	Pending  *PendingGame
}

// PendingGame describes the unfinished game a pending reference points at.
type PendingGame struct {
	Ref         string `json:"ref"`
	GameID      int    `json:"game_id"`
	StageID     int    `json:"stage_id"`
	RoundNumber int    `json:"round_number"`
	MatchNum    int    `json:"match_num"`
	Team1       string `json:"team1"`
	Team2       string `json:"team2"`
}

// Resolver turns dynamic references into concrete teams. It is a pure
// reader over its sources and is safe for concurrent use.
type Resolver struct {
	games    GameSource
	aliases  AliasSource
	maxDepth int
}

func NewResolver(games GameSource, aliases AliasSource) *Resolver {
	return &Resolver{games: games, aliases: aliases, maxDepth: DefaultMaxDepth}
}

func (r *Resolver) Resolve(ctx context.Context, tournamentID int, ref DynamicReference) (*Resolution, error) {
	return r.resolve(ctx, tournamentID, ref, 0)
}

// ResolveSlot resolves any pairing slot: a dynamic reference, a seed
// placeholder, or a concrete team id with an alias display name.
func (r *Resolver) ResolveSlot(ctx context.Context, tournamentID, stageID int, slot string) (*Resolution, error) {
	if ref, ok := ParseReference(slot); ok {
		return r.resolve(ctx, tournamentID, ref, 0)
	}
	if IsSeedPlaceholder(slot) {
		alias, err := r.aliases.AliasByPlaceholder(ctx, tournamentID, stageID, slot)
		if err != nil {
			return nil, err
		}
		if alias != nil {
			return &Resolution{Outcome: OutcomeResolved, TeamID: alias.TeamID, TeamName: alias.TeamName}, nil
		}
		// Seed not assigned yet: the slot stays symbolic.
		return &Resolution{Outcome: OutcomeResolved, TeamID: slot, TeamName: slot}, nil
	}
	name, err := r.displayName(ctx, tournamentID, stageID, slot, 0)
	if err != nil {
		return nil, err
	}
	return &Resolution{Outcome: OutcomeResolved, TeamID: slot, TeamName: name}, nil
}

func (r *Resolver) resolve(ctx context.Context, tournamentID int, ref DynamicReference, depth int) (*Resolution, error) {
	if depth >= r.maxDepth {
		return nil, fmt.Errorf("%w: %s at depth %d", ErrRecursionLimit, ref, depth)
	}

	game, err := r.findGame(ctx, tournamentID, ref)
	if err != nil {
		return nil, err
	}

	if !game.Played() {
		pending, err := r.pendingInfo(ctx, tournamentID, ref, game, depth)
		if err != nil {
			return nil, err
		}
		return &Resolution{Outcome: OutcomePending, Pending: pending}, nil
	}

	result := game.EffectiveResult()
	if result == models.ResultTie {
		return &Resolution{Outcome: OutcomeTie}, nil
	}

	teamID := game.Team1
	if (result == models.ResultTeam1Win) == (ref.Kind == RefLoser) {
		teamID = game.Team2
	}

	// The propagated identity may itself be a dynamic reference when the
	// referenced game was materialized before its own sources finished.
	if next, ok := ParseReference(teamID); ok {
		return r.resolve(ctx, tournamentID, next, depth+1)
	}

	alias, err := r.aliases.AliasByTeamID(ctx, tournamentID, game.StageID, teamID)
	if err != nil {
		return nil, err
	}
	name := fmt.Sprintf("Team %s", teamID)
	if alias != nil {
		name = alias.TeamName
	}
	return &Resolution{Outcome: OutcomeResolved, TeamID: teamID, TeamName: name}, nil
}

// findGame locates the referenced game by explicit match number first,
// falling back to 1-based position within the round for rows predating
// the match_num column.
func (r *Resolver) findGame(ctx context.Context, tournamentID int, ref DynamicReference) (*models.Game, error) {
	game, err := r.games.GameByMatchNum(ctx, tournamentID, ref.Stage, ref.Round, ref.Match)
	if err != nil {
		return nil, err
	}
	if game != nil {
		return game, nil
	}

	inRound, err := r.games.GamesInRound(ctx, tournamentID, ref.Stage, ref.Round)
	if err != nil {
		return nil, err
	}
	if ref.Match >= 1 && ref.Match <= len(inRound) {
		return inRound[ref.Match-1], nil
	}
	if len(inRound) == 1 {
		return inRound[0], nil
	}
	return nil, fmt.Errorf("%w: %s", ErrGameNotFound, ref)
}

// pendingInfo resolves both team names of an unfinished game so callers
// can render "TBD — winner of X vs Y". The two branches are independent
// lookups and run concurrently.
func (r *Resolver) pendingInfo(ctx context.Context, tournamentID int, ref DynamicReference, game *models.Game, depth int) (*PendingGame, error) {
	pending := &PendingGame{
		Ref:         ref.String(),
		GameID:      game.ID,
		StageID:     game.StageID,
		RoundNumber: game.RoundNumber,
		MatchNum:    ref.Match,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		name, err := r.displayName(gctx, tournamentID, game.StageID, game.Team1, depth+1)
		if err != nil {
			return err
		}
		pending.Team1 = name
		return nil
	})
	g.Go(func() error {
		name, err := r.displayName(gctx, tournamentID, game.StageID, game.Team2, depth+1)
		if err != nil {
			return err
		}
		pending.Team2 = name
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return pending, nil
}

// displayName renders a slot for humans. Dynamic slots that cannot be
// resolved yet fall back to their reference label rather than failing the
// whole pending lookup.
func (r *Resolver) displayName(ctx context.Context, tournamentID, stageID int, slot string, depth int) (string, error) {
	if slot == "" {
		return "TBD", nil
	}
	if ref, ok := ParseReference(slot); ok {
		res, err := r.resolve(ctx, tournamentID, ref, depth)
		if err != nil {
			if errors.Is(err, ErrRecursionLimit) {
				return "", err
			}
			return ref.Label(), nil
		}
		if res.Outcome == OutcomeResolved {
			return res.TeamName, nil
		}
		return ref.Label(), nil
	}
	alias, err := r.aliases.AliasByTeamID(ctx, tournamentID, stageID, slot)
	if err != nil {
		return "", err
	}
	if alias != nil {
		return alias.TeamName, nil
	}
	return fmt.Sprintf("Team %s", slot), nil
}
