package services

import "errors"

// Errors shared across services and the HTTP mapping.
var (
	ErrNotFound = errors.New("requested resource not found")

	// Validation and business rules
	ErrValidationFailed       = errors.New("validation failed")
	ErrPasswordTooShort       = errors.New("password is too short")
	ErrInvalidCredentials     = errors.New("invalid email or password")
	ErrTournamentNameRequired = errors.New("tournament name is required")
	ErrTeamNameRequired       = errors.New("team name is required")

	// Format problems are fatal to the affected stage only; the
	// tournament stays usable for other stages.
	ErrFormatInvalid = errors.New("tournament format is invalid")
	ErrStageNotFound = errors.New("stage not found in tournament format")

	// Bracket lifecycle
	ErrStagePrerequisite = errors.New("previous stage is not complete")
	ErrNoTeamsToSeed     = errors.New("no teams found in the seeding source stage")
	ErrTeamsUnresolved   = errors.New("game teams are not resolved yet")

	// Scoring
	ErrInvalidScorecard       = errors.New("scorecard is invalid")
	ErrConcurrentModification = errors.New("game was modified concurrently, re-fetch and retry")

	// Conflicts
	ErrUserEmailConflict      = errors.New("email address is already in use")
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrTeamAliasConflict      = errors.New("team or placeholder is already assigned for this stage")

	// Entity-specific not-found variants for clearer HTTP mapping
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrGameNotFound       = errors.New("game not found")
	ErrUserNotFound       = errors.New("user not found")

	// Status lifecycle
	ErrTournamentInvalidStatus           = errors.New("invalid tournament status provided")
	ErrTournamentInvalidStatusTransition = errors.New("invalid tournament status transition")
)
