package models

// TeamAlias maps a team id to its display name for one stage of a
// tournament. For playoff stages the Placeholder column carries the seed
// slot ("T1", "T2", ...) the format's pairings refer to.
type TeamAlias struct {
	ID           int     `json:"id" db:"id"`
	TournamentID int     `json:"tournament_id" db:"tournament_id"`
	StageID      int     `json:"stage_id" db:"stage_id"`
	TeamID       string  `json:"team_id" db:"team_id"`
	TeamName     string  `json:"team_name" db:"team_name"`
	Placeholder  *string `json:"placeholder,omitempty" db:"placeholder"`
}
