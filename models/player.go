package models

// Player belongs to a prelim team; AliasID links it to the team's alias
// row for the stage currently in play.
type Player struct {
	ID           int    `json:"id" db:"id"`
	TournamentID int    `json:"tournament_id" db:"tournament_id"`
	Name         string `json:"name" db:"name"`
	TeamID       string `json:"team_id" db:"team_id"`
	AliasID      *int   `json:"alias_id,omitempty" db:"alias_id"`
}
