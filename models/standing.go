package models

// Standing is derived, never stored: it is recomputed from the set of
// finalized games in scope.
type Standing struct {
	TeamID              string  `json:"teamId"`
	TeamName            string  `json:"teamName"`
	GamesPlayed         int     `json:"gamesPlayed"`
	Wins                int     `json:"wins"`
	Losses              int     `json:"losses"`
	Ties                int     `json:"ties"`
	WinPct              float64 `json:"winPct"`
	TotalPoints         int     `json:"totalPoints"`
	TossupPoints        int     `json:"tossupPoints"`
	BonusPoints         int     `json:"bonusPoints"`
	BonusHeard          int     `json:"bonusHeard"`
	BonusConversionRate float64 `json:"bonusConversionRate"`
}

// PlayerLine is a player's aggregate over the same set of games.
type PlayerLine struct {
	PlayerID     string  `json:"playerId"`
	Name         string  `json:"name"`
	TeamID       string  `json:"teamId"`
	TeamName     string  `json:"teamName"`
	Powers       int     `json:"powers"`
	Gets         int     `json:"gets"`
	Negs         int     `json:"negs"`
	TossupsHeard int     `json:"tossupsHeard"`
	TossupPoints int     `json:"tossupPoints"`
	PPTH         float64 `json:"pointsPerTossupHeard"`
}
