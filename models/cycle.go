package models

// Tossup point values.
const (
	PointsPower = 15
	PointsGet   = 10
	PointsNeg   = -5
)

// Cycle is one scoring unit of a game: a tossup plus its bonus. Player
// maps carry tossup points keyed by player id; absent players earned
// nothing in the cycle.
type Cycle struct {
	Team1      map[string]int `json:"team1"`
	Team2      map[string]int `json:"team2"`
	Team1Bonus int            `json:"team1Bonus"`
	Team2Bonus int            `json:"team2Bonus"`
}

// Empty reports whether the cycle carries any scoring at all. Trailing
// unread cycles on a 20-tossup card are empty and do not affect results.
func (c Cycle) Empty() bool {
	if c.Team1Bonus != 0 || c.Team2Bonus != 0 {
		return false
	}
	for _, pts := range c.Team1 {
		if pts != 0 {
			return false
		}
	}
	for _, pts := range c.Team2 {
		if pts != 0 {
			return false
		}
	}
	return true
}
