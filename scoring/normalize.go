package scoring

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/quizbowl-system/models"
)

// Rosters lists each team's player ids in seating order. The flat legacy
// shape indexes players by position, so it cannot be normalized without
// them; the other shapes carry player ids inline and ignore rosters.
type Rosters struct {
	Team1 []string
	Team2 []string
}

// NormalizeScorecard converts a submitted scorecard into canonical
// cycles. Cards have arrived in three shapes over the platform's life:
//
//   - canonical: {"team1":{pid:pts},"team2":{...},"team1Bonus":n,"team2Bonus":n}
//   - tossup object: {"tossup":{"points":n,"team":1|2,"player":pid},"bonus":[...]}
//   - flat arrays: [t1_points_by_seat, t1_bonus, t2_points_by_seat, t2_bonus]
//
// Cycles of different shapes may be mixed in one card. Anything else is
// rejected rather than guessed at.
func NormalizeScorecard(raw json.RawMessage, rosters Rosters) ([]models.Cycle, error) {
	var rawCycles []json.RawMessage
	if err := json.Unmarshal(raw, &rawCycles); err != nil {
		return nil, fmt.Errorf("%w: scorecard is not a cycle list", ErrUnknownCycleShape)
	}

	cycles := make([]models.Cycle, 0, len(rawCycles))
	for i, rc := range rawCycles {
		cycle, err := normalizeCycle(rc, rosters)
		if err != nil {
			return nil, fmt.Errorf("cycle %d: %w", i+1, err)
		}
		cycles = append(cycles, cycle)
	}
	return cycles, nil
}

func normalizeCycle(raw json.RawMessage, rosters Rosters) (models.Cycle, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		return normalizeFlatCycle(raw, rosters)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return models.Cycle{}, ErrUnknownCycleShape
	}
	if _, ok := obj["tossup"]; ok {
		return normalizeTossupCycle(obj)
	}
	if _, ok := obj["team1"]; ok {
		return normalizeCanonicalCycle(obj)
	}
	if _, ok := obj["team2"]; ok {
		return normalizeCanonicalCycle(obj)
	}
	return models.Cycle{}, ErrUnknownCycleShape
}

// normalizeCanonicalCycle accepts the current shape. Point values are
// tolerated as JSON numbers or digit strings, as older reader UIs sent
// either.
func normalizeCanonicalCycle(obj map[string]json.RawMessage) (models.Cycle, error) {
	cycle := models.Cycle{
		Team1: map[string]int{},
		Team2: map[string]int{},
	}
	for key, dst := range map[string]map[string]int{"team1": cycle.Team1, "team2": cycle.Team2} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		var players map[string]json.RawMessage
		if err := json.Unmarshal(raw, &players); err != nil {
			return models.Cycle{}, fmt.Errorf("%w: %s is not a player map", ErrUnknownCycleShape, key)
		}
		for pid, rawPts := range players {
			pts, ok := coerceInt(rawPts)
			if !ok {
				return models.Cycle{}, fmt.Errorf("%w: non-numeric points for player %s", ErrUnknownCycleShape, pid)
			}
			dst[pid] = pts
		}
	}
	for key, dst := range map[string]*int{"team1Bonus": &cycle.Team1Bonus, "team2Bonus": &cycle.Team2Bonus} {
		raw, ok := obj[key]
		if !ok {
			continue
		}
		pts, ok := coerceInt(raw)
		if !ok {
			return models.Cycle{}, fmt.Errorf("%w: non-numeric %s", ErrUnknownCycleShape, key)
		}
		*dst = pts
	}
	return cycle, nil
}

type legacyTossup struct {
	Points json.RawMessage `json:"points"`
	Team   json.RawMessage `json:"team"`
	Player string          `json:"player"`
}

// normalizeTossupCycle accepts the single-tossup-object shape. Its bonus
// field was either a running points total or a list of converted-part
// flags, each part worth ten.
func normalizeTossupCycle(obj map[string]json.RawMessage) (models.Cycle, error) {
	cycle := models.Cycle{
		Team1: map[string]int{},
		Team2: map[string]int{},
	}

	var tossup legacyTossup
	if err := json.Unmarshal(obj["tossup"], &tossup); err != nil {
		return models.Cycle{}, fmt.Errorf("%w: malformed tossup object", ErrUnknownCycleShape)
	}
	points, _ := coerceInt(tossup.Points)
	team := 0
	if len(tossup.Team) > 0 && string(tossup.Team) != "null" {
		t, ok := coerceInt(tossup.Team)
		if !ok {
			return models.Cycle{}, fmt.Errorf("%w: non-numeric tossup team", ErrUnknownCycleShape)
		}
		team = t
	}
	if points != 0 {
		player := tossup.Player
		if player == "" {
			player = "unknown"
		}
		switch team {
		case 1:
			cycle.Team1[player] = points
		case 2:
			cycle.Team2[player] = points
		default:
			return models.Cycle{}, fmt.Errorf("%w: tossup credited to team %d", ErrUnknownCycleShape, team)
		}
	}

	if rawBonus, ok := obj["bonus"]; ok && team != 0 {
		bonus, err := legacyBonusPoints(rawBonus)
		if err != nil {
			return models.Cycle{}, err
		}
		if team == 1 {
			cycle.Team1Bonus = bonus
		} else {
			cycle.Team2Bonus = bonus
		}
	}
	return cycle, nil
}

func legacyBonusPoints(raw json.RawMessage) (int, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err == nil {
		total := 0
		for _, part := range parts {
			v, ok := coerceInt(part)
			if !ok {
				return 0, fmt.Errorf("%w: non-numeric bonus part", ErrUnknownCycleShape)
			}
			if v != 0 {
				total += models.PointsGet
			}
		}
		return total, nil
	}
	if v, ok := coerceInt(raw); ok {
		return v, nil
	}
	return 0, fmt.Errorf("%w: malformed bonus field", ErrUnknownCycleShape)
}

// normalizeFlatCycle accepts the oldest shape:
// [team1 points by seat, team1 bonus, team2 points by seat, team2 bonus].
func normalizeFlatCycle(raw json.RawMessage, rosters Rosters) (models.Cycle, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil || len(parts) != 4 {
		return models.Cycle{}, fmt.Errorf("%w: flat cycle must have 4 elements", ErrUnknownCycleShape)
	}
	if len(rosters.Team1) == 0 && len(rosters.Team2) == 0 {
		return models.Cycle{}, fmt.Errorf("%w: flat cycle requires rosters", ErrUnknownCycleShape)
	}

	cycle := models.Cycle{
		Team1: map[string]int{},
		Team2: map[string]int{},
	}
	if err := flatSeats(parts[0], rosters.Team1, cycle.Team1); err != nil {
		return models.Cycle{}, err
	}
	if err := flatSeats(parts[2], rosters.Team2, cycle.Team2); err != nil {
		return models.Cycle{}, err
	}
	var ok bool
	if cycle.Team1Bonus, ok = coerceInt(parts[1]); !ok {
		return models.Cycle{}, fmt.Errorf("%w: non-numeric team1 bonus", ErrUnknownCycleShape)
	}
	if cycle.Team2Bonus, ok = coerceInt(parts[3]); !ok {
		return models.Cycle{}, fmt.Errorf("%w: non-numeric team2 bonus", ErrUnknownCycleShape)
	}
	return cycle, nil
}

func flatSeats(raw json.RawMessage, roster []string, dst map[string]int) error {
	var seats []json.RawMessage
	if err := json.Unmarshal(raw, &seats); err != nil {
		return fmt.Errorf("%w: seat list is not an array", ErrUnknownCycleShape)
	}
	if len(seats) > len(roster) {
		return fmt.Errorf("%w: %d seats for a roster of %d", ErrUnknownCycleShape, len(seats), len(roster))
	}
	for i, rawPts := range seats {
		pts, ok := coerceInt(rawPts)
		if !ok {
			return fmt.Errorf("%w: non-numeric points at seat %d", ErrUnknownCycleShape, i+1)
		}
		if pts != 0 {
			dst[roster[i]] = pts
		}
	}
	return nil
}

// coerceInt accepts JSON numbers and digit strings.
func coerceInt(raw json.RawMessage) (int, bool) {
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err == nil {
			return v, true
		}
	}
	return 0, false
}
