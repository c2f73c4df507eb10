package models

import (
	"encoding/json"
	"fmt"
)

// FormatSpec is the typed view of a tournament's format document:
// stages contain rounds, rounds contain pairings, and each pairing names
// two team slots. A slot is either a prelim team id, a seed placeholder
// like "T3", or a dynamic reference like "W(S1R2M1)".
type FormatSpec struct {
	Stages []FormatStage `json:"stages"`
}

type FormatStage struct {
	StageID int           `json:"stage_id"`
	Rounds  []FormatRound `json:"rounds"`
}

type FormatRound struct {
	RoundInStage int             `json:"round_in_stage"`
	Pairings     []FormatPairing `json:"pairings"`
}

type FormatPairing struct {
	Teams []string `json:"teams"`
}

// formatDocument is the stored wire envelope.
type formatDocument struct {
	TournamentFormat FormatSpec `json:"tournament_format"`
}

func ParseFormatSpec(data []byte) (*FormatSpec, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("format document is empty")
	}
	var doc formatDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse format document: %w", err)
	}
	spec := doc.TournamentFormat
	if len(spec.Stages) == 0 {
		// Older documents store the stages without the envelope.
		if err := json.Unmarshal(data, &spec); err != nil {
			return nil, fmt.Errorf("failed to parse format document: %w", err)
		}
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks the structural invariants of the format tree. A broken
// stage is reported with its coordinates so the operator can fix the
// document; other stages remain usable.
func (f *FormatSpec) Validate() error {
	if len(f.Stages) == 0 {
		return fmt.Errorf("format defines no stages")
	}
	seen := make(map[int]bool, len(f.Stages))
	for _, stage := range f.Stages {
		if stage.StageID < 1 {
			return fmt.Errorf("stage id %d is not positive", stage.StageID)
		}
		if seen[stage.StageID] {
			return fmt.Errorf("duplicate stage id %d", stage.StageID)
		}
		seen[stage.StageID] = true
		for _, rnd := range stage.Rounds {
			for i, pairing := range rnd.Pairings {
				if len(pairing.Teams) != 2 {
					return fmt.Errorf("stage %d round %d pairing %d has %d teams, want 2",
						stage.StageID, rnd.RoundInStage, i+1, len(pairing.Teams))
				}
				if pairing.Teams[0] == "" || pairing.Teams[1] == "" {
					return fmt.Errorf("stage %d round %d pairing %d has an empty team slot",
						stage.StageID, rnd.RoundInStage, i+1)
				}
			}
		}
	}
	return nil
}

func (f *FormatSpec) Stage(stageID int) *FormatStage {
	for i := range f.Stages {
		if f.Stages[i].StageID == stageID {
			return &f.Stages[i]
		}
	}
	return nil
}

// MaxRooms returns the largest number of concurrent pairings in any round,
// which is the number of rooms the tournament needs.
func (f *FormatSpec) MaxRooms() int {
	max := 0
	for _, stage := range f.Stages {
		for _, rnd := range stage.Rounds {
			if len(rnd.Pairings) > max {
				max = len(rnd.Pairings)
			}
		}
	}
	return max
}

// ExpectedGames counts the pairings declared for a stage.
func (f *FormatSpec) ExpectedGames(stageID int) int {
	stage := f.Stage(stageID)
	if stage == nil {
		return 0
	}
	total := 0
	for _, rnd := range stage.Rounds {
		total += len(rnd.Pairings)
	}
	return total
}
