package brackets

import (
	"fmt"
	"regexp"
)

type RefKind int

const (
	RefWinner RefKind = iota
	RefLoser
)

// DynamicReference names the winner or loser of another game by its
// coordinates in the format: stage, round within the stage, and 1-based
// match position within the round. It is parsed from a pairing slot and
// consumed immediately; it is never persisted.
type DynamicReference struct {
	Kind  RefKind
	Stage int
	Round int
	Match int
}

var refPattern = regexp.MustCompile(`^([WL])\(S(\d+)R(\d+)M(\d+)\)$`)

var seedPattern = regexp.MustCompile(`^T\d+$`)

// ParseReference parses a slot of the form W(S<s>R<r>M<m>) or
// L(S<s>R<r>M<m>). The second return value is false when the slot is not a
// dynamic reference at all (a concrete team id or seed placeholder).
func ParseReference(slot string) (DynamicReference, bool) {
	m := refPattern.FindStringSubmatch(slot)
	if m == nil {
		return DynamicReference{}, false
	}
	kind := RefWinner
	if m[1] == "L" {
		kind = RefLoser
	}
	// The pattern only admits digits, so Atoi cannot fail here.
	ref := DynamicReference{
		Kind:  kind,
		Stage: atoi(m[2]),
		Round: atoi(m[3]),
		Match: atoi(m[4]),
	}
	if ref.Stage < 1 || ref.Round < 1 || ref.Match < 1 {
		return DynamicReference{}, false
	}
	return ref, true
}

func atoi(s string) int {
	n := 0
	for _, c := range s {
		n = n*10 + int(c-'0')
	}
	return n
}

// IsDynamic reports whether a pairing slot is a winner/loser reference.
func IsDynamic(slot string) bool {
	return refPattern.MatchString(slot)
}

// IsSeedPlaceholder reports whether a pairing slot is a seed slot like
// "T3", resolved through the stage's alias placeholders.
func IsSeedPlaceholder(slot string) bool {
	return seedPattern.MatchString(slot)
}

func (r DynamicReference) String() string {
	prefix := "W"
	if r.Kind == RefLoser {
		prefix = "L"
	}
	return fmt.Sprintf("%s(S%dR%dM%d)", prefix, r.Stage, r.Round, r.Match)
}

// Label is the human form used on schedules, e.g.
// "Winner of Stage 1 Round 2 Match 3".
func (r DynamicReference) Label() string {
	word := "Winner"
	if r.Kind == RefLoser {
		word = "Loser"
	}
	return fmt.Sprintf("%s of Stage %d Round %d Match %d", word, r.Stage, r.Round, r.Match)
}
