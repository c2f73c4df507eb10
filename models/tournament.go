package models

import "time"

type TournamentStatus string

const (
	StatusPlanning     TournamentStatus = "planning"
	StatusRegistration TournamentStatus = "registration"
	StatusActive       TournamentStatus = "active"
	StatusCompleted    TournamentStatus = "completed"
)

type Tournament struct {
	ID         int              `json:"id" db:"id"`
	Name       string           `json:"name" db:"name"`
	Slug       string           `json:"slug" db:"slug"`
	Date       time.Time        `json:"date" db:"date"`
	Location   *string          `json:"location,omitempty" db:"location"`
	JoinCode   string           `json:"-" db:"join_code"`
	FormatJSON string           `json:"-" db:"format_json"`
	Status     TournamentStatus `json:"status" db:"status"`
	CreatedAt  time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at" db:"updated_at"`

	// Parsed format, populated on first use, never stored directly.
	Format *FormatSpec `json:"format,omitempty" db:"-"`
}

// ParseFormat decodes the stored format document and caches it on the
// struct so repeated callers do not re-decode the same JSON.
func (t *Tournament) ParseFormat() (*FormatSpec, error) {
	if t.Format != nil {
		return t.Format, nil
	}
	spec, err := ParseFormatSpec([]byte(t.FormatJSON))
	if err != nil {
		return nil, err
	}
	t.Format = spec
	return spec, nil
}
