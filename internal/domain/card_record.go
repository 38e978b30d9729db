package domain

import (
	"strings"
	"time"
)

// CardRecord is the loosely-shaped form of a card as it arrives from outside
// the scheduler: an import file, an older database row or a JSON payload.
// Any scheduling field may be absent.
type CardRecord struct {
	ID           string   `json:"id"`
	EaseFactor   *float64 `json:"ease_factor,omitempty"`
	Interval     *int     `json:"interval,omitempty"`
	Repetition   *int     `json:"repetition,omitempty"`
	DueDate      string   `json:"due_date,omitempty"`
	CorrectCount *int     `json:"correct_count,omitempty"`
	WrongCount   *int     `json:"wrong_count,omitempty"`
	Kana         *string  `json:"kana,omitempty"`
}

// ToCard fills in every absent field with its default and returns a fully
// populated Card. A missing due date makes the card due on `today`.
// Returns ErrInvalidDate when a due date is present but unparseable and
// ErrEmptyCardID when the record has no identifier.
func (r CardRecord) ToCard(today time.Time) (*Card, error) {
	card := &Card{
		ID:         strings.TrimSpace(r.ID),
		EaseFactor: DefaultEaseFactor,
		DueDate:    NormalizeDate(today),
		Kana:       r.Kana,
	}

	if card.ID == "" {
		return nil, ErrEmptyCardID
	}

	if r.EaseFactor != nil && *r.EaseFactor > 0 {
		card.EaseFactor = *r.EaseFactor
	}
	if r.Interval != nil {
		card.Interval = *r.Interval
	}
	if r.Repetition != nil {
		card.Repetition = *r.Repetition
	}
	if r.CorrectCount != nil {
		card.CorrectCount = *r.CorrectCount
	}
	if r.WrongCount != nil {
		card.WrongCount = *r.WrongCount
	}

	if strings.TrimSpace(r.DueDate) != "" {
		due, err := ParseDate(r.DueDate)
		if err != nil {
			return nil, err
		}
		card.DueDate = due
	}

	return card, nil
}

// RecordFromCard is the inverse of ToCard; every field is present.
func RecordFromCard(c *Card) CardRecord {
	ease := c.EaseFactor
	interval := c.Interval
	repetition := c.Repetition
	correct := c.CorrectCount
	wrong := c.WrongCount

	return CardRecord{
		ID:           c.ID,
		EaseFactor:   &ease,
		Interval:     &interval,
		Repetition:   &repetition,
		DueDate:      FormatDate(c.DueDate),
		CorrectCount: &correct,
		WrongCount:   &wrong,
		Kana:         c.Kana,
	}
}
