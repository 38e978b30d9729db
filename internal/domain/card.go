package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Scheduling defaults shared by the scheduler and every collaborator that
// has to fill in a partially-initialized record.
const (
	// DefaultEaseFactor is the ease factor of a freshly initialized card.
	DefaultEaseFactor = 2.5

	// MinEaseFactor is the floor below which the ease factor never drops.
	MinEaseFactor = 1.3

	// MinQuality and MaxQuality bound the review grade.
	MinQuality = 0
	MaxQuality = 5

	// PassingQuality is the lowest grade that counts as a correct recall.
	PassingQuality = 3
)

// Card-specific validation errors
var (
	// ErrEmptyCardID is returned when a card ID is empty.
	ErrEmptyCardID = errors.New("card ID cannot be empty")

	// ErrInvalidEaseFactor is returned when a stored ease factor is below MinEaseFactor.
	ErrInvalidEaseFactor = errors.New("ease factor must be at least 1.3")

	// ErrInvalidInterval is returned when a stored interval is negative.
	ErrInvalidInterval = errors.New("interval must be greater than or equal to 0")

	// ErrInvalidRepetition is returned when a stored repetition count is negative.
	ErrInvalidRepetition = errors.New("repetition must be greater than or equal to 0")

	// ErrInvalidCounters is returned when a lifetime counter is negative.
	ErrInvalidCounters = errors.New("review counters must be greater than or equal to 0")

	// ErrZeroDueDate is returned when a card has no due date.
	ErrZeroDueDate = errors.New("due date cannot be empty")

	// ErrDueDateOutOfRange is returned when a due date is later than MaxDate.
	ErrDueDateOutOfRange = errors.New("due date is after 9999-12-31")
)

// Card is the scheduling state of one studied item.
//
// The DueDate is a calendar date: it is always held at midnight UTC so that
// day arithmetic never depends on the wall clock or the local time zone.
// Kana is an optional reading supplied by the learner; the scheduler copies it
// through untouched.
type Card struct {
	ID           string    `json:"id"`
	EaseFactor   float64   `json:"ease_factor"`
	Interval     int       `json:"interval"`
	Repetition   int       `json:"repetition"`
	DueDate      time.Time `json:"due_date"`
	CorrectCount int       `json:"correct_count"`
	WrongCount   int       `json:"wrong_count"`
	Kana         *string   `json:"kana,omitempty"`
}

// NewCard creates a card with default scheduling state, due on the given day.
// The identifier is kept verbatim. Returns ErrEmptyCardID if it is blank.
func NewCard(id string, today time.Time) (*Card, error) {
	card := &Card{
		ID:         id,
		EaseFactor: DefaultEaseFactor,
		DueDate:    NormalizeDate(today),
	}

	if err := card.Validate(); err != nil {
		return nil, err
	}

	return card, nil
}

// Validate checks that the card satisfies the persisted-record invariants.
func (c *Card) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrEmptyCardID
	}

	if c.EaseFactor < MinEaseFactor {
		return fmt.Errorf("%w: got %.4f", ErrInvalidEaseFactor, c.EaseFactor)
	}

	if c.Interval < 0 {
		return ErrInvalidInterval
	}

	if c.Repetition < 0 {
		return ErrInvalidRepetition
	}

	if c.CorrectCount < 0 || c.WrongCount < 0 {
		return ErrInvalidCounters
	}

	if c.DueDate.IsZero() {
		return ErrZeroDueDate
	}

	if NormalizeDate(c.DueDate).After(MaxDate) {
		return ErrDueDateOutOfRange
	}

	return nil
}

// Clone returns a deep copy of the card, including the annotation.
func (c *Card) Clone() *Card {
	clone := *c
	if c.Kana != nil {
		kana := *c.Kana
		clone.Kana = &kana
	}
	return &clone
}

// TotalReviews returns the lifetime number of reviews applied to the card.
func (c *Card) TotalReviews() int {
	return c.CorrectCount + c.WrongCount
}

// KanaOrEmpty returns the annotation, or "" if none is set.
func (c *Card) KanaOrEmpty() string {
	if c.Kana == nil {
		return ""
	}
	return *c.Kana
}
