// Package srs implements SM-2 spaced-repetition scheduling for cards.
//
// Every operation is a pure function of its arguments: the service holds only
// immutable parameters and a clock, so it may be shared freely between
// goroutines. Callers own the cards and must serialize concurrent updates to
// the same card themselves.
package srs

import (
	"fmt"
	"strings"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
)

// Clock supplies the current time. It is the only environmental input to the
// scheduler and is replaced in tests.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock.
func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reports the current time in UTC.
var SystemClock Clock = ClockFunc(func() time.Time { return time.Now().UTC() })

// Service defines the interface for SRS algorithm operations
type Service interface {
	// Initialize creates a new card due today with default scheduling state.
	Initialize(id string, today time.Time) (*domain.Card, error)

	// Review applies one review grade and returns the updated card.
	// The input card is not modified. Returns domain.ErrInvalidQuality if
	// quality is outside [0, 5].
	Review(card *domain.Card, quality int, today time.Time) (*domain.Card, error)

	// ReviewOn is Review with a textual date; "" means today per the clock.
	ReviewOn(card *domain.Card, quality int, today string) (*domain.Card, error)

	// DaysUntilDue returns dueDate - today in days. Zero or negative means due.
	DaysUntilDue(card *domain.Card, today time.Time) int

	// DaysUntilDueOn is DaysUntilDue with a textual date; "" means today per
	// the clock. Returns domain.ErrInvalidDate if the text cannot be parsed.
	DaysUntilDueOn(card *domain.Card, today string) (int, error)

	// IsDue reports whether the card should be presented on the given day.
	IsDue(card *domain.Card, today time.Time) bool

	// PostponeReview pushes the due date forward without touching the schedule.
	PostponeReview(card *domain.Card, days int) (*domain.Card, error)

	// Today returns the current calendar date according to the clock.
	Today() time.Time
}

// defaultService is the standard implementation of the Service interface
type defaultService struct {
	params *Params
	clock  Clock
}

// Option customizes a service created by NewService.
type Option func(*defaultService)

// WithParams overrides the algorithm parameters.
func WithParams(params *Params) Option {
	return func(s *defaultService) {
		if params != nil {
			s.params = params
		}
	}
}

// WithClock overrides the source of "now".
func WithClock(clock Clock) Option {
	return func(s *defaultService) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// NewService creates a new SRS service. Without options it uses
// NewDefaultParams and SystemClock.
func NewService(opts ...Option) Service {
	s := &defaultService{
		params: NewDefaultParams(),
		clock:  SystemClock,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewDefaultService creates a new SRS service with default parameters
func NewDefaultService() Service {
	return NewService()
}

// NewServiceWithParams creates a new SRS service with custom parameters
func NewServiceWithParams(params *Params) Service {
	return NewService(WithParams(params))
}

// Initialize implements Service.Initialize
func (s *defaultService) Initialize(id string, today time.Time) (*domain.Card, error) {
	if today.IsZero() {
		today = s.clock.Now()
	}

	card, err := domain.NewCard(id, today)
	if err != nil {
		return nil, err
	}
	card.EaseFactor = s.params.DefaultEaseFactor

	return card, nil
}

// Review implements Service.Review
func (s *defaultService) Review(
	card *domain.Card,
	quality int,
	today time.Time,
) (*domain.Card, error) {
	if card == nil {
		return nil, domain.ErrNilCard
	}

	if !isValidQuality(quality) {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuality, quality)
	}

	if today.IsZero() {
		today = s.clock.Now()
	}

	return calculateNextCard(card, quality, domain.NormalizeDate(today), s.params), nil
}

// ReviewOn implements Service.ReviewOn
func (s *defaultService) ReviewOn(card *domain.Card, quality int, today string) (*domain.Card, error) {
	day, err := s.resolveDate(today)
	if err != nil {
		return nil, err
	}
	return s.Review(card, quality, day)
}

// DaysUntilDue implements Service.DaysUntilDue
func (s *defaultService) DaysUntilDue(card *domain.Card, today time.Time) int {
	if today.IsZero() {
		today = s.clock.Now()
	}
	return domain.DaysBetween(today, card.DueDate)
}

// DaysUntilDueOn implements Service.DaysUntilDueOn
func (s *defaultService) DaysUntilDueOn(card *domain.Card, today string) (int, error) {
	day, err := s.resolveDate(today)
	if err != nil {
		return 0, err
	}
	return s.DaysUntilDue(card, day), nil
}

// IsDue implements Service.IsDue
func (s *defaultService) IsDue(card *domain.Card, today time.Time) bool {
	return s.DaysUntilDue(card, today) <= 0
}

// PostponeReview implements Service.PostponeReview
func (s *defaultService) PostponeReview(card *domain.Card, days int) (*domain.Card, error) {
	if card == nil {
		return nil, domain.ErrNilCard
	}

	if days < 1 {
		return nil, domain.ErrInvalidDays
	}

	next := card.Clone()
	next.DueDate = domain.AddDays(card.DueDate, days)

	return next, nil
}

// Today implements Service.Today
func (s *defaultService) Today() time.Time {
	return domain.NormalizeDate(s.clock.Now())
}

// resolveDate turns an optional textual date into a calendar date.
func (s *defaultService) resolveDate(today string) (time.Time, error) {
	if strings.TrimSpace(today) == "" {
		return s.Today(), nil
	}
	return domain.ParseDate(today)
}

// isValidQuality checks if the given grade is within the accepted range
func isValidQuality(quality int) bool {
	return quality >= domain.MinQuality && quality <= domain.MaxQuality
}
