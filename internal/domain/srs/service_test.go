package srs

import (
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := domain.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return t
}

func fixedClock(s string) Clock {
	return ClockFunc(func() time.Time { return day(s).Add(13 * time.Hour) })
}

func TestNewDefaultService(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	require.NotNil(t, service)

	// Check if default params are present
	defaultService, ok := service.(*defaultService)
	require.True(t, ok, "Expected *defaultService type")
	assert.Equal(t, NewDefaultParams(), defaultService.params)
	assert.NotNil(t, defaultService.clock)
}

func TestInitialize(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService(WithClock(fixedClock("2024-01-01")))

	card, err := service.Initialize("x", time.Time{})
	require.NoError(t, err)

	assert.Equal(t, "x", card.ID)
	assert.Equal(t, 2.5, card.EaseFactor)
	assert.Equal(t, 0, card.Interval)
	assert.Equal(t, 0, card.Repetition)
	assert.Equal(t, "2024-01-01", domain.FormatDate(card.DueDate))
	assert.Equal(t, 0, card.CorrectCount)
	assert.Equal(t, 0, card.WrongCount)
	assert.Nil(t, card.Kana)

	_, err = service.Initialize("", time.Time{})
	assert.ErrorIs(t, err, domain.ErrEmptyCardID)
}

func TestReviewScenario(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()

	card, err := service.Initialize("x", day("2024-01-01"))
	require.NoError(t, err)

	steps := []struct {
		today        string
		quality      int
		interval     int
		repetition   int
		easeFactor   float64
		dueDate      string
		correctCount int
		wrongCount   int
	}{
		{"2024-01-01", 5, 1, 1, 2.6, "2024-01-02", 1, 0},
		{"2024-01-02", 5, 6, 2, 2.7, "2024-01-08", 2, 0},
		// round(6 * 2.7) = 16, the ease used is the one before this review
		{"2024-01-08", 5, 16, 3, 2.8, "2024-01-24", 3, 0},
		// round(16 * 2.8) = 45
		{"2024-01-24", 4, 45, 4, 2.8, "2024-03-09", 4, 0},
		{"2024-03-09", 2, 1, 0, 2.48, "2024-03-10", 4, 1},
		{"2024-03-10", 3, 1, 1, 2.34, "2024-03-11", 5, 1},
	}

	for i, step := range steps {
		card, err = service.Review(card, step.quality, day(step.today))
		require.NoError(t, err, "step %d", i)

		assert.Equal(t, step.interval, card.Interval, "interval at step %d", i)
		assert.Equal(t, step.repetition, card.Repetition, "repetition at step %d", i)
		assert.Equal(t, step.easeFactor, card.EaseFactor, "ease factor at step %d", i)
		assert.Equal(t, step.dueDate, domain.FormatDate(card.DueDate), "due date at step %d", i)
		assert.Equal(t, step.correctCount, card.CorrectCount, "correct count at step %d", i)
		assert.Equal(t, step.wrongCount, card.WrongCount, "wrong count at step %d", i)
	}
}

func TestReviewFailureFromMatureCard(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	card := &domain.Card{
		ID:           "mature",
		EaseFactor:   2.0,
		Interval:     10,
		Repetition:   4,
		DueDate:      day("2024-03-01"),
		CorrectCount: 4,
		WrongCount:   1,
	}

	next, err := service.Review(card, 1, day("2024-03-01"))
	require.NoError(t, err)

	assert.Equal(t, 0, next.Repetition)
	assert.Equal(t, 1, next.Interval)
	assert.Equal(t, 2, next.WrongCount)
	assert.Equal(t, 4, next.CorrectCount)
	assert.Equal(t, 1.46, next.EaseFactor)
	assert.Equal(t, "2024-03-02", domain.FormatDate(next.DueDate))
}

func TestReviewInvalidQuality(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	card, err := service.Initialize("x", day("2024-01-01"))
	require.NoError(t, err)
	before := card.Clone()

	for _, quality := range []int{-1, 6, 100, -100} {
		next, err := service.Review(card, quality, day("2024-01-01"))
		assert.Nil(t, next)
		assert.True(t, errors.Is(err, domain.ErrInvalidQuality), "quality %d: got %v", quality, err)
	}

	assert.Equal(t, before, card, "card must be unchanged after a rejected review")
}

func TestReviewNilCard(t *testing.T) {
	t.Parallel() // Enable parallel execution
	_, err := NewDefaultService().Review(nil, 3, time.Now())
	assert.ErrorIs(t, err, domain.ErrNilCard)
}

func TestReviewProperties(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	today := day("2024-06-15")

	eases := []float64{1.3, 1.31, 1.5, 1.96, 2.5, 2.8, 3.4}
	intervals := []int{-3, 0, 1, 6, 16, 120}
	repetitions := []int{0, 1, 2, 3, 9}

	for _, ef := range eases {
		for _, interval := range intervals {
			for _, rep := range repetitions {
				for quality := domain.MinQuality; quality <= domain.MaxQuality; quality++ {
					card := &domain.Card{
						ID:           "p",
						EaseFactor:   ef,
						Interval:     interval,
						Repetition:   rep,
						DueDate:      day("2024-06-01"),
						CorrectCount: 3,
						WrongCount:   2,
					}

					next, err := service.Review(card, quality, today)
					require.NoError(t, err)

					// Ease floor
					if next.EaseFactor < domain.MinEaseFactor {
						t.Fatalf("ease %v fell below the floor (ef=%v q=%d)", next.EaseFactor, ef, quality)
					}

					// Monotonic counters
					if next.TotalReviews() != card.TotalReviews()+1 {
						t.Fatalf("expected exactly one counter to advance (q=%d)", quality)
					}
					if next.CorrectCount < card.CorrectCount || next.WrongCount < card.WrongCount {
						t.Fatalf("counters must never decrease (q=%d)", quality)
					}

					// Reset law
					if quality < domain.PassingQuality && (next.Repetition != 0 || next.Interval != 1) {
						t.Fatalf("failed review must reset, got rep=%d interval=%d", next.Repetition, next.Interval)
					}
					if quality >= domain.PassingQuality && next.Repetition != rep+1 {
						t.Fatalf("correct review must advance repetition, got %d from %d", next.Repetition, rep)
					}

					// Due date lower bound
					if domain.DaysBetween(today, next.DueDate) < 1 {
						t.Fatalf("due date %s is not after today (interval=%d)",
							domain.FormatDate(next.DueDate), next.Interval)
					}
				}
			}
		}
	}
}

func TestBootstrapLaw(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()

	card, err := service.Initialize("b", day("2024-01-01"))
	require.NoError(t, err)

	card, err = service.Review(card, 5, day("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 1, card.Interval)

	card, err = service.Review(card, 5, day("2024-01-02"))
	require.NoError(t, err)
	assert.Equal(t, 6, card.Interval)
}

func TestReviewRepairsMissingEaseFactor(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	card := &domain.Card{ID: "imported", DueDate: day("2024-01-01")}

	next, err := service.Review(card, 5, day("2024-01-01"))
	require.NoError(t, err)

	assert.Equal(t, 2.6, next.EaseFactor)
	assert.Equal(t, 1, next.Interval)
	assert.Equal(t, 1, next.Repetition)
}

func TestReviewDoesNotClampStoredInterval(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	card := &domain.Card{
		ID:         "corrupt",
		EaseFactor: 2.5,
		Interval:   -3,
		Repetition: 5,
		DueDate:    day("2024-01-01"),
	}

	next, err := service.Review(card, 4, day("2024-01-10"))
	require.NoError(t, err)

	// round(-3 * 2.5) = round(-7.5) = -8
	assert.Equal(t, -8, next.Interval)
	assert.Equal(t, "2024-01-11", domain.FormatDate(next.DueDate))
}

func TestReviewPreservesIdentityAndAnnotation(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	kana := "さかな"
	card := &domain.Card{ID: "sakana", EaseFactor: 2.5, DueDate: day("2024-01-01"), Kana: &kana}

	next, err := service.Review(card, 0, day("2024-01-01"))
	require.NoError(t, err)

	assert.Equal(t, "sakana", next.ID)
	assert.Equal(t, "さかな", next.KanaOrEmpty())
}

func TestReviewOn(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService(WithClock(fixedClock("2024-02-01")))
	card, err := service.Initialize("x", time.Time{})
	require.NoError(t, err)

	next, err := service.ReviewOn(card, 5, "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", domain.FormatDate(next.DueDate))

	next, err = service.ReviewOn(card, 5, "")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-02", domain.FormatDate(next.DueDate))

	_, err = service.ReviewOn(card, 5, "01/01/2024")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)

	// Quality is validated even when the date is fine
	_, err = service.ReviewOn(card, 7, "2024-01-01")
	assert.ErrorIs(t, err, domain.ErrInvalidQuality)
}

func TestDaysUntilDue(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService(WithClock(fixedClock("2024-01-20")))
	card := &domain.Card{ID: "d", EaseFactor: 2.5, DueDate: day("2024-01-24")}
	before := card.Clone()

	assert.Equal(t, 4, service.DaysUntilDue(card, day("2024-01-20")))
	assert.Equal(t, 0, service.DaysUntilDue(card, day("2024-01-24")))
	assert.Equal(t, -6, service.DaysUntilDue(card, day("2024-01-30")))

	// Idempotent and pure
	first := service.DaysUntilDue(card, time.Time{})
	second := service.DaysUntilDue(card, time.Time{})
	assert.Equal(t, 4, first)
	assert.Equal(t, first, second)
	assert.Equal(t, before, card)

	assert.False(t, service.IsDue(card, day("2024-01-23")))
	assert.True(t, service.IsDue(card, day("2024-01-24")))
	assert.True(t, service.IsDue(card, day("2024-02-01")))
}

func TestDaysUntilDueOn(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewService(WithClock(fixedClock("2024-01-20")))
	card := &domain.Card{ID: "d", EaseFactor: 2.5, DueDate: day("2024-01-24")}

	n, err := service.DaysUntilDueOn(card, "2024-01-25")
	require.NoError(t, err)
	assert.Equal(t, -1, n)

	n, err = service.DaysUntilDueOn(card, "")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = service.DaysUntilDueOn(card, "not-a-date")
	assert.ErrorIs(t, err, domain.ErrInvalidDate)
}

func TestLongScheduleStaysRepresentable(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	today := day("2024-01-01")

	card, err := service.Initialize("x", today)
	require.NoError(t, err)

	for i := 0; i < 11; i++ {
		card, err = service.Review(card, 5, today)
		require.NoError(t, err)
	}
	assert.Equal(t, 153069, card.Interval)
	assert.Equal(t, card.Interval, service.DaysUntilDue(card, today))

	// Three more perfect reviews compound past year 9999
	for i := 0; i < 3; i++ {
		card, err = service.Review(card, 5, today)
		require.NoError(t, err)
	}
	assert.Equal(t, domain.MaxInterval, card.Interval)
	assert.True(t, domain.MaxDate.Equal(card.DueDate), "due %v", card.DueDate)
	assert.Equal(t, domain.DaysBetween(today, domain.MaxDate), service.DaysUntilDue(card, today))
	require.NoError(t, card.Validate())

	// Further growth stays capped
	card, err = service.Review(card, 5, today)
	require.NoError(t, err)
	assert.Equal(t, domain.MaxInterval, card.Interval)

	postponed, err := service.PostponeReview(card, 10)
	require.NoError(t, err)
	assert.True(t, domain.MaxDate.Equal(postponed.DueDate))
}

func TestPostponeReview(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewDefaultService()
	card := &domain.Card{ID: "p", EaseFactor: 2.5, Interval: 6, Repetition: 2, DueDate: day("2024-01-08")}

	next, err := service.PostponeReview(card, 3)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-11", domain.FormatDate(next.DueDate))
	assert.Equal(t, 6, next.Interval)
	assert.Equal(t, 2, next.Repetition)
	assert.Equal(t, "2024-01-08", domain.FormatDate(card.DueDate))

	_, err = service.PostponeReview(card, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidDays)

	_, err = service.PostponeReview(nil, 1)
	assert.ErrorIs(t, err, domain.ErrNilCard)
}

func TestCustomParams(t *testing.T) {
	t.Parallel() // Enable parallel execution
	service := NewServiceWithParams(NewParams(ParamsConfig{
		DefaultEaseFactor: 2.3,
		FirstInterval:     2,
		SecondInterval:    5,
	}))

	card, err := service.Initialize("c", day("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 2.3, card.EaseFactor)

	card, err = service.Review(card, 4, day("2024-01-01"))
	require.NoError(t, err)
	assert.Equal(t, 2, card.Interval)
	assert.Equal(t, "2024-01-03", domain.FormatDate(card.DueDate))

	card, err = service.Review(card, 4, day("2024-01-03"))
	require.NoError(t, err)
	assert.Equal(t, 5, card.Interval)
}
