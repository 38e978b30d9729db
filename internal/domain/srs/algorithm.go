package srs

import (
	"math"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
)

// calculateNewEaseFactor applies the SM-2 ease curve for one review grade.
//
//	EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02))
//
// Quality 5 raises the ease by 0.1, quality 4 leaves it unchanged and anything
// lower shrinks it. The result is clamped to params.MinEaseFactor and rounded to
// params.EasePrecision decimal places.
func calculateNewEaseFactor(currentEF float64, quality int, params *Params) float64 {
	q := float64(domain.MaxQuality - quality)
	newEF := currentEF + (0.1 - q*(0.08+q*0.02))

	if newEF < params.MinEaseFactor {
		newEF = params.MinEaseFactor
	}

	return roundTo(newEF, params.EasePrecision)
}

// calculateNewInterval determines the interval in days for the updated
// repetition count.
//
// Parameters:
//   - previousInterval: The interval before this review
//   - repetition: The repetition count after this review has been applied
//   - easeFactor: The ease factor before this review
//   - passed: Whether the grade was at or above domain.PassingQuality
//   - params: Configuration parameters for the SRS algorithm
//
// A failed review always returns params.LapseInterval. Correct reviews follow
// the SM-2 bootstrap (first, second) and then compound by the ease factor.
// The compounded value uses math.Round, so exact halves round away from zero,
// and is capped at domain.MaxInterval.
func calculateNewInterval(
	previousInterval int,
	repetition int,
	easeFactor float64,
	passed bool,
	params *Params,
) int {
	if !passed {
		return params.LapseInterval
	}

	switch repetition {
	case 1:
		return params.FirstInterval
	case 2:
		return params.SecondInterval
	default:
		next := math.Round(float64(previousInterval) * easeFactor)
		if next > domain.MaxInterval {
			return domain.MaxInterval
		}
		return int(next)
	}
}

// calculateDueDate returns today plus the interval, never less than one day
// and never after domain.MaxDate. The stored interval itself is left as computed.
func calculateDueDate(interval int, today time.Time) time.Time {
	return domain.AddDays(today, max(1, interval))
}

// calculateNextCard applies a single review to a copy of the card.
//
// The steps run in a fixed order: counters and repetition, then the interval
// from the updated repetition count and the previous ease, then the ease
// factor, then the due date. The input card is never modified.
func calculateNextCard(
	card *domain.Card,
	quality int,
	today time.Time,
	params *Params,
) *domain.Card {
	next := card.Clone()

	// Repair a record that never had an ease factor
	previousEF := next.EaseFactor
	if previousEF <= 0 {
		previousEF = params.DefaultEaseFactor
	}

	passed := quality >= domain.PassingQuality
	if passed {
		next.CorrectCount++
		next.Repetition++
	} else {
		next.WrongCount++
		next.Repetition = 0
	}

	next.Interval = calculateNewInterval(card.Interval, next.Repetition, previousEF, passed, params)
	next.EaseFactor = calculateNewEaseFactor(previousEF, quality, params)
	next.DueDate = calculateDueDate(next.Interval, today)

	return next
}

// roundTo rounds v to the given number of decimal places.
func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
