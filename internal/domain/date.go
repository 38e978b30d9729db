package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the ISO calendar date format used for textual dates.
const DateLayout = time.DateOnly

// MaxInterval is the number of days from 0001-01-01 to MaxDate. No schedule
// can usefully reach further.
const MaxInterval = 3652058

// MaxDate is the latest calendar date DateLayout can hold.
var MaxDate = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// NormalizeDate strips the clock part of t, returning midnight UTC of the
// calendar day t falls on in its own location.
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD). A full RFC 3339
// timestamp is also accepted and truncated to its date.
// Returns ErrInvalidDate if the text is not a valid date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)

	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, nil
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return NormalizeDate(t), nil
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return NormalizeDate(t).Format(DateLayout)
}

// DaysBetween returns the whole number of calendar days from `from` to `to`.
// The result is negative when `to` is earlier than `from`.
func DaysBetween(from, to time.Time) int {
	// Unix seconds instead of Sub: a Duration saturates after ~292 years
	return int((NormalizeDate(to).Unix() - NormalizeDate(from).Unix()) / secondsPerDay)
}

const secondsPerDay = 24 * 60 * 60

// AddDays returns the calendar date n days after t, capped at MaxDate.
func AddDays(t time.Time, n int) time.Time {
	d := NormalizeDate(t).AddDate(0, 0, min(n, MaxInterval))
	if d.After(MaxDate) {
		return MaxDate
	}
	return d
}
