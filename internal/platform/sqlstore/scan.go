package sqlstore

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanCard reads one row in cardColumns order. Every scheduling column is
// scanned as nullable and goes through domain.CardRecord, so rows written by
// hand or by older tools get the same defaults as imported records. A row
// without a due date is due today.
func scanCard(row rowScanner) (*domain.Card, error) {
	var (
		id             string
		ease           sql.NullFloat64
		interval, rep  sql.NullInt64
		correct, wrong sql.NullInt64
		due            dateValue
		kana           sql.NullString
	)

	if err := row.Scan(&id, &ease, &interval, &rep, &due, &correct, &wrong, &kana); err != nil {
		return nil, err
	}

	rec := domain.CardRecord{
		ID:           id,
		EaseFactor:   floatPtr(ease),
		Interval:     intPtr(interval),
		Repetition:   intPtr(rep),
		CorrectCount: intPtr(correct),
		WrongCount:   intPtr(wrong),
	}
	if due.Valid {
		rec.DueDate = domain.FormatDate(due.Time)
	}
	if kana.Valid {
		rec.Kana = &kana.String
	}

	return rec.ToCard(time.Now().UTC())
}

// dateValue scans a calendar date stored either as a native DATE (time.Time)
// or as ISO text. NULL leaves Valid false.
type dateValue struct {
	Time  time.Time
	Valid bool
}

// Scan implements sql.Scanner.
func (d *dateValue) Scan(src any) error {
	d.Valid = false
	switch v := src.(type) {
	case nil:
		return nil
	case time.Time:
		d.Time = domain.NormalizeDate(v)
	case string:
		return d.parse(v)
	case []byte:
		return d.parse(string(v))
	default:
		return fmt.Errorf("unsupported due_date type %T", src)
	}
	d.Valid = true
	return nil
}

func (d *dateValue) parse(s string) error {
	t, err := domain.ParseDate(s)
	if err != nil {
		return err
	}
	d.Time, d.Valid = t, true
	return nil
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
