package sqlstore

import (
	"github.com/Masterminds/squirrel"
)

// Dialect captures the differences between SQL backends that the card store
// has to care about. Everything else is plain SQL shared by all backends.
type Dialect struct {
	// Name identifies the backend in logs.
	Name string

	// Placeholder is the bind variable format (? or $1).
	Placeholder squirrel.PlaceholderFormat

	// LockSuffix is appended to GetForUpdate selects. Empty when the backend
	// serializes writers at the transaction level instead.
	LockSuffix string

	// MapError translates driver errors into store sentinels. It must return
	// nil for nil and leave unknown errors untouched.
	MapError func(error) error
}

func (d Dialect) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(d.Placeholder)
}

func (d Dialect) mapError(err error) error {
	if d.MapError == nil {
		return err
	}
	return d.MapError(err)
}
