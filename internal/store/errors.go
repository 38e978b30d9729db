package store

import (
	"errors"
	"fmt"
)

// Sentinels shared by every CardStore implementation. Driver errors are
// translated to these by the platform packages.
var (
	ErrNotFound      = errors.New("entity not found")
	ErrDuplicate     = errors.New("entity already exists")
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrUpdateFailed is returned when a write was accepted by the driver
	// but did not take effect.
	ErrUpdateFailed = errors.New("update failed")

	// ErrTransactionFailed covers lock timeouts and busy databases. Retrying
	// the whole operation may succeed.
	ErrTransactionFailed = errors.New("transaction failed")

	ErrCardNotFound = fmt.Errorf("%w: card", ErrNotFound)
	ErrCardExists   = fmt.Errorf("%w: card", ErrDuplicate)
)

// IsNotFoundError reports whether err matches ErrNotFound.
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsDuplicateError reports whether err matches ErrDuplicate.
func IsDuplicateError(err error) bool {
	return errors.Is(err, ErrDuplicate)
}

// StoreError records which store operation failed and on which record.
type StoreError struct {
	Entity    string // "card"
	Operation string // "create", "get", "update", ...
	ID        string // empty for operations spanning many records
	Err       error
}

func (e *StoreError) Error() string {
	target := e.Entity
	if e.ID != "" {
		target = fmt.Sprintf("%s %q", e.Entity, e.ID)
	}
	if e.Err == nil {
		return fmt.Sprintf("%s %s failed", e.Operation, target)
	}
	return fmt.Sprintf("%s %s failed: %v", e.Operation, target, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError wraps err with the failing operation.
func NewStoreError(entity, operation, id string, err error) *StoreError {
	return &StoreError{Entity: entity, Operation: operation, ID: id, Err: err}
}
