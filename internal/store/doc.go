// Package store declares the card persistence contract: the CardStore
// interface, the error sentinels its implementations map driver errors to,
// and RunInTransaction. Implementations live under internal/platform.
package store
