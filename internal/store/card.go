package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
)

// CardStore defines the interface for card data persistence.
// Implementations persist every scheduling field of domain.Card verbatim and
// must not interpret them.
type CardStore interface {
	// Create saves a new card.
	// Returns ErrCardExists if a card with the same ID is already stored.
	// Returns ErrInvalidEntity if the card fails domain validation.
	Create(ctx context.Context, card *domain.Card) error

	// CreateIfAbsent inserts the card unless its ID is already stored.
	// Reports whether a row was inserted. Existing rows are never overwritten.
	CreateIfAbsent(ctx context.Context, card *domain.Card) (bool, error)

	// Get retrieves a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Get(ctx context.Context, id string) (*domain.Card, error)

	// GetForUpdate retrieves a card and locks its row until the surrounding
	// transaction ends, where the backend supports row locks.
	// It should be called on a store obtained from WithTx.
	GetForUpdate(ctx context.Context, id string) (*domain.Card, error)

	// Update overwrites all persisted fields of an existing card.
	// Returns ErrCardNotFound if the card does not exist.
	Update(ctx context.Context, card *domain.Card) error

	// UpdateKana sets or clears (nil) the reading annotation of a card.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateKana(ctx context.Context, id string, kana *string) error

	// Delete removes a card by its ID.
	// Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id string) error

	// ListDue returns cards whose due date is on or before today, earliest
	// first, ties broken by ID. A limit <= 0 means no limit.
	ListDue(ctx context.Context, today time.Time, limit int) ([]*domain.Card, error)

	// List returns all cards ordered by due date. A limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*domain.Card, error)

	// Count returns the number of stored cards.
	Count(ctx context.Context) (int, error)

	// WithTx returns a CardStore that runs every statement on tx.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       card, err := cardStore.WithTx(tx).GetForUpdate(ctx, id)
	//       ...
	//   })
	WithTx(tx *sql.Tx) CardStore
}
