package card_review

import (
	"context"
	"database/sql"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/store"
)

// CardRepository defines the card operations the review service needs,
// plus access to the connection that transactions are started on.
type CardRepository interface {
	Get(ctx context.Context, id string) (*domain.Card, error)
	GetForUpdate(ctx context.Context, id string) (*domain.Card, error)
	Update(ctx context.Context, card *domain.Card) error
	UpdateKana(ctx context.Context, id string, kana *string) error
	ListDue(ctx context.Context, today time.Time, limit int) ([]*domain.Card, error)

	// WithTx returns a new repository instance that uses the provided transaction.
	WithTx(tx *sql.Tx) CardRepository

	// DB returns the underlying database connection. A nil DB means the
	// repository is not transactional and operations run directly.
	DB() *sql.DB
}

// NewCardRepositoryAdapter creates a new adapter that allows a store.CardStore
// to be used where a CardRepository is expected.
func NewCardRepositoryAdapter(cardStore store.CardStore, db *sql.DB) CardRepository {
	return &cardRepositoryAdapter{
		CardStore: cardStore,
		db:        db,
	}
}

// cardRepositoryAdapter adapts a store.CardStore to the CardRepository interface
type cardRepositoryAdapter struct {
	store.CardStore
	db *sql.DB
}

// WithTx implements CardRepository.WithTx
func (a *cardRepositoryAdapter) WithTx(tx *sql.Tx) CardRepository {
	return &cardRepositoryAdapter{
		CardStore: a.CardStore.WithTx(tx),
		db:        a.db,
	}
}

// DB implements CardRepository.DB
func (a *cardRepositoryAdapter) DB() *sql.DB {
	return a.db
}
