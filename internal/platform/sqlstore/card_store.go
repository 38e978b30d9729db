package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/phrazzld/kanacards/internal/store"
)

const cardsTable = "cards"

var cardColumns = []string{
	"id",
	"ease_factor",
	"interval_days",
	"repetition",
	"due_date",
	"correct_count",
	"wrong_count",
	"kana",
}

// CardStore implements store.CardStore on database/sql for any Dialect.
type CardStore struct {
	db      store.DBTX
	dialect Dialect
	logger  *slog.Logger
}

// NewCardStore creates a card store over a connection or transaction.
// If logger is nil, a default logger will be used.
func NewCardStore(db store.DBTX, dialect Dialect, logger *slog.Logger) *CardStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &CardStore{
		db:      db,
		dialect: dialect,
		logger: logger.With(
			slog.String("component", "card_store"),
			slog.String("dialect", dialect.Name),
		),
	}
}

// Ensure CardStore implements store.CardStore interface
var _ store.CardStore = (*CardStore)(nil)

// WithTx implements store.CardStore.WithTx
func (s *CardStore) WithTx(tx *sql.Tx) store.CardStore {
	return &CardStore{
		db:      tx,
		dialect: s.dialect,
		logger:  s.logger,
	}
}

// Create implements store.CardStore.Create
func (s *CardStore) Create(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if card == nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrNilCard)
	}
	if err := card.Validate(); err != nil {
		log.Warn("card validation failed during create",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := s.insert(card).ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		mapped := s.dialect.mapError(err)
		if errors.Is(mapped, store.ErrDuplicate) {
			log.Debug("card already exists", slog.String("card_id", card.ID))
			return store.NewStoreError("card", "create", card.ID, store.ErrCardExists)
		}
		log.Error("failed to create card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
		return store.NewStoreError("card", "create", card.ID, mapped)
	}

	log.Debug("card created", slog.String("card_id", card.ID))
	return nil
}

// CreateIfAbsent implements store.CardStore.CreateIfAbsent
func (s *CardStore) CreateIfAbsent(ctx context.Context, card *domain.Card) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if card == nil {
		return false, fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrNilCard)
	}
	if err := card.Validate(); err != nil {
		return false, fmt.Errorf("%w: %w", store.ErrInvalidEntity, err)
	}

	query, args, err := s.insert(card).Suffix("ON CONFLICT (id) DO NOTHING").ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build insert: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to insert card",
			slog.String("error", err.Error()),
			slog.String("card_id", card.ID))
		return false, store.NewStoreError("card", "create", card.ID, s.dialect.mapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return n > 0, nil
}

// Get implements store.CardStore.Get
func (s *CardStore) Get(ctx context.Context, id string) (*domain.Card, error) {
	return s.get(ctx, id, "")
}

// GetForUpdate implements store.CardStore.GetForUpdate
func (s *CardStore) GetForUpdate(ctx context.Context, id string) (*domain.Card, error) {
	return s.get(ctx, id, s.dialect.LockSuffix)
}

func (s *CardStore) get(ctx context.Context, id, suffix string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := s.dialect.builder().
		Select(cardColumns...).
		From(cardsTable).
		Where(squirrel.Eq{"id": id})
	if suffix != "" {
		builder = builder.Suffix(suffix)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	card, err := scanCard(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("card not found", slog.String("card_id", id))
			return nil, store.ErrCardNotFound
		}
		log.Error("failed to get card",
			slog.String("error", err.Error()),
			slog.String("card_id", id))
		return nil, store.NewStoreError("card", "get", id, s.dialect.mapError(err))
	}

	return card, nil
}

// Update implements store.CardStore.Update
// Scheduling fields are written as given; only the identity and due date are
// required.
func (s *CardStore) Update(ctx context.Context, card *domain.Card) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if card == nil {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrNilCard)
	}
	if strings.TrimSpace(card.ID) == "" {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrEmptyCardID)
	}
	if card.DueDate.IsZero() {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrZeroDueDate)
	}
	if domain.NormalizeDate(card.DueDate).After(domain.MaxDate) {
		return fmt.Errorf("%w: %w", store.ErrInvalidEntity, domain.ErrDueDateOutOfRange)
	}

	query, args, err := s.dialect.builder().
		Update(cardsTable).
		Set("ease_factor", card.EaseFactor).
		Set("interval_days", card.Interval).
		Set("repetition", card.Repetition).
		Set("due_date", domain.FormatDate(card.DueDate)).
		Set("correct_count", card.CorrectCount).
		Set("wrong_count", card.WrongCount).
		Set("kana", nullString(card.Kana)).
		Where(squirrel.Eq{"id": card.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	if err := s.exec(ctx, "update", card.ID, query, args); err != nil {
		return err
	}

	log.Debug("card updated",
		slog.String("card_id", card.ID),
		slog.String("due_date", domain.FormatDate(card.DueDate)),
		slog.Int("interval", card.Interval))
	return nil
}

// UpdateKana implements store.CardStore.UpdateKana
func (s *CardStore) UpdateKana(ctx context.Context, id string, kana *string) error {
	query, args, err := s.dialect.builder().
		Update(cardsTable).
		Set("kana", nullString(kana)).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build update: %w", err)
	}

	return s.exec(ctx, "update kana", id, query, args)
}

// Delete implements store.CardStore.Delete
func (s *CardStore) Delete(ctx context.Context, id string) error {
	query, args, err := s.dialect.builder().
		Delete(cardsTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build delete: %w", err)
	}

	return s.exec(ctx, "delete", id, query, args)
}

// ListDue implements store.CardStore.ListDue
func (s *CardStore) ListDue(ctx context.Context, today time.Time, limit int) ([]*domain.Card, error) {
	builder := s.dialect.builder().
		Select(cardColumns...).
		From(cardsTable).
		Where(squirrel.LtOrEq{"due_date": domain.FormatDate(today)}).
		OrderBy("due_date ASC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return s.list(ctx, "list due", builder)
}

// List implements store.CardStore.List
func (s *CardStore) List(ctx context.Context, limit int) ([]*domain.Card, error) {
	builder := s.dialect.builder().
		Select(cardColumns...).
		From(cardsTable).
		OrderBy("due_date ASC", "id ASC")
	if limit > 0 {
		builder = builder.Limit(uint64(limit))
	}

	return s.list(ctx, "list", builder)
}

// Count implements store.CardStore.Count
func (s *CardStore) Count(ctx context.Context) (int, error) {
	query, args, err := s.dialect.builder().
		Select("COUNT(*)").
		From(cardsTable).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build count: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, store.NewStoreError("card", "count", "", s.dialect.mapError(err))
	}
	return n, nil
}

func (s *CardStore) insert(card *domain.Card) squirrel.InsertBuilder {
	return s.dialect.builder().
		Insert(cardsTable).
		Columns(cardColumns...).
		Values(
			card.ID,
			card.EaseFactor,
			card.Interval,
			card.Repetition,
			domain.FormatDate(card.DueDate),
			card.CorrectCount,
			card.WrongCount,
			nullString(card.Kana),
		)
}

// exec runs a statement that must touch exactly one card.
func (s *CardStore) exec(ctx context.Context, operation, id, query string, args []any) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("card statement failed",
			slog.String("operation", operation),
			slog.String("error", err.Error()),
			slog.String("card_id", id))
		return store.NewStoreError("card", operation, id, s.dialect.mapError(err))
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		log.Debug("card not found",
			slog.String("operation", operation),
			slog.String("card_id", id))
		return store.ErrCardNotFound
	}

	return nil
}

func (s *CardStore) list(ctx context.Context, operation string, builder squirrel.SelectBuilder) ([]*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query cards",
			slog.String("operation", operation),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("card", operation, "", s.dialect.mapError(err))
	}
	defer func() { _ = rows.Close() }()

	cards := make([]*domain.Card, 0)
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, store.NewStoreError("card", operation, "", fmt.Errorf("scan: %w", err))
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("card", operation, "", s.dialect.mapError(err))
	}

	log.Debug("cards listed",
		slog.String("operation", operation),
		slog.Int("count", len(cards)))
	return cards, nil
}
