package card_review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/domain/srs"
	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/phrazzld/kanacards/internal/store"
)

// Verify interface compliance at compile time
var _ CardReviewService = (*cardReviewServiceImpl)(nil)

// cardReviewServiceImpl implements the CardReviewService interface.
type cardReviewServiceImpl struct {
	cardRepo   CardRepository
	srsService srs.Service
	logger     *slog.Logger
}

// NewCardReviewService creates a new CardReviewService implementation.
func NewCardReviewService(
	cardRepo CardRepository,
	srsService srs.Service,
	logger *slog.Logger,
) CardReviewService {
	if cardRepo == nil {
		panic("cardRepo cannot be nil")
	}
	if srsService == nil {
		panic("srsService cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &cardReviewServiceImpl{
		cardRepo:   cardRepo,
		srsService: srsService,
		logger:     logger.With(slog.String("component", "card_review_service")),
	}
}

// GetNextCard implements CardReviewService.GetNextCard.
func (s *cardReviewServiceImpl) GetNextCard(ctx context.Context, today time.Time) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	today = s.resolveToday(today)

	cards, err := s.cardRepo.ListDue(ctx, today, 1)
	if err != nil {
		log.Error("failed to get next review card",
			slog.String("error", err.Error()),
			slog.String("today", domain.FormatDate(today)))
		return nil, NewGetNextCardError("failed to list due cards", err)
	}

	if len(cards) == 0 {
		log.Debug("no cards due for review", slog.String("today", domain.FormatDate(today)))
		return nil, ErrNoCardsDue
	}

	log.Debug("retrieved next review card", slog.String("card_id", cards[0].ID))
	return cards[0], nil
}

// ListDue implements CardReviewService.ListDue.
func (s *cardReviewServiceImpl) ListDue(ctx context.Context, today time.Time, limit int) ([]*domain.Card, error) {
	cards, err := s.cardRepo.ListDue(ctx, s.resolveToday(today), limit)
	if err != nil {
		return nil, NewServiceError("list_due", "failed to list due cards", err)
	}
	return cards, nil
}

// GetCard implements CardReviewService.GetCard.
func (s *cardReviewServiceImpl) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	card, err := s.cardRepo.Get(ctx, id)
	if err != nil {
		return nil, mapStoreError("get_card", err)
	}
	return card, nil
}

// SubmitAnswer implements CardReviewService.SubmitAnswer.
func (s *cardReviewServiceImpl) SubmitAnswer(
	ctx context.Context,
	id string,
	quality int,
	today time.Time,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("processing review answer",
		slog.String("card_id", id),
		slog.Int("quality", quality))

	// Reject bad grades before taking any lock
	if quality < domain.MinQuality || quality > domain.MaxQuality {
		log.Warn("invalid review quality",
			slog.String("card_id", id),
			slog.Int("quality", quality))
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidQuality, quality)
	}

	today = s.resolveToday(today)

	var updated *domain.Card
	err := s.runInTransaction(ctx, func(ctx context.Context, repo CardRepository) error {
		stored, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next, err := s.srsService.Review(stored, quality, today)
		if err != nil {
			return err
		}

		// The annotation always comes from the stored row
		next.Kana = stored.Clone().Kana

		if err := repo.Update(ctx, next); err != nil {
			return err
		}

		updated = next
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuality) {
			return nil, err
		}
		if store.IsNotFoundError(err) {
			log.Warn("card not found for review", slog.String("card_id", id))
			return nil, ErrCardNotFound
		}

		log.Error("failed to submit answer",
			slog.String("error", err.Error()),
			slog.String("card_id", id))
		return nil, NewSubmitAnswerError("failed to record review", err)
	}

	log.Info("review recorded",
		slog.String("card_id", id),
		slog.Int("quality", quality),
		slog.Float64("ease_factor", updated.EaseFactor),
		slog.Int("interval", updated.Interval),
		slog.Int("repetition", updated.Repetition),
		slog.String("due_date", domain.FormatDate(updated.DueDate)))

	return updated, nil
}

// SetKana implements CardReviewService.SetKana.
func (s *cardReviewServiceImpl) SetKana(ctx context.Context, id string, kana *string) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var value *string
	if kana != nil {
		if trimmed := strings.TrimSpace(*kana); trimmed != "" {
			value = &trimmed
		}
	}

	var updated *domain.Card
	err := s.runInTransaction(ctx, func(ctx context.Context, repo CardRepository) error {
		if err := repo.UpdateKana(ctx, id, value); err != nil {
			return err
		}
		card, err := repo.Get(ctx, id)
		if err != nil {
			return err
		}
		updated = card
		return nil
	})
	if err != nil {
		return nil, mapStoreError("set_kana", err)
	}

	log.Info("kana updated",
		slog.String("card_id", id),
		slog.Bool("cleared", value == nil))
	return updated, nil
}

// Postpone implements CardReviewService.Postpone.
func (s *cardReviewServiceImpl) Postpone(ctx context.Context, id string, days int) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if days < 1 {
		return nil, fmt.Errorf("%w: got %d", domain.ErrInvalidDays, days)
	}

	var updated *domain.Card
	err := s.runInTransaction(ctx, func(ctx context.Context, repo CardRepository) error {
		stored, err := repo.GetForUpdate(ctx, id)
		if err != nil {
			return err
		}

		next, err := s.srsService.PostponeReview(stored, days)
		if err != nil {
			return err
		}

		if err := repo.Update(ctx, next); err != nil {
			return err
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, mapStoreError("postpone", err)
	}

	log.Info("card postponed",
		slog.String("card_id", id),
		slog.Int("days", days),
		slog.String("due_date", domain.FormatDate(updated.DueDate)))
	return updated, nil
}

// DaysUntilDue implements CardReviewService.DaysUntilDue.
func (s *cardReviewServiceImpl) DaysUntilDue(ctx context.Context, id string, today string) (int, error) {
	card, err := s.GetCard(ctx, id)
	if err != nil {
		return 0, err
	}

	days, err := s.srsService.DaysUntilDueOn(card, today)
	if err != nil {
		return 0, err
	}
	return days, nil
}

func (s *cardReviewServiceImpl) resolveToday(today time.Time) time.Time {
	if today.IsZero() {
		return s.srsService.Today()
	}
	return domain.NormalizeDate(today)
}

// runInTransaction runs fn against a transaction-bound repository. Without a
// database connection fn runs on the repository directly.
func (s *cardReviewServiceImpl) runInTransaction(
	ctx context.Context,
	fn func(context.Context, CardRepository) error,
) error {
	db := s.cardRepo.DB()
	if db == nil {
		return fn(ctx, s.cardRepo)
	}

	return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, s.cardRepo.WithTx(tx))
	})
}

// mapStoreError converts store-level errors into service errors. Domain
// validation errors pass through unchanged.
func mapStoreError(operation string, err error) error {
	switch {
	case store.IsNotFoundError(err):
		return ErrCardNotFound
	case errors.Is(err, domain.ErrInvalidDays),
		errors.Is(err, domain.ErrInvalidQuality),
		errors.Is(err, domain.ErrInvalidDate):
		return err
	default:
		return NewServiceError(operation, "store operation failed", err)
	}
}
