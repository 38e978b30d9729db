package card_review

import (
	"context"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
)

// MockCardReviewService is a mock implementation of the CardReviewService interface for testing.
// Unset functions return zero values.
type MockCardReviewService struct {
	GetNextCardFn  func(ctx context.Context, today time.Time) (*domain.Card, error)
	ListDueFn      func(ctx context.Context, today time.Time, limit int) ([]*domain.Card, error)
	GetCardFn      func(ctx context.Context, id string) (*domain.Card, error)
	SubmitAnswerFn func(ctx context.Context, id string, quality int, today time.Time) (*domain.Card, error)
	SetKanaFn      func(ctx context.Context, id string, kana *string) (*domain.Card, error)
	PostponeFn     func(ctx context.Context, id string, days int) (*domain.Card, error)
	DaysUntilDueFn func(ctx context.Context, id string, today string) (int, error)
}

var _ CardReviewService = (*MockCardReviewService)(nil)

// GetNextCard implements CardReviewService.
func (m *MockCardReviewService) GetNextCard(ctx context.Context, today time.Time) (*domain.Card, error) {
	if m.GetNextCardFn != nil {
		return m.GetNextCardFn(ctx, today)
	}
	return nil, nil
}

// ListDue implements CardReviewService.
func (m *MockCardReviewService) ListDue(ctx context.Context, today time.Time, limit int) ([]*domain.Card, error) {
	if m.ListDueFn != nil {
		return m.ListDueFn(ctx, today, limit)
	}
	return nil, nil
}

// GetCard implements CardReviewService.
func (m *MockCardReviewService) GetCard(ctx context.Context, id string) (*domain.Card, error) {
	if m.GetCardFn != nil {
		return m.GetCardFn(ctx, id)
	}
	return nil, nil
}

// SubmitAnswer implements CardReviewService.
func (m *MockCardReviewService) SubmitAnswer(
	ctx context.Context,
	id string,
	quality int,
	today time.Time,
) (*domain.Card, error) {
	if m.SubmitAnswerFn != nil {
		return m.SubmitAnswerFn(ctx, id, quality, today)
	}
	return nil, nil
}

// SetKana implements CardReviewService.
func (m *MockCardReviewService) SetKana(ctx context.Context, id string, kana *string) (*domain.Card, error) {
	if m.SetKanaFn != nil {
		return m.SetKanaFn(ctx, id, kana)
	}
	return nil, nil
}

// Postpone implements CardReviewService.
func (m *MockCardReviewService) Postpone(ctx context.Context, id string, days int) (*domain.Card, error) {
	if m.PostponeFn != nil {
		return m.PostponeFn(ctx, id, days)
	}
	return nil, nil
}

// DaysUntilDue implements CardReviewService.
func (m *MockCardReviewService) DaysUntilDue(ctx context.Context, id string, today string) (int, error) {
	if m.DaysUntilDueFn != nil {
		return m.DaysUntilDueFn(ctx, id, today)
	}
	return 0, nil
}
