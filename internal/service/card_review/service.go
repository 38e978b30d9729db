package card_review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
)

// CardReviewService runs review sessions over stored cards using the SM-2
// scheduler. A zero today means "today per the scheduler's clock".
type CardReviewService interface {
	// GetNextCard retrieves the card with the earliest due date on or before today.
	//
	// Returns:
	//   - (*domain.Card, nil): The next card due for review if one exists
	//   - (nil, ErrNoCardsDue): If no card is due
	//   - (nil, error): Any other error, typically from the database
	//
	// This method does not modify any data.
	GetNextCard(ctx context.Context, today time.Time) (*domain.Card, error)

	// ListDue returns the cards due on or before today, earliest first.
	// A limit <= 0 means no limit.
	ListDue(ctx context.Context, today time.Time, limit int) ([]*domain.Card, error)

	// GetCard retrieves a card by ID. Returns ErrCardNotFound if missing.
	GetCard(ctx context.Context, id string) (*domain.Card, error)

	// SubmitAnswer applies a review grade to a card and persists the result.
	//
	// Within a single transaction it:
	// 1. Loads and locks the stored card
	// 2. Computes the next schedule with the scheduler
	// 3. Carries the stored reading annotation over to the new state
	// 4. Writes the new state back
	//
	// Returns:
	//   - (*domain.Card, nil): The updated card
	//   - (nil, domain.ErrInvalidQuality): If quality is outside [0, 5]
	//   - (nil, ErrCardNotFound): If the card does not exist
	//   - (nil, error): Any other error, typically from the database
	SubmitAnswer(ctx context.Context, id string, quality int, today time.Time) (*domain.Card, error)

	// SetKana stores (or clears, for nil or blank) the reading annotation.
	// The schedule is not touched.
	SetKana(ctx context.Context, id string, kana *string) (*domain.Card, error)

	// Postpone pushes the card's due date forward by days (>= 1) without
	// changing its schedule. Returns domain.ErrInvalidDays for days < 1.
	Postpone(ctx context.Context, id string, days int) (*domain.Card, error)

	// DaysUntilDue reports how many days remain until the card is due.
	// today is an ISO date; "" means today per the clock.
	// Returns domain.ErrInvalidDate if today cannot be parsed.
	DaysUntilDue(ctx context.Context, id string, today string) (int, error)
}

// Common error types for CardReviewService
var (
	// ErrNoCardsDue indicates that no card is due for review.
	ErrNoCardsDue = errors.New("no cards due for review")

	// ErrCardNotFound indicates that the card does not exist.
	ErrCardNotFound = errors.New("card not found")
)

// ServiceError wraps errors from the card review service with additional context.
// This allows consumers to differentiate between different types of service errors
// using errors.As instead of string matching.
type ServiceError struct {
	// Operation is the operation that failed (e.g., "get_next_card", "submit_answer")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}

// NewServiceError returns a new ServiceError for the given operation.
func NewServiceError(operation, message string, err error) *ServiceError {
	return &ServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// NewSubmitAnswerError returns a new ServiceError for the submit_answer operation.
func NewSubmitAnswerError(message string, err error) *ServiceError {
	return NewServiceError("submit_answer", message, err)
}

// NewGetNextCardError returns a new ServiceError for the get_next_card operation.
func NewGetNextCardError(message string, err error) *ServiceError {
	return NewServiceError("get_next_card", message, err)
}
