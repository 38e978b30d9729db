package api

import (
	"github.com/phrazzld/kanacards/internal/domain"
)

// CardResponse is the JSON form of a card's scheduling state.
type CardResponse struct {
	ID           string  `json:"id"`
	Kana         *string `json:"kana"`
	EaseFactor   float64 `json:"ease_factor"`
	Interval     int     `json:"interval"`
	Repetition   int     `json:"repetition"`
	DueDate      string  `json:"due_date"`
	CorrectCount int     `json:"correct_count"`
	WrongCount   int     `json:"wrong_count"`
}

// CardListResponse wraps a list of cards.
type CardListResponse struct {
	Today string         `json:"today"`
	Count int            `json:"count"`
	Cards []CardResponse `json:"cards"`
}

// DueResponse answers GET /api/cards/{id}/due.
type DueResponse struct {
	ID           string `json:"id"`
	DueDate      string `json:"due_date"`
	DaysUntilDue int    `json:"days_until_due"`
	Due          bool   `json:"due"`
}

// SubmitAnswerRequest is the body of POST /api/cards/{id}/answer. The grade
// range is enforced by the scheduler so every caller gets the same error.
type SubmitAnswerRequest struct {
	Quality *int   `json:"quality" validate:"required"`
	Today   string `json:"today"   validate:"omitempty,datetime=2006-01-02"`
}

// SetKanaRequest is the body of PUT /api/cards/{id}/kana. A null or blank
// kana clears the annotation.
type SetKanaRequest struct {
	Kana *string `json:"kana" validate:"omitempty,max=256"`
}

// PostponeRequest is the body of POST /api/cards/{id}/postpone.
type PostponeRequest struct {
	Days *int `json:"days" validate:"required"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Cards  int    `json:"cards"`
}

// cardToResponse converts a domain.Card to a CardResponse
func cardToResponse(card *domain.Card) CardResponse {
	return CardResponse{
		ID:           card.ID,
		Kana:         card.Clone().Kana,
		EaseFactor:   card.EaseFactor,
		Interval:     card.Interval,
		Repetition:   card.Repetition,
		DueDate:      domain.FormatDate(card.DueDate),
		CorrectCount: card.CorrectCount,
		WrongCount:   card.WrongCount,
	}
}

func cardsToResponse(cards []*domain.Card) []CardResponse {
	out := make([]CardResponse, 0, len(cards))
	for _, c := range cards {
		out = append(out, cardToResponse(c))
	}
	return out
}
