package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/phrazzld/kanacards/internal/api/shared"
	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/phrazzld/kanacards/internal/redact"
	"github.com/phrazzld/kanacards/internal/service/card_review"
)

// CardHandler handles card-related HTTP requests
type CardHandler struct {
	cardReviewService card_review.CardReviewService
	logger            *slog.Logger
}

// NewCardHandler creates a new CardHandler
func NewCardHandler(
	cardReviewService card_review.CardReviewService,
	logger *slog.Logger,
) *CardHandler {
	if cardReviewService == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("cardReviewService cannot be nil for CardHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for CardHandler")
	}

	return &CardHandler{
		cardReviewService: cardReviewService,
		logger:            logger.With(slog.String("component", "card_handler")),
	}
}

// GetNextReviewCard handles GET /api/cards/next requests.
// It returns the card with the earliest due date, or 204 when nothing is due.
func (h *CardHandler) GetNextReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	today, err := parseTodayQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardReviewService.GetNextCard(r.Context(), today)
	if errors.Is(err, card_review.ErrNoCardsDue) {
		log.Debug("no cards due for review")
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get next review card")
		return
	}

	log.Debug("successfully retrieved next review card", slog.String("card_id", card.ID))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// ListDueCards handles GET /api/cards/due requests.
func (h *CardHandler) ListDueCards(w http.ResponseWriter, r *http.Request) {
	today, err := parseTodayQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	limit, err := parseLimitQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	cards, err := h.cardReviewService.ListDue(r.Context(), today, limit)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to list due cards")
		return
	}

	todayText := ""
	if !today.IsZero() {
		todayText = domain.FormatDate(today)
	}

	shared.RespondWithJSON(w, r, http.StatusOK, CardListResponse{
		Today: todayText,
		Count: len(cards),
		Cards: cardsToResponse(cards),
	})
}

// GetCard handles GET /api/cards/{id} requests.
func (h *CardHandler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	card, err := h.cardReviewService.GetCard(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to get card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// GetDaysUntilDue handles GET /api/cards/{id}/due requests.
func (h *CardHandler) GetDaysUntilDue(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	days, err := h.cardReviewService.DaysUntilDue(r.Context(), id, r.URL.Query().Get("today"))
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute due date")
		return
	}

	card, err := h.cardReviewService.GetCard(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to compute due date")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DueResponse{
		ID:           id,
		DueDate:      domain.FormatDate(card.DueDate),
		DaysUntilDue: days,
		Due:          days <= 0,
	})
}

// SubmitAnswer handles POST /api/cards/{id}/answer requests.
// It grades a review and returns the rescheduled card.
func (h *CardHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := getPathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SubmitAnswerRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	var today time.Time
	if req.Today != "" {
		today, err = domain.ParseDate(req.Today)
		if err != nil {
			HandleAPIError(w, r, err, "")
			return
		}
	}

	card, err := h.cardReviewService.SubmitAnswer(r.Context(), id, *req.Quality, today)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to submit answer")
		return
	}

	log.Debug("successfully submitted answer",
		slog.String("card_id", id),
		slog.Int("quality", *req.Quality))
	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// SetKana handles PUT /api/cards/{id}/kana requests.
func (h *CardHandler) SetKana(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req SetKanaRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cardReviewService.SetKana(r.Context(), id, req.Kana)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to update kana")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// PostponeCard handles POST /api/cards/{id}/postpone requests.
func (h *CardHandler) PostponeCard(w http.ResponseWriter, r *http.Request) {
	id, err := getPathID(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	var req PostponeRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	card, err := h.cardReviewService.Postpone(r.Context(), id, *req.Days)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to postpone card")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, cardToResponse(card))
}

// decodeAndValidate reads a JSON body into req and runs its validation tags.
// On failure it writes a 400 response and returns false.
func (h *CardHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	if err := shared.DecodeJSON(r, req); err != nil {
		log.Warn("invalid request format", slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err), "")
		return false
	}

	if err := shared.ValidateRequest(req); err != nil {
		log.Warn("validation error", slog.String("error", redact.Error(err)))
		HandleAPIError(w, r, err, "")
		return false
	}

	return true
}
