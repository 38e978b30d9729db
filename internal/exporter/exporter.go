// Package exporter writes the scheduling state of every stored card as CSV.
package exporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/phrazzld/kanacards/internal/store"
)

// Header is the first row of every export.
var Header = []string{
	"id",
	"kana",
	"ease_factor",
	"interval",
	"repetition",
	"due_date",
	"correct_count",
	"wrong_count",
}

// Exporter streams cards from a store.
type Exporter struct {
	cards  store.CardStore
	logger *slog.Logger
}

// New creates an Exporter. If logger is nil, a default logger will be used.
func New(cards store.CardStore, logger *slog.Logger) *Exporter {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{
		cards:  cards,
		logger: logger.With(slog.String("component", "exporter")),
	}
}

// Export writes a header and one row per card, ordered by due date.
// Returns the number of cards written.
func (e *Exporter) Export(ctx context.Context, w io.Writer) (int, error) {
	log := logger.FromContextOrDefault(ctx, e.logger)

	cards, err := e.cards.List(ctx, 0)
	if err != nil {
		return 0, fmt.Errorf("failed to list cards: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return 0, fmt.Errorf("failed to write header: %w", err)
	}

	for _, card := range cards {
		if err := cw.Write(Record(card)); err != nil {
			return 0, fmt.Errorf("failed to write card %q: %w", card.ID, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return 0, fmt.Errorf("failed to flush export: %w", err)
	}

	log.Info("export completed", slog.Int("count", len(cards)))
	return len(cards), nil
}

// Record renders one card in Header order. The ease factor keeps four
// decimals; a missing annotation is an empty field.
func Record(card *domain.Card) []string {
	return []string{
		card.ID,
		card.KanaOrEmpty(),
		strconv.FormatFloat(card.EaseFactor, 'f', 4, 64),
		strconv.Itoa(card.Interval),
		strconv.Itoa(card.Repetition),
		domain.FormatDate(card.DueDate),
		strconv.Itoa(card.CorrectCount),
		strconv.Itoa(card.WrongCount),
	}
}
