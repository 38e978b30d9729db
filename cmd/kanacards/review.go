package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/service/card_review"
)

// reviewSession drives the interactive review loop over a snapshot of the
// cards due at its start.
type reviewSession struct {
	svc card_review.CardReviewService
	in  *bufio.Reader
	out io.Writer

	// shuffle reorders the snapshot before the first card; nil keeps due order.
	shuffle func([]*domain.Card)
}

func newReviewSession(svc card_review.CardReviewService, in io.Reader, out io.Writer) *reviewSession {
	return &reviewSession{svc: svc, in: bufio.NewReader(in), out: out}
}

// shuffleCards randomizes the review order.
func shuffleCards(cards []*domain.Card) {
	rand.Shuffle(len(cards), func(i, j int) { cards[i], cards[j] = cards[j], cards[i] })
}

var (
	// errQuit signals that the user ended the session.
	errQuit = errors.New("review session ended")

	// errSkip moves to the next card without grading the current one.
	errSkip = errors.New("card skipped")
)

// Run reviews every card due on today until the list is exhausted or the
// user quits. Skipped cards keep their schedule. It returns how many cards
// were graded.
func (s *reviewSession) Run(ctx context.Context, today time.Time, limit int) (int, error) {
	cards, err := s.svc.ListDue(ctx, today, limit)
	if err != nil {
		return 0, err
	}
	if len(cards) == 0 {
		fmt.Fprintln(s.out, "No cards due for review.")
		return 0, nil
	}

	if s.shuffle != nil {
		s.shuffle(cards)
	}

	fmt.Fprintf(s.out, "%d cards due. Grade each from 0 (forgot) to 5 (perfect), s to skip, q to quit.\n", len(cards))

	reviewed, skipped := 0, 0
	for i, card := range cards {
		if err := ctx.Err(); err != nil {
			return reviewed, err
		}

		fmt.Fprintf(s.out, "\n[%d/%d] %s", i+1, len(cards), card.ID)
		if card.Kana != nil {
			fmt.Fprintf(s.out, " (%s)", *card.Kana)
		}
		fmt.Fprintln(s.out)

		updated, err := s.grade(ctx, card.ID, today)
		if errors.Is(err, errQuit) {
			break
		}
		if errors.Is(err, errSkip) {
			skipped++
			fmt.Fprintln(s.out, "Skipped.")
			continue
		}
		if err != nil {
			return reviewed, err
		}

		reviewed++
		fmt.Fprintf(s.out, "Next review %s (interval %d, ease %.2f)\n",
			domain.FormatDate(updated.DueDate), updated.Interval, updated.EaseFactor)
	}

	fmt.Fprintf(s.out, "\nReviewed %d of %d cards.\n", reviewed, len(cards))
	if skipped > 0 {
		fmt.Fprintf(s.out, "Skipped %d.\n", skipped)
	}
	return reviewed, nil
}

// grade prompts until the user enters a valid quality or quits.
func (s *reviewSession) grade(ctx context.Context, id string, today time.Time) (*domain.Card, error) {
	for {
		fmt.Fprint(s.out, "Quality (0-5, s to skip, q to quit): ")

		line, readErr := s.in.ReadString('\n')
		input := strings.TrimSpace(line)
		if input == "" && readErr != nil {
			if errors.Is(readErr, io.EOF) {
				fmt.Fprintln(s.out)
				return nil, errQuit
			}
			return nil, fmt.Errorf("failed to read answer: %w", readErr)
		}

		switch strings.ToLower(input) {
		case "q":
			return nil, errQuit
		case "s":
			return nil, errSkip
		}

		quality, err := strconv.Atoi(input)
		if err != nil {
			fmt.Fprintf(s.out, "Enter a number from %d to %d.\n", domain.MinQuality, domain.MaxQuality)
			continue
		}

		updated, err := s.svc.SubmitAnswer(ctx, id, quality, today)
		if errors.Is(err, domain.ErrInvalidQuality) {
			fmt.Fprintf(s.out, "Enter a number from %d to %d.\n", domain.MinQuality, domain.MaxQuality)
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
}
