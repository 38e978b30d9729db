package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/phrazzld/kanacards/internal/domain"
	"github.com/phrazzld/kanacards/internal/importer"
	"github.com/phrazzld/kanacards/internal/platform/migrate"
	"github.com/spf13/cobra"
)

// parseTodayFlag turns the --today flag into a calendar date. Empty means
// the scheduler's clock.
func parseTodayFlag(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return domain.ParseDate(s)
}

func (c *cli) newImportCmd() *cobra.Command {
	var (
		delimiter string
		header    bool
		today     string
	)

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Add cards for every new ID in a CSV file (- reads stdin)",
		Long: `Import reads rows of id,word_phrase,translation and creates a card for
every ID that is not stored yet. Existing cards are never overwritten and rows
with a blank ID are skipped. The whole file is imported in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseTodayFlag(today)
			if err != nil {
				return err
			}

			return c.withApp(cmd.Context(), false, func(ctx context.Context, app *application) error {
				opts, err := app.importOptions()
				if err != nil {
					return err
				}
				if cmd.Flags().Changed("delimiter") {
					if opts.Delimiter, err = importer.ParseDelimiter(delimiter); err != nil {
						return err
					}
				}
				if cmd.Flags().Changed("header") {
					opts.HasHeader = header
				}

				in := c.stdin
				if args[0] != "-" {
					f, err := os.Open(args[0])
					if err != nil {
						return fmt.Errorf("failed to open import file: %w", err)
					}
					defer func() { _ = f.Close() }()
					in = f
				}

				result, err := app.importer.Import(ctx, in, opts, day)
				if err != nil {
					return err
				}

				fmt.Fprintf(c.stdout, "Imported: %d added, %d already present, %d skipped\n",
					result.Added, result.Existing, result.Skipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&delimiter, "delimiter", "", `field delimiter (one character, or "tab")`)
	cmd.Flags().BoolVar(&header, "header", false, "the first row is a header")
	cmd.Flags().StringVar(&today, "today", "", "due date for new cards (YYYY-MM-DD)")
	return cmd
}

func (c *cli) newExportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file]",
		Short: "Write every card's progress as CSV (stdout when no file is given)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), false, func(ctx context.Context, app *application) error {
				out := c.stdout
				if len(args) == 1 {
					f, err := os.Create(args[0])
					if err != nil {
						return fmt.Errorf("failed to create export file: %w", err)
					}
					defer func() { _ = f.Close() }()
					out = f
				}

				n, err := app.exporter.Export(ctx, out)
				if err != nil {
					return err
				}
				if len(args) == 1 {
					fmt.Fprintf(c.stdout, "Exported %d cards to %s\n", n, args[0])
				}
				return nil
			})
		},
	}
}

func (c *cli) newDueCmd() *cobra.Command {
	var (
		today string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "due",
		Short: "List the cards due for review",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseTodayFlag(today)
			if err != nil {
				return err
			}

			return c.withApp(cmd.Context(), false, func(ctx context.Context, app *application) error {
				cards, err := app.cardReviewService.ListDue(ctx, day, limit)
				if err != nil {
					return err
				}
				if len(cards) == 0 {
					fmt.Fprintln(c.stdout, "No cards due for review.")
					return nil
				}

				fmt.Fprintf(c.stdout, "%d cards due:\n\n", len(cards))
				w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintln(w, "ID\tKana\tDue\tInterval\tEase\tReps")
				for _, card := range cards {
					fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.2f\t%d\n",
						card.ID, card.KanaOrEmpty(), domain.FormatDate(card.DueDate),
						card.Interval, card.EaseFactor, card.Repetition)
				}
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "review date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum cards to list (0 for all)")
	return cmd
}

func (c *cli) newShowCmd() *cobra.Command {
	var today string

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a card's schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withApp(cmd.Context(), false, func(ctx context.Context, app *application) error {
				card, err := app.cardReviewService.GetCard(ctx, args[0])
				if err != nil {
					return err
				}
				days, err := app.cardReviewService.DaysUntilDue(ctx, card.ID, today)
				if err != nil {
					return err
				}

				w := tabwriter.NewWriter(c.stdout, 0, 0, 2, ' ', 0)
				fmt.Fprintf(w, "ID:\t%s\n", card.ID)
				fmt.Fprintf(w, "Kana:\t%s\n", card.KanaOrEmpty())
				fmt.Fprintf(w, "Due:\t%s (%s)\n", domain.FormatDate(card.DueDate), describeDays(days))
				fmt.Fprintf(w, "Interval:\t%d\n", card.Interval)
				fmt.Fprintf(w, "Ease factor:\t%.4f\n", card.EaseFactor)
				fmt.Fprintf(w, "Repetition:\t%d\n", card.Repetition)
				fmt.Fprintf(w, "Correct / wrong:\t%d / %d\n", card.CorrectCount, card.WrongCount)
				return w.Flush()
			})
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "reference date (YYYY-MM-DD, default today)")
	return cmd
}

func describeDays(days int) string {
	switch {
	case days < 0:
		return fmt.Sprintf("overdue by %d days", -days)
	case days == 0:
		return "due today"
	case days == 1:
		return "due tomorrow"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}

func (c *cli) newReviewCmd() *cobra.Command {
	var (
		today   string
		limit   int
		shuffle bool
	)

	cmd := &cobra.Command{
		Use:   "review",
		Short: "Review due cards interactively, grading each from 0 to 5",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day, err := parseTodayFlag(today)
			if err != nil {
				return err
			}

			return c.withApp(cmd.Context(), false, func(ctx context.Context, app *application) error {
				session := newReviewSession(app.cardReviewService, c.stdin, c.stdout)
				if shuffle {
					session.shuffle = shuffleCards
				}
				_, err := session.Run(ctx, day, limit)
				return err
			})
		},
	}

	cmd.Flags().StringVar(&today, "today", "", "review date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum cards to review (0 for all)")
	cmd.Flags().BoolVar(&shuffle, "shuffle", false, "review due cards in random order")
	return cmd
}

func (c *cli) newKanaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "kana <id> [reading]",
		Short: "Set a card's kana reading (omit the reading to clear it)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var kana *string
			if len(args) == 2 {
				kana = &args[1]
			}

			return c.withApp(cmd.Context(), false, func(ctx context.Context, app *application) error {
				card, err := app.cardReviewService.SetKana(ctx, args[0], kana)
				if err != nil {
					return err
				}
				if card.Kana == nil {
					fmt.Fprintf(c.stdout, "Cleared kana for %s\n", card.ID)
				} else {
					fmt.Fprintf(c.stdout, "%s: %s\n", card.ID, *card.Kana)
				}
				return nil
			})
		},
	}
}

func (c *cli) newPostponeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "postpone <id> <days>",
		Short: "Push a card's due date back without changing its schedule",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("%w: %q", domain.ErrInvalidDays, args[1])
			}

			return c.withApp(cmd.Context(), false, func(ctx context.Context, app *application) error {
				card, err := app.cardReviewService.Postpone(ctx, args[0], days)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.stdout, "%s now due %s\n", card.ID, domain.FormatDate(card.DueDate))
				return nil
			})
		},
	}
}

func (c *cli) newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|reset|status|version]",
		Short:     "Manage the database schema",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{migrate.CommandUp, migrate.CommandDown, migrate.CommandReset, migrate.CommandStatus, migrate.CommandVersion},
		RunE: func(cmd *cobra.Command, args []string) error {
			command := migrate.CommandUp
			if len(args) == 1 {
				command = args[0]
			}

			return c.withApp(cmd.Context(), true, func(ctx context.Context, app *application) error {
				return migrate.Run(ctx, app.db, app.migrations, command, app.logger)
			})
		},
	}
}

func (c *cli) newServeCmd() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				c.cfg.Server.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return c.withApp(ctx, false, func(ctx context.Context, app *application) error {
				router, err := app.setupRouter()
				if err != nil {
					return err
				}

				listener, err := net.Listen("tcp", fmt.Sprintf(":%d", c.cfg.Server.Port))
				if err != nil {
					return fmt.Errorf("failed to listen: %w", err)
				}
				return app.startHTTPServer(ctx, listener, router)
			})
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides server.port)")
	return cmd
}
