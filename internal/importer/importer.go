// Package importer loads card identifiers from delimited text files and
// creates scheduling records for the ones not yet stored.
package importer

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/kanacards/internal/domain/srs"
	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/phrazzld/kanacards/internal/store"
)

// Columns is the expected column order of an import file. Only the first
// column is required; content columns are accepted and ignored.
var Columns = []string{"id", "word_phrase", "translation"}

// ErrInvalidDelimiter is returned for a delimiter encoding/csv cannot use.
var ErrInvalidDelimiter = errors.New("invalid import delimiter")

// Result counts what happened to each row of an import.
type Result struct {
	BatchID  string `json:"batch_id"`
	Added    int    `json:"added"`
	Existing int    `json:"existing"`
	Skipped  int    `json:"skipped"`
}

// Options controls how the input is parsed.
type Options struct {
	// Delimiter separates fields. Zero means a comma.
	Delimiter rune

	// HasHeader skips the first record.
	HasHeader bool
}

// Importer creates cards for new identifiers.
type Importer struct {
	db        *sql.DB
	cards     store.CardStore
	scheduler srs.Service
	logger    *slog.Logger
}

// New creates an Importer. When db is non-nil every import runs in a single
// transaction, so a failed import leaves no partial rows behind.
func New(db *sql.DB, cards store.CardStore, scheduler srs.Service, logger *slog.Logger) *Importer {
	if cards == nil {
		panic("cards cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Importer{
		db:        db,
		cards:     cards,
		scheduler: scheduler,
		logger:    logger.With(slog.String("component", "importer")),
	}
}

// Import reads records from r and stores a fresh card for every non-blank
// identifier not already present. Existing cards are never overwritten.
// New cards are due on today; a zero today means the scheduler's clock.
func (i *Importer) Import(ctx context.Context, r io.Reader, opts Options, today time.Time) (Result, error) {
	result := Result{BatchID: uuid.New().String()}
	log := logger.FromContextOrDefault(ctx, i.logger).With(slog.String("batch_id", result.BatchID))

	reader, err := newReader(r, opts)
	if err != nil {
		return result, err
	}

	if today.IsZero() {
		today = i.scheduler.Today()
	}

	run := func(ctx context.Context, cards store.CardStore) error {
		return i.importRecords(ctx, log, reader, opts, cards, today, &result)
	}

	if i.db == nil {
		err = run(ctx, i.cards)
	} else {
		err = store.RunInTransaction(ctx, i.db, func(ctx context.Context, tx *sql.Tx) error {
			return run(ctx, i.cards.WithTx(tx))
		})
	}
	if err != nil {
		log.Error("import failed", slog.String("error", err.Error()))
		return Result{BatchID: result.BatchID}, err
	}

	log.Info("import completed",
		slog.Int("added", result.Added),
		slog.Int("existing", result.Existing),
		slog.Int("skipped", result.Skipped))
	return result, nil
}

func (i *Importer) importRecords(
	ctx context.Context,
	log *slog.Logger,
	reader *csv.Reader,
	opts Options,
	cards store.CardStore,
	today time.Time,
	result *Result,
) error {
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read import record: %w", err)
		}

		if first {
			first = false
			if opts.HasHeader {
				continue
			}
		}

		id := ""
		if len(record) > 0 {
			id = strings.TrimSpace(strings.TrimPrefix(record[0], "\ufeff"))
		}
		if id == "" {
			result.Skipped++
			continue
		}

		card, err := i.scheduler.Initialize(id, today)
		if err != nil {
			return fmt.Errorf("failed to initialize card %q: %w", id, err)
		}

		added, err := cards.CreateIfAbsent(ctx, card)
		if err != nil {
			return fmt.Errorf("failed to store card %q: %w", id, err)
		}

		if added {
			result.Added++
			log.Debug("card added", slog.String("card_id", id))
		} else {
			result.Existing++
		}
	}
}

func newReader(r io.Reader, opts Options) (*csv.Reader, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.ReuseRecord = true

	if opts.Delimiter != 0 {
		if opts.Delimiter == '"' || opts.Delimiter == '\r' || opts.Delimiter == '\n' {
			return nil, fmt.Errorf("%w: %q", ErrInvalidDelimiter, opts.Delimiter)
		}
		reader.Comma = opts.Delimiter
	}

	return reader, nil
}

// ParseDelimiter converts a configured delimiter string to a rune.
// An empty string means a comma; "\t" and "tab" mean a tab.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return ',', nil
	case `\t`, "tab":
		return '\t', nil
	}

	runes := []rune(s)
	if len(runes) != 1 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDelimiter, s)
	}
	return runes[0], nil
}
