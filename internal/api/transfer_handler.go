package api

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/phrazzld/kanacards/internal/api/shared"
	"github.com/phrazzld/kanacards/internal/importer"
	"github.com/phrazzld/kanacards/internal/platform/logger"
)

// MaxImportBytes caps the size of an uploaded import file.
const MaxImportBytes = 32 << 20

// CardImporter loads card IDs from delimited text.
type CardImporter interface {
	Import(ctx context.Context, r io.Reader, opts importer.Options, today time.Time) (importer.Result, error)
}

// CardExporter writes every stored card as CSV.
type CardExporter interface {
	Export(ctx context.Context, w io.Writer) (int, error)
}

// TransferHandler serves bulk import and export.
type TransferHandler struct {
	importer    CardImporter
	exporter    CardExporter
	defaultOpts importer.Options
	logger      *slog.Logger
}

// NewTransferHandler creates a TransferHandler. defaults applies when the
// request does not override the delimiter or header flag.
func NewTransferHandler(
	imp CardImporter,
	exp CardExporter,
	defaults importer.Options,
	logger *slog.Logger,
) *TransferHandler {
	if imp == nil || exp == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("importer and exporter cannot be nil for TransferHandler")
	}
	if logger == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for TransferHandler")
	}

	return &TransferHandler{
		importer:    imp,
		exporter:    exp,
		defaultOpts: defaults,
		logger:      logger.With(slog.String("component", "transfer_handler")),
	}
}

// Import handles POST /api/import. The body is the raw delimited text;
// ?delimiter= and ?header=true|false override the configured defaults and
// ?today= sets the due date of new cards.
func (h *TransferHandler) Import(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	opts, err := h.importOptions(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	today, err := parseTodayQuery(r)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}

	body := http.MaxBytesReader(w, r.Body, MaxImportBytes)
	defer func() { _ = body.Close() }()

	result, err := h.importer.Import(r.Context(), body, opts, today)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to import cards")
		return
	}

	log.Info("import completed",
		slog.String("batch_id", result.BatchID),
		slog.Int("added", result.Added),
		slog.Int("existing", result.Existing),
		slog.Int("skipped", result.Skipped))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// Export handles GET /api/export.
func (h *TransferHandler) Export(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	// Buffer so a store failure can still produce a clean error response
	var buf bytes.Buffer
	n, err := h.exporter.Export(r.Context(), &buf)
	if err != nil {
		HandleAPIError(w, r, err, "Failed to export cards")
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="kanacards.csv"`)
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		log.Error("failed to write export", slog.String("error", err.Error()))
		return
	}

	log.Info("export completed", slog.Int("cards", n))
}

func (h *TransferHandler) importOptions(r *http.Request) (importer.Options, error) {
	opts := h.defaultOpts
	query := r.URL.Query()

	if query.Has("delimiter") {
		delim, err := importer.ParseDelimiter(query.Get("delimiter"))
		if err != nil {
			return opts, err
		}
		opts.Delimiter = delim
	}

	if query.Has("header") {
		header, err := strconv.ParseBool(query.Get("header"))
		if err != nil {
			return opts, ErrBadRequest
		}
		opts.HasHeader = header
	}

	return opts, nil
}
