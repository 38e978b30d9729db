package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanacards/internal/config"
	"github.com/phrazzld/kanacards/internal/domain/srs"
	"github.com/phrazzld/kanacards/internal/exporter"
	"github.com/phrazzld/kanacards/internal/importer"
	"github.com/phrazzld/kanacards/internal/platform/migrate"
	"github.com/phrazzld/kanacards/internal/service/card_review"
	"github.com/phrazzld/kanacards/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config

	logger     *slog.Logger
	db         *sql.DB
	migrations migrate.Source

	cardStore store.CardStore

	srsService        srs.Service
	cardReviewService card_review.CardReviewService
	importer          *importer.Importer
	exporter          *exporter.Exporter
}

// newApplication connects to the configured database and wires the services
// on top of it. Pending migrations are applied first unless skipMigrations
// is set.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	skipMigrations bool,
) (*application, error) {
	database, err := setupAppDatabase(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	app := &application{
		config:     cfg,
		logger:     logger,
		db:         database.db,
		migrations: database.migrations,
		cardStore:  database.cards,
	}

	if !skipMigrations {
		if err := migrate.Up(ctx, app.db, app.migrations, logger); err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	app.srsService = srs.NewService(srs.WithParams(srsParams(cfg.SRS)))

	app.cardReviewService = card_review.NewCardReviewService(
		card_review.NewCardRepositoryAdapter(app.cardStore, app.db),
		app.srsService,
		logger,
	)
	app.importer = importer.New(app.db, app.cardStore, app.srsService, logger)
	app.exporter = exporter.New(app.cardStore, logger)

	logger.Debug("application initialized")
	return app, nil
}

// importOptions returns the configured import defaults.
func (app *application) importOptions() (importer.Options, error) {
	delim, err := importer.ParseDelimiter(app.config.Import.Delimiter)
	if err != nil {
		return importer.Options{}, err
	}
	return importer.Options{Delimiter: delim, HasHeader: app.config.Import.HasHeader}, nil
}

// cleanup releases the database connection.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}
	app.logger.Debug("application shutdown completed")
}

func srsParams(cfg config.SRSConfig) *srs.Params {
	return srs.NewParams(srs.ParamsConfig{
		DefaultEaseFactor: cfg.DefaultEaseFactor,
		MinEaseFactor:     cfg.MinEaseFactor,
		FirstInterval:     cfg.FirstInterval,
		SecondInterval:    cfg.SecondInterval,
		LapseInterval:     cfg.LapseInterval,
	})
}
