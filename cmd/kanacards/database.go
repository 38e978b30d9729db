package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/kanacards/internal/config"
	"github.com/phrazzld/kanacards/internal/platform/migrate"
	"github.com/phrazzld/kanacards/internal/platform/postgres"
	"github.com/phrazzld/kanacards/internal/platform/sqlite"
	"github.com/phrazzld/kanacards/internal/platform/sqlstore"
	"github.com/phrazzld/kanacards/internal/redact"
)

// database bundles an open connection with the driver-specific pieces built
// on top of it.
type database struct {
	db         *sql.DB
	cards      *sqlstore.CardStore
	migrations migrate.Source
}

// setupAppDatabase opens the configured database and builds its card store.
// Migrations are not applied here.
func setupAppDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*database, error) {
	log := logger.With(
		slog.String("driver", cfg.Driver),
		slog.String("url", redact.DatabaseURL(cfg.URL)))

	var (
		db  *sql.DB
		err error
		out database
	)

	switch cfg.Driver {
	case "postgres":
		db, err = postgres.Open(ctx, cfg.URL, postgres.PoolConfig{
			MaxOpenConns: cfg.MaxOpenConns,
			MaxIdleConns: cfg.MaxIdleConns,
		})
		if err == nil {
			out.cards = postgres.NewPostgresCardStore(db, logger)
			out.migrations = postgres.Migrations()
		}
	case "sqlite3":
		db, err = sqlite.Open(ctx, cfg.URL)
		if err == nil {
			out.cards = sqlite.NewSQLiteCardStore(db, logger)
			out.migrations = sqlite.Migrations()
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		log.Error("database connection failed", slog.String("error", redact.Error(err)))
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}

	out.db = db
	log.Info("database connection established")
	return &out, nil
}
