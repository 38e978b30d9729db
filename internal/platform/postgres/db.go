package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver
	"github.com/phrazzld/kanacards/internal/platform/migrate"
	"github.com/phrazzld/kanacards/internal/platform/sqlstore"
	"github.com/phrazzld/kanacards/internal/store"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Dialect configures the shared SQL card store for PostgreSQL.
var Dialect = sqlstore.Dialect{
	Name:        "postgres",
	Placeholder: squirrel.Dollar,
	LockSuffix:  "FOR UPDATE",
	MapError:    MapError,
}

// PoolConfig holds connection pool limits. Zero values keep the defaults.
type PoolConfig struct {
	MaxOpenConns int
	MaxIdleConns int
}

// Open establishes a connection pool through the pgx stdlib driver and
// verifies it with a ping.
func Open(ctx context.Context, url string, pool PoolConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	maxOpen, maxIdle := 10, 5
	if pool.MaxOpenConns > 0 {
		maxOpen = pool.MaxOpenConns
	}
	if pool.MaxIdleConns > 0 {
		maxIdle = pool.MaxIdleConns
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(maxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrations returns the embedded goose migrations for PostgreSQL.
func Migrations() migrate.Source {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embedded directory is fixed at compile time
		panic(err)
	}
	return migrate.Source{Dialect: goose.DialectPostgres, FS: sub}
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return migrate.Up(ctx, db, Migrations(), logger)
}

// NewPostgresCardStore creates a PostgreSQL implementation of store.CardStore.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresCardStore(db store.DBTX, logger *slog.Logger) *sqlstore.CardStore {
	return sqlstore.NewCardStore(db, Dialect, logger)
}
