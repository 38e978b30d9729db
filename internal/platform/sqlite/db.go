package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3" // registers the "sqlite3" driver
	"github.com/phrazzld/kanacards/internal/platform/migrate"
	"github.com/phrazzld/kanacards/internal/platform/sqlstore"
	"github.com/phrazzld/kanacards/internal/store"
	"github.com/pressly/goose/v3"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Dialect configures the shared SQL card store for SQLite.
// SQLite has no row locks; Open starts every transaction with BEGIN IMMEDIATE
// so concurrent writers queue on the database lock instead.
var Dialect = sqlstore.Dialect{
	Name:        "sqlite3",
	Placeholder: squirrel.Question,
	MapError:    MapError,
}

// Open opens (creating if necessary) the database file at path.
// The parent directory is created when missing. MemoryPath gives a fresh
// in-memory database limited to a single connection.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	inMemory := path == MemoryPath
	if !inMemory {
		if dir := filepath.Dir(path); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("cannot create data directory: %w", err)
			}
		}
	}

	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Each connection to :memory: is its own database.
	if inMemory {
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func dsn(path string) string {
	params := "_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	if path == MemoryPath {
		return "file::memory:?" + params
	}
	if strings.Contains(path, "?") {
		return path + "&" + params
	}
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}
	return path + "?" + params
}

// Migrations returns the embedded goose migrations for SQLite.
func Migrations() migrate.Source {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		// ALLOW-PANIC: the embedded directory is fixed at compile time
		panic(err)
	}
	return migrate.Source{Dialect: goose.DialectSQLite3, FS: sub}
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	return migrate.Up(ctx, db, Migrations(), logger)
}

// NewSQLiteCardStore creates a SQLite implementation of store.CardStore.
// If logger is nil, a default logger will be used.
func NewSQLiteCardStore(db store.DBTX, logger *slog.Logger) *sqlstore.CardStore {
	return sqlstore.NewCardStore(db, Dialect, logger)
}
