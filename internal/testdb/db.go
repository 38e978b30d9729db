package testdb

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/phrazzld/kanacards/internal/platform/logger"
	"github.com/phrazzld/kanacards/internal/platform/postgres"
	"github.com/phrazzld/kanacards/internal/platform/sqlite"
	"github.com/phrazzld/kanacards/internal/redact"
	"github.com/stretchr/testify/require"
)

// OpenSQLite returns a migrated in-memory SQLite database closed at test end.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	ctx := context.Background()
	log, _ := logger.GetTestLogger(t)

	db, err := sqlite.Open(ctx, sqlite.MemoryPath)
	require.NoError(t, err, "failed to open in-memory sqlite")
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, sqlite.Migrate(ctx, db, log), "failed to migrate sqlite")
	return db
}

// OpenPostgres returns a migrated PostgreSQL database closed at test end.
// Without a configured URL the test is skipped, or failed when running in CI.
func OpenPostgres(t *testing.T) *sql.DB {
	t.Helper()

	url := DatabaseURL()
	if url == "" {
		if IsCI() {
			t.Fatalf("%s must be set in CI", EnvTestDatabaseURL)
		}
		t.Skipf("%s not set, skipping PostgreSQL integration test", EnvTestDatabaseURL)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	log, _ := logger.GetTestLogger(t)

	db, err := postgres.Open(ctx, url, postgres.PoolConfig{})
	require.NoError(t, err, "failed to connect to %s", redact.DatabaseURL(url))
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, postgres.Migrate(ctx, db, log), "failed to migrate postgres")
	return db
}

// WithTx runs fn inside a transaction that is rolled back when fn returns,
// including when fn fails the test or panics.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.BeginTx(context.Background(), nil)
	require.NoError(t, err, "failed to begin test transaction")

	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Logf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}
