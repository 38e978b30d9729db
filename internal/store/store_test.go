package store_test

import (
	"database/sql"

	"github.com/phrazzld/kanacards/internal/store"
)

// Both connections and transactions must satisfy DBTX so stores can be
// constructed over either.
var (
	_ store.DBTX = (*sql.DB)(nil)
	_ store.DBTX = (*sql.Tx)(nil)
)
