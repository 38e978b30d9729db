// Package testdb provides database helpers for tests.
//
// Tests get a migrated database from OpenSQLite (always available, in
// memory) or OpenPostgres (env-gated), and isolate their writes with WithTx,
// which rolls the transaction back when the test function returns:
//
//	func TestMyFeature(t *testing.T) {
//	    db := testdb.OpenPostgres(t)
//	    testdb.WithTx(t, db, func(t *testing.T, tx *sql.Tx) {
//	        cards := postgres.NewPostgresCardStore(tx, nil)
//	        // ...
//	    })
//	}
//
// OpenPostgres skips the test when no database URL is configured, except in
// CI where a missing URL fails the test instead.
package testdb
