// Package sqlite provides the SQLite backend for the card store, the default
// for single-learner use. The database is a single file opened through
// mattn/go-sqlite3.
package sqlite
