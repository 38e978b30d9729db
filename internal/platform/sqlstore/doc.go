// Package sqlstore implements store.CardStore with squirrel-built SQL that
// runs unchanged on PostgreSQL and SQLite. Backend packages supply a Dialect
// with the placeholder format, row locking and error mapping.
package sqlstore
