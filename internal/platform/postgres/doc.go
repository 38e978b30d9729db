// Package postgres provides the PostgreSQL backend for the card store:
// connection setup through the pgx stdlib driver, embedded goose migrations,
// the squirrel dialect and mapping of pgconn errors to store sentinels.
package postgres
