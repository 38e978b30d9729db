// Package logger configures log/slog for kanacards and carries
// request-scoped loggers through context.Context.
package logger
