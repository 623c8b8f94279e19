// Package logger builds the application's JSON slog loggers and carries a
// request-scoped logger through context.Context, so that handlers, the
// service and the stores all log with the request's trace and user IDs.
package logger
