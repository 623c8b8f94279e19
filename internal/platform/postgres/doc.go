// Package postgres provides the PostgreSQL implementation of the task store
// defined in the internal/store package. It handles the connection pool,
// query construction, error mapping, and the embedded goose migrations
// that create the tasks table.
package postgres
