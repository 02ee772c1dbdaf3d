// Package postgres provides a PostgreSQL-backed store.TaskStore.
//
// Connections go through the pgx database/sql driver. The schema lives in
// embedded goose migrations that Open applies before returning, so a fresh
// database is usable without a separate migration step.
package postgres
