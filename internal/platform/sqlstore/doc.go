// Package sqlstore implements store.ParameterStore on database/sql for
// Postgres (pgx) and SQLite (modernc.org/sqlite). Both dialects share the
// same $N-placeholder queries; schema differences live in the embedded
// per-dialect goose migrations.
package sqlstore
