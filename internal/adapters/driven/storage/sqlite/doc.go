// Package sqlite provides a SQLite-backed deployment history store.
//
// The database lives under the shipforge data directory and is opened in
// WAL mode. Schema changes ship as embedded SQL migrations applied on
// startup; each migration records its own version in schema_migrations.
package sqlite
