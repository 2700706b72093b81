// Package migrations carries the schema migration SQL for the
// deployment history database.
package migrations

import "embed"

// FS holds the numbered *.sql migration files, applied in order at open.
//
//go:embed *.sql
var FS embed.FS
