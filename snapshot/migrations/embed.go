package migrations

import "embed"

// FS contains embedded SQLite migrations for session snapshots.
//
//go:embed *.sql
var FS embed.FS
