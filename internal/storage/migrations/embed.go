package migrations

import "embed"

// FS embeds the SQL migrations of the SQLite storage layer.
//
//go:embed *.sql
var FS embed.FS
