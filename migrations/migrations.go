// Package migrations embeds the schema migrations applied by db.Migrator.
package migrations

import "embed"

// FS holds the numbered up/down migration files.
//
//go:embed *.sql
var FS embed.FS
