// Package migrations embeds the catalog schema migrations applied by
// golang-migrate.
package migrations

import "embed"

// FS holds the SQL migration files.
//
//go:embed *.sql
var FS embed.FS
