// Package migrations embeds SQL migration files for database schema
// management. Each supported driver has its own migration directory.
package migrations

import "embed"

// FS holds the embedded SQL migration files, one subdirectory per driver.
//
//go:embed sqlite/*.sql postgres/*.sql
var FS embed.FS
