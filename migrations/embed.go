// Package migrations embeds the goose migration sets, one directory per dialect.
package migrations

import "embed"

//go:embed sqlite3/*.sql postgres/*.sql
var FS embed.FS
