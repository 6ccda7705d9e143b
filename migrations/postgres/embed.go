// Package migrations embeds SQL migration files.
package migrations

import "embed"

// FS contains the oauth service schema migrations.
//
//go:embed oauth/*.sql
var FS embed.FS

// Dir is the directory within FS where migrations live.
const Dir = "oauth"
