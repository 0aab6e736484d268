// Package migrations embeds the schema migrations for the run history
// database. Files are named NNN_description.up.sql and applied in order;
// each script records its own version row in schema_migrations.
package migrations

import "embed"

// FS holds the migration scripts compiled into the binary.
//
//go:embed *.sql
var FS embed.FS
