package migrations

import "embed"

// SQLite holds the sqlite schema files.
//
//go:embed sqlite/*.sql
var SQLite embed.FS

// Postgres holds the postgres schema files.
//
//go:embed postgres/*.sql
var Postgres embed.FS
