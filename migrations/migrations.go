// Package migrations embeds the SQL migration files so the server binary
// can bring its schema up to date on startup without shipping the files
// separately.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS
