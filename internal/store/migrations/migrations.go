// Package migrations embeds the goose SQL migrations for the run archive.
package migrations

import "embed"

// FS holds every migration file.
//
//go:embed *.sql
var FS embed.FS
