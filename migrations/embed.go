// Package migrations embeds the versioned SQL schema so the binaries and the
// integration tests apply the same files.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file in this directory
//
//go:embed *.sql
var FS embed.FS
