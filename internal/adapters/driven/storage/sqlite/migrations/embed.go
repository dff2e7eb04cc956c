// Package migrations embeds the versioned schema for the local store.
package migrations

import "embed"

// FS holds the NNN_name.up.sql / NNN_name.down.sql pairs, applied in order.
//
//go:embed *.sql
var FS embed.FS
