// Package migrations embeds the schema for the on-device capture store.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
