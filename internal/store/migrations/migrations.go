// Package migrations embeds the corpus schema migrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
