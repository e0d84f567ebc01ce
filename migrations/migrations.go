// Package migrations embeds the goose SQL migrations so they can be applied
// at startup and inside the test harness without a migrations directory on
// disk.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
