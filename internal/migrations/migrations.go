// Package migrations holds the embedded SQL schema applied via goose at
// service startup.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
