// Package migrations embebe los scripts SQL para golang-migrate.
package migrations

import "embed"

// FS contiene los archivos NNNN_nombre.{up,down}.sql.
//
//go:embed *.sql
var FS embed.FS
