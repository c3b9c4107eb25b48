// Package migrations contiene el esquema PostgreSQL embebido en el binario.
package migrations

import "embed"

// FS archivos NNNN_nombre.{up,down}.sql en el formato de golang-migrate.
//
//go:embed *.sql
var FS embed.FS
