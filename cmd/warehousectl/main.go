// Command warehousectl tareas de operación del API: migraciones del esquema PostgreSQL
// y emisión de tokens de desarrollo.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
