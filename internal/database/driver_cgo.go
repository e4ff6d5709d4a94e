//go:build hyperspot_cgo_sqlite

// This build tag swaps the default pure-Go modernc.org/sqlite driver (see
// driver_default.go) for the CGo-based mattn/go-sqlite3 one, for deployments
// that already carry a C toolchain and want mattn's more mature driver.
package database

import (
	_ "github.com/mattn/go-sqlite3"
)

const driverName = "sqlite3"
