//go:build !hyperspot_cgo_sqlite

// The default build uses the pure-Go modernc.org/sqlite driver, so
// deployments with no C toolchain (the common case for the teacher's own
// embedded-device target) still build and run.
package database

import (
	_ "modernc.org/sqlite"
)

const driverName = "sqlite"
