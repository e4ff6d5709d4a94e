// Package database wraps the single shared SQLite handle the external
// database collaborator provides to DATABASE-capable modules (spec.md §4.12
// expansion). It generalizes the teacher's internal/database/db.go — which
// opened one *sql.DB per named database file with a fixed profile/PRAGMA
// table — into one *DB per process, its connection pool and PRAGMAs driven
// by internal/config.DatabaseConfig instead of a hardcoded profile.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hyperspotdev/hyperspot/internal/config"
	"github.com/hyperspotdev/hyperspot/pkg/hserr"
)

// ErrDatabaseRequired is returned by code paths that need a configured
// database handle but were not given one. It wraps hserr.ErrDatabaseRequired.
var ErrDatabaseRequired = hserr.ErrDatabaseRequired

// DB wraps the process-wide database/sql handle with the connection-pool
// tuning and PRAGMA set the teacher applied per-profile, here applied
// uniformly (spec.md's single shared database has no per-database profile
// concept).
type DB struct {
	conn *sql.DB
	path string
}

// New opens the shared database described by cfg, creating its parent
// directory if cfg.URL names a file path (file: URIs used for in-memory or
// already-open handles are passed through unchanged, the same special case
// the teacher's New carves out for "file::memory:?cache=shared").
func New(cfg config.DatabaseConfig) (*DB, error) {
	path := cfg.URL
	if !strings.HasPrefix(path, "file:") {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, fmt.Errorf("database: resolve path to absolute: %w", err)
		}
		if err := os.MkdirAll(filepath.Dir(absPath), 0o755); err != nil {
			return nil, fmt.Errorf("database: create directory: %w", err)
		}
		path = absPath
	}

	connStr := buildConnectionString(path, cfg.BusyTimeoutMS)
	conn, err := sql.Open(driverName, connStr)
	if err != nil {
		return nil, fmt.Errorf("database: open %s: %w", path, err)
	}

	configureConnectionPool(conn, cfg.MaxConns)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("database: ping %s: %w", path, err)
	}

	return &DB{conn: conn, path: path}, nil
}

func buildConnectionString(path string, busyTimeoutMS int) string {
	if busyTimeoutMS <= 0 {
		busyTimeoutMS = 5000
	}
	connStr := path + "?_pragma=journal_mode(WAL)"
	connStr += "&_pragma=synchronous(NORMAL)"
	connStr += "&_pragma=foreign_keys(1)"
	connStr += "&_pragma=wal_autocheckpoint(1000)"
	connStr += "&_pragma=cache_size(-64000)"
	connStr += fmt.Sprintf("&_pragma=busy_timeout(%d)", busyTimeoutMS)
	return connStr
}

func configureConnectionPool(conn *sql.DB, maxConns int) {
	if maxConns <= 0 {
		maxConns = 10
	}
	conn.SetMaxOpenConns(maxConns)
	conn.SetMaxIdleConns(maxConns / 2)
	conn.SetConnMaxLifetime(1 * time.Hour)
	conn.SetConnMaxIdleTime(10 * time.Minute)
}

// Close closes the underlying connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying *sql.DB for packages that need the raw
// database/sql surface directly.
func (db *DB) Conn() *sql.DB {
	return db.conn
}

// Path returns the resolved database path.
func (db *DB) Path() string {
	return db.path
}

// Begin starts a transaction.
func (db *DB) Begin() (*sql.Tx, error) {
	return db.conn.Begin()
}

// BeginTx starts a transaction bound to ctx with opts.
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return db.conn.BeginTx(ctx, opts)
}

// WithTransaction runs fn inside a transaction, committing on success and
// rolling back on failure. A panic in fn rolls the transaction back and is
// then re-panicked unchanged.
func WithTransaction(db *sql.DB, fn func(*sql.Tx) error) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("database: begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				err = fmt.Errorf("database: transaction failed: %w (rollback also failed: %v)", err, rbErr)
			}
			return
		}
		err = tx.Commit()
	}()

	err = fn(tx)
	return err
}

func (db *DB) Exec(query string, args ...any) (sql.Result, error) {
	return db.conn.Exec(query, args...)
}

func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.conn.ExecContext(ctx, query, args...)
}

func (db *DB) Query(query string, args ...any) (*sql.Rows, error) {
	return db.conn.Query(query, args...)
}

func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.conn.QueryContext(ctx, query, args...)
}

func (db *DB) QueryRow(query string, args ...any) *sql.Row {
	return db.conn.QueryRow(query, args...)
}

func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.conn.QueryRowContext(ctx, query, args...)
}

// HealthCheck pings the connection and runs a full integrity check.
func (db *DB) HealthCheck(ctx context.Context) error {
	if err := db.conn.PingContext(ctx); err != nil {
		return fmt.Errorf("database: ping failed: %w", err)
	}
	var result string
	if err := db.conn.QueryRowContext(ctx, "PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("database: integrity check query failed: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("database: integrity check failed: %s", result)
	}
	return nil
}

// QuickCheck just pings the connection, for frequent low-cost checks.
func (db *DB) QuickCheck(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// Stats reports basic file and page-level statistics for monitoring.
type Stats struct {
	SizeBytes     int64
	WALSizeBytes  int64
	PageCount     int64
	PageSize      int64
	FreelistCount int64
}

// GetStats collects Stats from the filesystem and PRAGMA queries.
func (db *DB) GetStats() (*Stats, error) {
	stats := &Stats{}

	if fi, err := os.Stat(db.path); err == nil {
		stats.SizeBytes = fi.Size()
	}
	if fi, err := os.Stat(db.path + "-wal"); err == nil {
		stats.WALSizeBytes = fi.Size()
	}
	if err := db.conn.QueryRow("PRAGMA page_count").Scan(&stats.PageCount); err != nil {
		return nil, fmt.Errorf("database: page_count: %w", err)
	}
	if err := db.conn.QueryRow("PRAGMA page_size").Scan(&stats.PageSize); err != nil {
		return nil, fmt.Errorf("database: page_size: %w", err)
	}
	if err := db.conn.QueryRow("PRAGMA freelist_count").Scan(&stats.FreelistCount); err != nil {
		return nil, fmt.Errorf("database: freelist_count: %w", err)
	}
	return stats, nil
}
