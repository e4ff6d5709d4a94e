package database

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"

	"github.com/hyperspotdev/hyperspot/pkg/hserr"
)

// ErrMigrationFailed is returned when a module's migration cannot be applied
// or a previously-applied migration's checksum no longer matches its file.
// It wraps hserr.ErrMigrationFailed.
var ErrMigrationFailed = hserr.ErrMigrationFailed

const trackingTable = "hyperspot_schema_migrations"

// Migrator applies a module's ordered, checksummed .sql migration files
// (spec.md §4.12 expansion), replacing the teacher's one-schema-file-per-
// database-name scheme (internal/database/db.go's Migrate, keyed by a fixed
// map of database names) with per-module directories of numbered files
// tracked individually, the way a multi-tenant migration runner must since
// many modules share one database.
type Migrator struct{}

// NewMigrator returns a Migrator. It carries no state; kept as a type for
// symmetry with the rest of the runtime's collaborators and in case future
// migration policy (e.g. dry-run mode) needs configuration.
func NewMigrator() *Migrator {
	return &Migrator{}
}

// Apply reads *.sql files from dir within migrationFS in lexical filename
// order and applies any not yet recorded in hyperspot_schema_migrations for
// moduleName, each inside its own transaction. A file whose checksum no
// longer matches a previously recorded application fails with
// ErrMigrationFailed rather than silently re-applying or skipping it.
func (m *Migrator) Apply(ctx context.Context, db *DB, migrationFS fs.FS, moduleName, dir string) error {
	if err := m.ensureTrackingTable(ctx, db); err != nil {
		return err
	}

	entries, err := fs.ReadDir(migrationFS, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // module declares no migrations
		}
		return fmt.Errorf("%w: reading migrations dir %q for %s: %v", ErrMigrationFailed, dir, moduleName, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		files = append(files, e.Name())
	}
	sort.Strings(files)

	for _, filename := range files {
		if err := m.applyOne(ctx, db, migrationFS, moduleName, dir, filename); err != nil {
			return err
		}
	}
	return nil
}

func (m *Migrator) applyOne(ctx context.Context, db *DB, migrationFS fs.FS, moduleName, dir, filename string) error {
	content, err := fs.ReadFile(migrationFS, path.Join(dir, filename))
	if err != nil {
		return fmt.Errorf("%w: reading %s/%s: %v", ErrMigrationFailed, moduleName, filename, err)
	}
	checksum := checksumOf(content)

	var existing string
	err = db.conn.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT checksum FROM %s WHERE module = ? AND filename = ?`, trackingTable),
		moduleName, filename,
	).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return fmt.Errorf("%w: %s/%s was modified after being applied (checksum mismatch)", ErrMigrationFailed, moduleName, filename)
		}
		return nil // already applied, unchanged
	case errors.Is(err, sql.ErrNoRows):
		// not yet applied, fall through
	default:
		return fmt.Errorf("%w: checking applied state of %s/%s: %v", ErrMigrationFailed, moduleName, filename, err)
	}

	return m.execAndRecord(ctx, db, moduleName, filename, checksum, string(content))
}

func (m *Migrator) execAndRecord(ctx context.Context, db *DB, moduleName, filename, checksum, content string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin transaction for %s/%s: %v", ErrMigrationFailed, moduleName, filename, err)
	}

	if _, err := tx.ExecContext(ctx, content); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: executing %s/%s: %v", ErrMigrationFailed, moduleName, filename, err)
	}

	_, err = tx.ExecContext(ctx,
		fmt.Sprintf(`INSERT INTO %s (module, filename, checksum, applied_at) VALUES (?, ?, ?, CURRENT_TIMESTAMP)`, trackingTable),
		moduleName, filename, checksum,
	)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%w: recording %s/%s: %v", ErrMigrationFailed, moduleName, filename, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: committing %s/%s: %v", ErrMigrationFailed, moduleName, filename, err)
	}
	return nil
}

func (m *Migrator) ensureTrackingTable(ctx context.Context, db *DB) error {
	_, err := db.conn.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			module     TEXT NOT NULL,
			filename   TEXT NOT NULL,
			checksum   TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL,
			PRIMARY KEY (module, filename)
		)`, trackingTable))
	if err != nil {
		return fmt.Errorf("%w: creating tracking table: %v", ErrMigrationFailed, err)
	}
	return nil
}

func checksumOf(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
