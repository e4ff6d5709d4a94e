// Package directory is an example CORE+DATABASE+REST module (spec.md
// SPEC_FULL.md §2 C11): a minimal user-directory CRUD surface backed by the
// embedded SQLite factory, migrated via C4's Migrate phase, publishing a
// Reader client interface other modules (e.g. modules/backup) resolve
// instead of importing this package's storage details.
package directory

import (
	"context"
	"embed"
	"fmt"
	"strings"

	"github.com/hyperspotdev/hyperspot/internal/database"
	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/internal/registry"
	"github.com/hyperspotdev/hyperspot/pkg/clienthub"
	"github.com/hyperspotdev/hyperspot/pkg/hserr"
	"github.com/hyperspotdev/hyperspot/pkg/module"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

func init() {
	registry.Register(module.Descriptor{
		Name:            "directory",
		Capabilities:    module.NewSet(module.Core, module.Database, module.REST),
		New:             func() (module.Instance, error) { return &Module{}, nil },
		ClientInterface: string(ClientInterfaceID),
	})
}

// ErrNotFound is returned by Get when no user exists with the given id.
var ErrNotFound = fmt.Errorf("directory: user not found")

// ErrEmailTaken is returned by Create when email already belongs to another user.
var ErrEmailTaken = fmt.Errorf("directory: email already registered")

// Module is the directory instance.
type Module struct {
	db *database.DB
}

func (m *Module) Init(ctx context.Context, mc *hctx.ModuleContext) error {
	db, ok := mc.DB()
	if !ok {
		return fmt.Errorf("directory: %w", hserr.ErrDatabaseRequired)
	}
	m.db = db
	return clienthub.Publish[Reader](mc.ClientHub(), clienthub.GlobalScope, ClientInterfaceID, m)
}

func (m *Module) Migrate(ctx context.Context, mc *hctx.ModuleContext, db *database.DB) error {
	return database.NewMigrator().Apply(ctx, db, migrationFS, "directory", "migrations")
}

// User is the directory entry shape, shared between the storage layer, the
// REST handlers, and Reader.
type User struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Create inserts a new user and returns it with its assigned id.
func (m *Module) Create(ctx context.Context, name, email string) (User, error) {
	res, err := m.db.ExecContext(ctx, `INSERT INTO directory_users (name, email) VALUES (?, ?)`, name, email)
	if err != nil {
		// Both the modernc.org/sqlite and mattn/go-sqlite3 drivers surface a
		// unique-constraint violation through this literal SQLite message,
		// so a string check is the one detection that works regardless of
		// which driver_*.go build tag is active.
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return User{}, fmt.Errorf("%w: email=%s", ErrEmailTaken, email)
		}
		return User{}, fmt.Errorf("directory: create user: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return User{}, fmt.Errorf("directory: read new user id: %w", err)
	}
	return User{ID: id, Name: name, Email: email}, nil
}

// Get returns the user with id, or ErrNotFound.
func (m *Module) Get(ctx context.Context, id int64) (User, error) {
	var u User
	row := m.db.QueryRowContext(ctx, `SELECT id, name, email FROM directory_users WHERE id = ?`, id)
	if err := row.Scan(&u.ID, &u.Name, &u.Email); err != nil {
		return User{}, fmt.Errorf("%w: id=%d", ErrNotFound, id)
	}
	return u, nil
}

// List returns every user, ordered by id.
func (m *Module) List(ctx context.Context) ([]User, error) {
	rows, err := m.db.QueryContext(ctx, `SELECT id, name, email FROM directory_users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("directory: list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email); err != nil {
			return nil, fmt.Errorf("directory: scan user row: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
