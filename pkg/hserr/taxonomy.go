// Package hserr defines the sentinel error kinds of spec.md §7 as plain
// wrapped errors, the way the teacher wraps everything with fmt.Errorf and
// %w instead of reaching for a third-party error-chain library — there is
// none in the example corpus, so this stays standard library throughout.
package hserr

import "errors"

// Sentinel kinds. Use errors.Is to test for one of these; concrete errors
// returned by the runtime wrap the matching sentinel with %w and additional
// context.
var (
	// ErrDescriptorConflict: duplicate descriptor name, unknown dependency,
	// or a dependency cycle.
	ErrDescriptorConflict = errors.New("descriptor conflict")
	// ErrInvalidConfig: module_config[T] deserialization failed.
	ErrInvalidConfig = errors.New("invalid module configuration")
	// ErrDatabaseRequired: a DATABASE-capable module's init observed no
	// database handle.
	ErrDatabaseRequired = errors.New("database required but not configured")
	// ErrMigrationFailed: a module's migrate call failed.
	ErrMigrationFailed = errors.New("migration failed")
	// ErrDuplicateOperation: the same (method, path) was registered twice.
	ErrDuplicateOperation = errors.New("duplicate operation")
	// ErrSchemaConflict: ensure_schema saw an unequal redefinition.
	ErrSchemaConflict = errors.New("schema conflict")
	// ErrAlreadyPublished: client publish for an existing key.
	ErrAlreadyPublished = errors.New("already published")
	// ErrNotPublished: resolve for a missing key.
	ErrNotPublished = errors.New("not published")
	// ErrInvalidState: lifecycle operation attempted from an illegal state.
	ErrInvalidState = errors.New("invalid lifecycle state")
	// ErrBindFailure: the ingress could not bind its configured address.
	ErrBindFailure = errors.New("bind failure")
	// ErrInvalidBuilder: an OpenAPI operation builder was registered without
	// a handler or without at least one response (spec.md §9 runtime-check
	// equivalent of the type-state builder's compile-time flags).
	ErrInvalidBuilder = errors.New("invalid operation builder")
)
