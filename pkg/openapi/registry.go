package openapi

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/hyperspotdev/hyperspot/pkg/hserr"
)

// ErrSchemaConflict is returned by EnsureSchema when name is already
// registered with a structurally different body. It wraps
// hserr.ErrSchemaConflict.
var ErrSchemaConflict = hserr.ErrSchemaConflict

// ErrDuplicateOperation is returned by RegisterOperation when (method, path)
// was already registered. It wraps hserr.ErrDuplicateOperation.
var ErrDuplicateOperation = hserr.ErrDuplicateOperation

// OperationRecord is the in-memory description of one registered HTTP route
// and its OpenAPI contribution (spec.md §3 "Operation record").
type OperationRecord struct {
	Method      string
	Path        string
	OperationID string
	Summary     string
	Description string
	Tag         string
	Params      []ParameterDoc
	RequestBody *RequestBodyDoc
	Responses   map[int]ResponseDoc
}

type opKey struct {
	method string
	path   string
}

// Registry is the process-wide OpenAPI schema/operation store, owned by the
// ingress module and populated during the REST registration phase (spec.md
// §4.4 phase 3). A coarse RWMutex is used throughout: registration only
// happens during the single-threaded REST phase, and Snapshot's read load is
// low-volume diagnostic/tooling traffic, so the "measured contention is low"
// allowance in spec.md §9 applies — no sharding is warranted.
type Registry struct {
	mu         sync.RWMutex
	info       Info
	schemas    map[string]map[string]any
	schemaJSON map[string]json.RawMessage
	operations map[opKey]OperationRecord
	order      []opKey
}

// NewRegistry returns an empty Registry describing the document's info
// block.
func NewRegistry(title, version string) *Registry {
	return &Registry{
		info:       Info{Title: title, Version: version},
		schemas:    make(map[string]map[string]any),
		schemaJSON: make(map[string]json.RawMessage),
		operations: make(map[opKey]OperationRecord),
	}
}

// EnsureSchema inserts schema under name if absent; if present and
// structurally equal it is a no-op; if present and unequal it fails with
// ErrSchemaConflict.
func (r *Registry) EnsureSchema(name string, schema map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.schemas[name]; ok {
		if reflect.DeepEqual(existing, schema) {
			return nil
		}
		return fmt.Errorf("%w: schema %q already registered with a different definition", ErrSchemaConflict, name)
	}

	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("openapi: marshal schema %q: %w", name, err)
	}
	r.schemas[name] = schema
	r.schemaJSON[name] = raw
	return nil
}

// EnsureSchemaFor derives T's schema via SchemaOf and registers it under
// CanonicalName[T](), returning the name it was registered under.
func EnsureSchemaFor[T any](r *Registry) (string, error) {
	name := CanonicalName[T]()
	if err := r.EnsureSchema(name, SchemaOf[T]()); err != nil {
		return "", err
	}
	return name, nil
}

// RegisterOperation inserts rec, failing with ErrDuplicateOperation if
// (rec.Method, rec.Path) is already present.
func (r *Registry) RegisterOperation(rec OperationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	k := opKey{method: rec.Method, path: rec.Path}
	if _, ok := r.operations[k]; ok {
		return fmt.Errorf("%w: %s %s", ErrDuplicateOperation, rec.Method, rec.Path)
	}
	r.operations[k] = rec
	r.order = append(r.order, k)
	return nil
}

// Snapshot produces an OpenAPI 3.x document from the registry's current
// contents. It takes only a read lock and never blocks concurrent
// registrations from a different goroutine for longer than the copy takes.
func (r *Registry) Snapshot() Document {
	r.mu.RLock()
	defer r.mu.RUnlock()

	schemas := make(map[string]json.RawMessage, len(r.schemaJSON))
	for name, raw := range r.schemaJSON {
		schemas[name] = raw
	}

	paths := make(map[string]PathItem)
	keys := append([]opKey(nil), r.order...)
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].path != keys[j].path {
			return keys[i].path < keys[j].path
		}
		return keys[i].method < keys[j].method
	})
	for _, k := range keys {
		rec := r.operations[k]
		item, ok := paths[k.path]
		if !ok {
			item = PathItem{}
			paths[k.path] = item
		}
		item[lowerMethod(k.method)] = toDocOperation(rec)
	}

	return Document{
		OpenAPI:    "3.0.3",
		Info:       r.info,
		Paths:      paths,
		Components: Components{Schemas: schemas},
	}
}

func toDocOperation(rec OperationRecord) Operation {
	op := Operation{
		OperationID: rec.OperationID,
		Summary:     rec.Summary,
		Description: rec.Description,
		Responses:   make(map[string]ResponseDoc, len(rec.Responses)),
	}
	if rec.Tag != "" {
		op.Tags = []string{rec.Tag}
	}
	for _, p := range rec.Params {
		op.Parameters = append(op.Parameters, p)
	}
	if rec.RequestBody != nil {
		op.RequestBody = rec.RequestBody
	}
	for status, resp := range rec.Responses {
		op.Responses[statusKey(status)] = resp
	}
	return op
}

func statusKey(status int) string {
	return fmt.Sprintf("%d", status)
}

func lowerMethod(method string) string {
	b := []byte(method)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}
