package openapi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hyperspotdev/hyperspot/pkg/hserr"
	"github.com/hyperspotdev/hyperspot/pkg/problem"
)

// ErrInvalidBuilder is returned by Register if called before a handler and
// at least one response were set — the runtime-check equivalent of the
// type-state builder's compile-time flags (spec.md §9). It wraps
// hserr.ErrInvalidBuilder.
var ErrInvalidBuilder = hserr.ErrInvalidBuilder

// OperationBuilder accumulates an operation's description, parameters, and
// request body. It carries neither a handler nor a response yet; Handler
// must be called to advance to HandlerSetBuilder.
type OperationBuilder struct {
	rec     OperationRecord
	handler http.HandlerFunc
}

// NewOperation starts building an operation for method and path (a chi-style
// path template, e.g. "/widgets/{id}").
func NewOperation(method, path string) *OperationBuilder {
	return &OperationBuilder{
		rec: OperationRecord{
			Method:    method,
			Path:      path,
			Responses: make(map[int]ResponseDoc),
		},
	}
}

func (b *OperationBuilder) OperationID(id string) *OperationBuilder {
	b.rec.OperationID = id
	return b
}

func (b *OperationBuilder) Summary(s string) *OperationBuilder {
	b.rec.Summary = s
	return b
}

func (b *OperationBuilder) Description(d string) *OperationBuilder {
	b.rec.Description = d
	return b
}

func (b *OperationBuilder) Tag(t string) *OperationBuilder {
	b.rec.Tag = t
	return b
}

func (b *OperationBuilder) PathParam(name, description string) *OperationBuilder {
	b.rec.Params = append(b.rec.Params, ParameterDoc{Name: name, In: "path", Required: true, Description: description})
	return b
}

func (b *OperationBuilder) QueryParam(name string, required bool, description string) *OperationBuilder {
	b.rec.Params = append(b.rec.Params, ParameterDoc{Name: name, In: "query", Required: required, Description: description})
	return b
}

// JSONRequest auto-registers T's schema under its canonical name and
// attaches an application/json request body referencing it.
func JSONRequest[T any](b *OperationBuilder, registry *Registry, description string) *OperationBuilder {
	name, err := EnsureSchemaFor[T](registry)
	if err != nil {
		// Surfaced at Register time via rec.requestErr would overcomplicate the
		// type-state shape; ensure_schema conflicts here are a programmer error
		// (the same Go type always produces the same schema), so it is
		// acceptable to fail fast.
		panic(fmt.Sprintf("openapi: json_request schema conflict: %v", err))
	}
	b.rec.RequestBody = &RequestBodyDoc{
		Description: description,
		Content: map[string]MediaTypeDoc{
			"application/json": {Schema: schemaRef(name)},
		},
	}
	return b
}

// Handler binds fn and advances the builder to a state where at least one
// response can be declared.
func (b *OperationBuilder) Handler(fn http.HandlerFunc) *HandlerSetBuilder {
	b.handler = fn
	return &HandlerSetBuilder{b}
}

// HandlerSetBuilder is an OperationBuilder with a handler bound. Its
// response-declaring methods advance to ReadyBuilder, the only state from
// which Register is reachable.
type HandlerSetBuilder struct {
	*OperationBuilder
}

// JSONResponse declares a schemaless response for status.
func (b *HandlerSetBuilder) JSONResponse(status int, description string) *ReadyBuilder {
	b.rec.Responses[status] = ResponseDoc{Description: description}
	return &ReadyBuilder{b.OperationBuilder}
}

// JSONResponseWithSchema auto-registers T's schema and declares a response
// for status referencing it.
func JSONResponseWithSchema[T any](b *HandlerSetBuilder, registry *Registry, status int, description string) *ReadyBuilder {
	name, err := EnsureSchemaFor[T](registry)
	if err != nil {
		panic(fmt.Sprintf("openapi: json_response_with_schema schema conflict: %v", err))
	}
	b.rec.Responses[status] = ResponseDoc{
		Description: description,
		Content: map[string]MediaTypeDoc{
			"application/json": {Schema: schemaRef(name)},
		},
	}
	return &ReadyBuilder{b.OperationBuilder}
}

// ProblemResponse declares a response for status whose body is a Problem
// object (spec.md §4.8), auto-registering the canonical Problem schema.
func (b *HandlerSetBuilder) ProblemResponse(registry *Registry, status int, description string) *ReadyBuilder {
	name, err := EnsureSchemaFor[problem.Problem](registry)
	if err != nil {
		panic(fmt.Sprintf("openapi: problem_response schema conflict: %v", err))
	}
	b.rec.Responses[status] = ResponseDoc{
		Description: description,
		Content: map[string]MediaTypeDoc{
			problem.ContentType: {Schema: schemaRef(name)},
		},
	}
	return &ReadyBuilder{b.OperationBuilder}
}

// ReadyBuilder is a builder with a handler and at least one response
// declared: the only state from which Register is callable. Additional
// responses may still be added.
type ReadyBuilder struct {
	*OperationBuilder
}

// JSONResponse declares an additional schemaless response.
func (b *ReadyBuilder) JSONResponse(status int, description string) *ReadyBuilder {
	b.rec.Responses[status] = ResponseDoc{Description: description}
	return b
}

// JSONResponseWithSchemaReady declares an additional response with an
// auto-registered schema.
func JSONResponseWithSchemaReady[T any](b *ReadyBuilder, registry *Registry, status int, description string) *ReadyBuilder {
	name, err := EnsureSchemaFor[T](registry)
	if err != nil {
		panic(fmt.Sprintf("openapi: json_response_with_schema schema conflict: %v", err))
	}
	b.rec.Responses[status] = ResponseDoc{
		Description: description,
		Content: map[string]MediaTypeDoc{
			"application/json": {Schema: schemaRef(name)},
		},
	}
	return b
}

// ProblemResponse declares an additional Problem-typed response.
func (b *ReadyBuilder) ProblemResponse(registry *Registry, status int, description string) *ReadyBuilder {
	name, err := EnsureSchemaFor[problem.Problem](registry)
	if err != nil {
		panic(fmt.Sprintf("openapi: problem_response schema conflict: %v", err))
	}
	b.rec.Responses[status] = ResponseDoc{
		Description: description,
		Content: map[string]MediaTypeDoc{
			problem.ContentType: {Schema: schemaRef(name)},
		},
	}
	return b
}

// Register atomically inserts the operation record into registry and
// appends the route to router, returning the router for chaining (spec.md
// §4.5: "inserts the operation record and appends the route to the
// router"). It fails with ErrInvalidBuilder if no handler or no response was
// ever set — unreachable via the exported type-state path above, but kept as
// a defensive runtime check the way an implementer without compile-time
// type-state would need one.
func (b *ReadyBuilder) Register(router chi.Router, registry *Registry) (chi.Router, error) {
	if b.handler == nil || len(b.rec.Responses) == 0 {
		return nil, fmt.Errorf("%w: operation %s %s missing handler or response", ErrInvalidBuilder, b.rec.Method, b.rec.Path)
	}
	if err := registry.RegisterOperation(b.rec); err != nil {
		return nil, err
	}
	router.Method(b.rec.Method, b.rec.Path, b.handler)
	return router, nil
}
