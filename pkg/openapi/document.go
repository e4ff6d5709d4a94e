// Package openapi implements the OpenAPI registry and operation builder
// (spec.md §4.5): the shared schema/operation store every REST-capable
// module contributes to during the registration phase, and the type-state
// builder modules use to populate it.
//
// No struct-to-JSON-Schema reflection library, and no OpenAPI document
// library, is imported directly (non-transitively) by any repo in the
// example corpus — the go-openapi/* packages that do appear are all
// indirect dependencies of other tooling, never called from application
// code. Both the schema reflector and the document shape below are
// therefore hand-rolled plain structs in the teacher's data-model style
// (tagged fields, no behavior) rather than adopting an unused library.
package openapi

import "encoding/json"

// Document is the subset of an OpenAPI 3.x document that Snapshot produces:
// enough for a client or viewer to render info, schemas, and paths.
type Document struct {
	OpenAPI    string                `json:"openapi"`
	Info       Info                  `json:"info"`
	Paths      map[string]PathItem   `json:"paths"`
	Components Components            `json:"components"`
}

// Info is the document's top-level metadata.
type Info struct {
	Title   string `json:"title"`
	Version string `json:"version"`
}

// PathItem groups the operations declared for one path template, keyed by
// lowercase HTTP method.
type PathItem map[string]Operation

// Operation is the OpenAPI-document projection of an OperationRecord — the
// wire shape, with the bound http.HandlerFunc stripped out.
type Operation struct {
	OperationID string                `json:"operationId,omitempty"`
	Summary     string                `json:"summary,omitempty"`
	Description string                `json:"description,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
	Parameters  []ParameterDoc        `json:"parameters,omitempty"`
	RequestBody *RequestBodyDoc       `json:"requestBody,omitempty"`
	Responses   map[string]ResponseDoc `json:"responses"`
}

// ParameterDoc documents one path or query parameter.
type ParameterDoc struct {
	Name        string `json:"name"`
	In          string `json:"in"`
	Required    bool   `json:"required"`
	Description string `json:"description,omitempty"`
}

// RequestBodyDoc documents an operation's request body.
type RequestBodyDoc struct {
	Description string                  `json:"description,omitempty"`
	Content     map[string]MediaTypeDoc `json:"content"`
}

// ResponseDoc documents one status code's response.
type ResponseDoc struct {
	Description string                  `json:"description"`
	Content     map[string]MediaTypeDoc `json:"content,omitempty"`
}

// MediaTypeDoc names the schema reference for one content type.
type MediaTypeDoc struct {
	Schema SchemaRef `json:"schema"`
}

// SchemaRef is a `$ref` pointer into components.schemas.
type SchemaRef struct {
	Ref string `json:"$ref"`
}

func schemaRef(name string) SchemaRef {
	return SchemaRef{Ref: "#/components/schemas/" + name}
}

// Components holds the deduplicated schema table.
type Components struct {
	Schemas map[string]json.RawMessage `json:"schemas"`
}
