// Package problem implements the RFC-9457 problem-details object (spec.md
// §4.8/§6): the canonical error body every HTTP error response in HyperSpot
// renders as, with content type application/problem+json.
package problem

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"
)

// ValidationError is one itemized field-level validation failure, carried in
// a Problem's optional Errors slice.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Problem is the RFC-9457 problem-details object.
type Problem struct {
	Type     string            `json:"type,omitempty"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Code     string            `json:"code,omitempty"`
	TraceID  string            `json:"trace_id,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// Error implements the error interface so a *Problem can be returned and
// checked the way ordinary errors are.
func (p *Problem) Error() string {
	if p.Detail != "" {
		return p.Title + ": " + p.Detail
	}
	return p.Title
}

// WithInstance sets the Instance (request path) field and returns p for
// chaining.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithCode sets an application-specific Code and returns p for chaining.
func (p *Problem) WithCode(code string) *Problem {
	p.Code = code
	return p
}

// WithTraceID sets TraceID and returns p for chaining. If traceID is empty a
// fresh one is generated.
func (p *Problem) WithTraceID(traceID string) *Problem {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	p.TraceID = traceID
	return p
}

// WithErrors attaches itemized validation failures and returns p for
// chaining.
func (p *Problem) WithErrors(errs ...ValidationError) *Problem {
	p.Errors = append(p.Errors, errs...)
	return p
}

// New builds a bare Problem for an arbitrary status code.
func New(status int, title, detail string) *Problem {
	return &Problem{
		Type:   defaultTypeURI(status),
		Title:  title,
		Status: status,
		Detail: detail,
	}
}

// Canonical constructors (spec.md §4.8).

func BadRequest(detail string) *Problem {
	return New(http.StatusBadRequest, "Bad Request", detail)
}

func NotFound(detail string) *Problem {
	return New(http.StatusNotFound, "Not Found", detail)
}

func Conflict(detail string) *Problem {
	return New(http.StatusConflict, "Conflict", detail)
}

func Unprocessable(detail string) *Problem {
	return New(http.StatusUnprocessableEntity, "Unprocessable Entity", detail)
}

func Internal(detail string) *Problem {
	return New(http.StatusInternalServerError, "Internal Server Error", detail)
}

func defaultTypeURI(status int) string {
	return "about:blank#" + http.StatusText(status)
}

// ContentType is the media type every Problem response is served with.
const ContentType = "application/problem+json"

// WriteResponse renders p as application/problem+json to w, with p.Status as
// the HTTP status code (spec.md §6: "all errors rendered via Problem").
func WriteResponse(w http.ResponseWriter, p *Problem) {
	w.Header().Set("Content-Type", ContentType)
	status := p.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(p)
}
