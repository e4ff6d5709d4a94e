package directory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/hyperspotdev/hyperspot/internal/hctx"
	"github.com/hyperspotdev/hyperspot/pkg/openapi"
	"github.com/hyperspotdev/hyperspot/pkg/problem"
)

type createUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// RegisterREST exposes GET /directory/users, POST /directory/users, and
// GET /directory/users/{id} (spec.md SPEC_FULL.md §6 expansion).
func (m *Module) RegisterREST(mc *hctx.ModuleContext, router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	router, err := m.registerList(router, reg)
	if err != nil {
		return nil, err
	}
	router, err = m.registerCreate(router, reg)
	if err != nil {
		return nil, err
	}
	return m.registerGet(router, reg)
}

func (m *Module) registerList(router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		users, err := m.List(r.Context())
		if err != nil {
			problem.WriteResponse(w, problem.Internal(err.Error()).WithCode("directory_list_failed"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(users)
	}

	builder := openapi.NewOperation(http.MethodGet, "/directory/users").
		OperationID("directory.list").
		Summary("List directory users").
		Tag("directory").
		Handler(handler)
	ready := openapi.JSONResponseWithSchema[[]User](builder, reg, http.StatusOK, "users")
	return ready.Register(router, reg)
}

func (m *Module) registerCreate(router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			problem.WriteResponse(w, problem.BadRequest(err.Error()).WithCode("invalid_body"))
			return
		}
		user, err := m.Create(r.Context(), req.Name, req.Email)
		if err != nil {
			if errors.Is(err, ErrEmailTaken) {
				problem.WriteResponse(w, problem.Conflict(err.Error()).WithCode("email_taken"))
				return
			}
			problem.WriteResponse(w, problem.Internal(err.Error()).WithCode("directory_create_failed"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(user)
	}

	builder := openapi.NewOperation(http.MethodPost, "/directory/users").
		OperationID("directory.create").
		Summary("Create a directory user").
		Tag("directory").
		Handler(handler)
	ready := openapi.JSONResponseWithSchema[User](builder, reg, http.StatusCreated, "created user").
		ProblemResponse(reg, http.StatusBadRequest, "invalid request body").
		ProblemResponse(reg, http.StatusConflict, "email already registered")
	return ready.Register(router, reg)
}

func (m *Module) registerGet(router chi.Router, reg *openapi.Registry) (chi.Router, error) {
	handler := func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		if err != nil {
			problem.WriteResponse(w, problem.BadRequest("id must be an integer").WithCode("invalid_id"))
			return
		}
		user, err := m.Get(r.Context(), id)
		if err != nil {
			problem.WriteResponse(w, problem.NotFound(err.Error()).WithCode("user_not_found"))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(user)
	}

	builder := openapi.NewOperation(http.MethodGet, "/directory/users/{id}").
		OperationID("directory.get").
		Summary("Get a directory user by id").
		Tag("directory").
		PathParam("id", "user id").
		Handler(handler)
	ready := openapi.JSONResponseWithSchema[User](builder, reg, http.StatusOK, "user").
		ProblemResponse(reg, http.StatusNotFound, "user not found")
	return ready.Register(router, reg)
}
