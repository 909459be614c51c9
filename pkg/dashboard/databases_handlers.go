package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edgedeck/edgedeck/pkg/httputil"
	"github.com/edgedeck/edgedeck/pkg/resources"
)

// handleListDatabases handles GET /databases.
func (a *API) handleListDatabases(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"databases": []string{}})
		return
	}
	bindings := a.registry.Databases().Bindings()
	if bindings == nil {
		bindings = []string{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"databases": bindings})
}

type databaseQueryRequest struct {
	SQL    string `json:"sql"`
	Params []any  `json:"params"`
}

// handleDatabaseQuery handles POST /databases/{binding}/query.
func (a *API) handleDatabaseQuery(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteNotFound(w, "No project configuration loaded")
		return
	}

	var req databaseQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.SQL == "" {
		httputil.WriteBadRequest(w, "SQL is required")
		return
	}

	binding := r.PathValue("binding")
	result, err := a.registry.Databases().Query(r.Context(), binding, req.SQL, req.Params...)
	if err != nil {
		if errors.Is(err, resources.ErrDatabaseNotFound) {
			httputil.WriteNotFound(w, "Database not found")
			return
		}
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

// handleDatabaseTables handles GET /databases/{binding}/tables.
func (a *API) handleDatabaseTables(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteNotFound(w, "No project configuration loaded")
		return
	}

	binding := r.PathValue("binding")
	tables, err := a.registry.Databases().Tables(r.Context(), binding)
	if err != nil {
		if errors.Is(err, resources.ErrDatabaseNotFound) {
			httputil.WriteNotFound(w, "Database not found")
			return
		}
		httputil.WriteInternalError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"tables": tables})
}
