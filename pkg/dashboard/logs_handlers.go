package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/edgedeck/edgedeck/pkg/httputil"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// DefaultLogLimit is how many entries GET /logs returns when no limit is
// given.
const DefaultLogLimit = 100

// handleListLogs handles GET /logs?limit=N.
func (a *API) handleListLogs(w http.ResponseWriter, r *http.Request) {
	limit := DefaultLogLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httputil.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	logs := a.hub.Logs().Recent(limit)
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"logs": logs})
}

type appendLogRequest struct {
	Level   string `json:"level"`
	Message string `json:"message"`
	Data    any    `json:"data"`
	Source  string `json:"source"`
}

// handleAppendLog handles POST /logs. The message field is required; level
// defaults to info and source to system.
func (a *API) handleAppendLog(w http.ResponseWriter, r *http.Request) {
	var req appendLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Message == "" {
		httputil.WriteBadRequest(w, "Message is required")
		return
	}
	if req.Level != "" && !telemetry.ValidLevel(req.Level) {
		httputil.WriteBadRequest(w, "Invalid log level")
		return
	}
	if req.Source != "" && !telemetry.ValidSource(req.Source) {
		httputil.WriteBadRequest(w, "Invalid log source")
		return
	}

	a.hub.Log(req.Level, req.Message, req.Data, req.Source)
	httputil.WriteSuccess(w)
}

// handleClearLogs handles DELETE /logs. Open streaming sessions are
// unaffected.
func (a *API) handleClearLogs(w http.ResponseWriter, r *http.Request) {
	a.hub.Logs().Clear()
	httputil.WriteSuccess(w)
}
