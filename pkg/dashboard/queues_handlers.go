package dashboard

import (
	"encoding/json"
	"net/http"

	"github.com/edgedeck/edgedeck/pkg/httputil"
	"github.com/edgedeck/edgedeck/pkg/resources"
)

// handleListQueues handles GET /queues.
func (a *API) handleListQueues(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"queues": []resources.QueueStats{}})
		return
	}
	stats := a.registry.Broker().Stats()
	if stats == nil {
		stats = []resources.QueueStats{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"queues": stats})
}

type queueSendRequest struct {
	Body string `json:"body"`
}

// handleQueueSend handles POST /queues/{name}/messages.
func (a *API) handleQueueSend(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteNotFound(w, "No project configuration loaded")
		return
	}

	var req queueSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Body == "" {
		httputil.WriteBadRequest(w, "Body is required")
		return
	}

	msg := a.registry.Broker().Send(r.PathValue("name"), req.Body)
	httputil.WriteJSON(w, http.StatusOK, msg)
}
