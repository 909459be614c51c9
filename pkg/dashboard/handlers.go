package dashboard

import (
	"net/http"

	"github.com/edgedeck/edgedeck/pkg/httputil"
)

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// StatusResponse is the GET /status payload.
type StatusResponse struct {
	Status   string         `json:"status"`
	Version  string         `json:"version,omitempty"`
	Uptime   int            `json:"uptime"`
	Capture  CaptureStatus  `json:"capture"`
	Bindings BindingCounts  `json:"bindings"`
}

// CaptureStatus reports telemetry buffer occupancy and live viewers.
type CaptureStatus struct {
	Requests    int `json:"requests"`
	Logs        int `json:"logs"`
	Subscribers int `json:"subscribers"`
}

// BindingCounts reports how many bindings of each kind are emulated.
type BindingCounts struct {
	Databases int `json:"databases"`
	KV        int `json:"kv"`
	Buckets   int `json:"buckets"`
	Queues    int `json:"queues"`
	Actors    int `json:"actors"`
}

// handleStatus handles GET /status.
func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:  "running",
		Version: a.version,
		Uptime:  a.Uptime(),
		Capture: CaptureStatus{
			Requests:    a.hub.Requests().Count(),
			Logs:        a.hub.Logs().Count(),
			Subscribers: a.hub.Broadcaster().SubscriberCount(),
		},
	}
	if a.registry != nil {
		b := a.registry.Bindings()
		resp.Bindings = BindingCounts{
			Databases: len(b.Databases),
			KV:        len(b.KVNamespaces),
			Buckets:   len(b.Buckets),
			Queues:    len(b.Queues.Producers),
			Actors:    len(b.Actors),
		}
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// handleGetBindings handles GET /bindings.
func (a *API) handleGetBindings(w http.ResponseWriter, r *http.Request) {
	if a.manifest == nil {
		httputil.WriteNotFound(w, "No project configuration loaded")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, a.manifest)
}
