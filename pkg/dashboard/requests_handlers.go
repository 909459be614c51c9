package dashboard

import (
	"net/http"

	"github.com/edgedeck/edgedeck/pkg/httputil"
)

// handleListRequests handles GET /requests.
func (a *API) handleListRequests(w http.ResponseWriter, r *http.Request) {
	requests := a.hub.Requests().All()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"requests": requests,
		"total":    len(requests),
	})
}

// handleGetRequest handles GET /requests/{id}.
func (a *API) handleGetRequest(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	req := a.hub.Requests().Get(id)
	if req == nil {
		httputil.WriteNotFound(w, "Request not found")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, req)
}

// handleClearRequests handles DELETE /requests. A capture in flight when the
// store is cleared completes silently with no event.
func (a *API) handleClearRequests(w http.ResponseWriter, r *http.Request) {
	a.hub.Requests().Clear()
	httputil.WriteSuccess(w)
}
