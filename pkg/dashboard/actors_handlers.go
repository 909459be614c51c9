package dashboard

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/edgedeck/edgedeck/pkg/httputil"
	"github.com/edgedeck/edgedeck/pkg/resources"
)

func (a *API) actorNamespace(w http.ResponseWriter, r *http.Request) (*resources.ActorNamespace, bool) {
	if a.registry == nil {
		httputil.WriteNotFound(w, "No project configuration loaded")
		return nil, false
	}
	ns, err := a.registry.Actors(r.PathValue("binding"))
	if err != nil {
		httputil.WriteNotFound(w, "Actor namespace not found")
		return nil, false
	}
	return ns, true
}

// handleListActorNamespaces handles GET /actors.
func (a *API) handleListActorNamespaces(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"namespaces": []string{}})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"namespaces": a.registry.ActorBindings()})
}

type actorIDFromNameRequest struct {
	Name string `json:"name"`
}

// handleActorIDFromName handles POST /actors/{binding}/id-from-name.
func (a *API) handleActorIDFromName(w http.ResponseWriter, r *http.Request) {
	ns, ok := a.actorNamespace(w, r)
	if !ok {
		return
	}

	var req actorIDFromNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid JSON body")
		return
	}
	if req.Name == "" {
		httputil.WriteBadRequest(w, "Name is required")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"id": ns.IDFromName(req.Name)})
}

// handleListActorInstances handles GET /actors/{binding}/instances.
func (a *API) handleListActorInstances(w http.ResponseWriter, r *http.Request) {
	ns, ok := a.actorNamespace(w, r)
	if !ok {
		return
	}
	instances := ns.Instances()
	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"class":     ns.ClassName(),
		"instances": instances,
		"total":     len(instances),
	})
}

// handleActorStorage handles GET /actors/{binding}/instances/{id}/storage.
func (a *API) handleActorStorage(w http.ResponseWriter, r *http.Request) {
	ns, ok := a.actorNamespace(w, r)
	if !ok {
		return
	}

	inst, err := ns.Lookup(r.PathValue("id"))
	if err != nil {
		if errors.Is(err, resources.ErrInstanceNotFound) {
			httputil.WriteNotFound(w, "Actor instance not found")
			return
		}
		httputil.WriteInternalError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"storage": inst.StorageList()})
}
