package dashboard

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/edgedeck/edgedeck/pkg/httputil"
	"github.com/edgedeck/edgedeck/pkg/resources"
)

func (a *API) kvNamespace(w http.ResponseWriter, r *http.Request) (*resources.KVNamespace, bool) {
	if a.registry == nil {
		httputil.WriteNotFound(w, "No project configuration loaded")
		return nil, false
	}
	ns, err := a.registry.KV(r.PathValue("binding"))
	if err != nil {
		httputil.WriteNotFound(w, "KV namespace not found")
		return nil, false
	}
	return ns, true
}

// handleListKVNamespaces handles GET /kv.
func (a *API) handleListKVNamespaces(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"namespaces": []string{}})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"namespaces": a.registry.KVBindings()})
}

// handleKVList handles GET /kv/{binding}/keys?prefix=&cursor=&limit=.
func (a *API) handleKVList(w http.ResponseWriter, r *http.Request) {
	ns, ok := a.kvNamespace(w, r)
	if !ok {
		return
	}

	opts := resources.KVListOptions{
		Prefix: r.URL.Query().Get("prefix"),
		Cursor: r.URL.Query().Get("cursor"),
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			httputil.WriteBadRequest(w, "limit must be a non-negative integer")
			return
		}
		opts.Limit = n
	}
	httputil.WriteJSON(w, http.StatusOK, ns.List(opts))
}

// handleKVGet handles GET /kv/{binding}/values/{key...}. The raw value is the
// body; metadata travels in a header so binary values survive untouched.
func (a *API) handleKVGet(w http.ResponseWriter, r *http.Request) {
	ns, ok := a.kvNamespace(w, r)
	if !ok {
		return
	}

	value, _, err := ns.Get(r.PathValue("key"))
	if err != nil {
		if errors.Is(err, resources.ErrKeyNotFound) {
			httputil.WriteNotFound(w, "Key not found")
			return
		}
		httputil.WriteInternalError(w, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(value)
}

// handleKVPut handles PUT /kv/{binding}/values/{key...}?ttl=N.
func (a *API) handleKVPut(w http.ResponseWriter, r *http.Request) {
	ns, ok := a.kvNamespace(w, r)
	if !ok {
		return
	}

	value, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequest(w, "Could not read request body")
		return
	}

	var opts resources.KVPutOptions
	if s := r.URL.Query().Get("ttl"); s != "" {
		ttl, err := strconv.ParseInt(s, 10, 64)
		if err != nil || ttl < 0 {
			httputil.WriteBadRequest(w, "ttl must be a non-negative integer")
			return
		}
		opts.ExpirationTTL = ttl
	}

	ns.Put(r.PathValue("key"), value, opts)
	httputil.WriteSuccess(w)
}

// handleKVDelete handles DELETE /kv/{binding}/values/{key...}.
func (a *API) handleKVDelete(w http.ResponseWriter, r *http.Request) {
	ns, ok := a.kvNamespace(w, r)
	if !ok {
		return
	}
	ns.Delete(r.PathValue("key"))
	httputil.WriteSuccess(w)
}
