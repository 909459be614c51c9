package dashboard

import (
	"errors"
	"io"
	"net/http"

	"github.com/edgedeck/edgedeck/pkg/httputil"
	"github.com/edgedeck/edgedeck/pkg/resources"
)

func (a *API) bucket(w http.ResponseWriter, r *http.Request) (*resources.Bucket, bool) {
	if a.registry == nil {
		httputil.WriteNotFound(w, "No project configuration loaded")
		return nil, false
	}
	b, err := a.registry.Bucket(r.PathValue("binding"))
	if err != nil {
		httputil.WriteNotFound(w, "Bucket not found")
		return nil, false
	}
	return b, true
}

// handleListBuckets handles GET /storage.
func (a *API) handleListBuckets(w http.ResponseWriter, r *http.Request) {
	if a.registry == nil {
		httputil.WriteJSON(w, http.StatusOK, map[string]any{"buckets": []string{}})
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"buckets": a.registry.BucketBindings()})
}

// handleBucketList handles GET /storage/{binding}/objects?prefix=.
func (a *API) handleBucketList(w http.ResponseWriter, r *http.Request) {
	b, ok := a.bucket(w, r)
	if !ok {
		return
	}

	objects, err := b.List(r.URL.Query().Get("prefix"))
	if err != nil {
		httputil.WriteInternalError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"objects": objects})
}

// handleBucketGet handles GET /storage/{binding}/objects/{key...}.
func (a *API) handleBucketGet(w http.ResponseWriter, r *http.Request) {
	b, ok := a.bucket(w, r)
	if !ok {
		return
	}

	info, data, err := b.Get(r.PathValue("key"))
	if err != nil {
		if errors.Is(err, resources.ErrObjectNotFound) {
			httputil.WriteNotFound(w, "Object not found")
			return
		}
		httputil.WriteInternalError(w, err.Error())
		return
	}

	contentType := info.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleBucketPut handles PUT /storage/{binding}/objects/{key...}.
func (a *API) handleBucketPut(w http.ResponseWriter, r *http.Request) {
	b, ok := a.bucket(w, r)
	if !ok {
		return
	}

	data, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteBadRequest(w, "Could not read request body")
		return
	}

	info, err := b.Put(r.PathValue("key"), data, resources.ObjectPutOptions{
		ContentType: r.Header.Get("Content-Type"),
	})
	if err != nil {
		httputil.WriteInternalError(w, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, info)
}

// handleBucketDelete handles DELETE /storage/{binding}/objects/{key...}.
func (a *API) handleBucketDelete(w http.ResponseWriter, r *http.Request) {
	b, ok := a.bucket(w, r)
	if !ok {
		return
	}
	if err := b.Delete(r.PathValue("key")); err != nil {
		httputil.WriteInternalError(w, err.Error())
		return
	}
	httputil.WriteSuccess(w)
}
