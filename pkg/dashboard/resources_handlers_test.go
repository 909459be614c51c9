package dashboard

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseQueryRoundTrip(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/databases/DB/query", map[string]any{
		"sql": "CREATE TABLE items (id INTEGER PRIMARY KEY, name TEXT)",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, api, http.MethodPost, "/databases/DB/query", map[string]any{
		"sql":    "INSERT INTO items (name) VALUES (?)",
		"params": []any{"widget"},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["rowsAffected"])

	rec = doRequest(t, api, http.MethodPost, "/databases/DB/query", map[string]any{
		"sql": "SELECT name FROM items",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decodeBody(t, rec)["rows"].([]any)
	require.Len(t, rows, 1)
	assert.Equal(t, "widget", rows[0].(map[string]any)["name"])
}

func TestDatabaseQueryValidation(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/databases/DB/query", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, api, http.MethodPost, "/databases/NOPE/query", map[string]any{"sql": "SELECT 1"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatabaseTables(t *testing.T) {
	api, _ := newTestAPI(t)
	doRequest(t, api, http.MethodPost, "/databases/DB/query", map[string]any{
		"sql": "CREATE TABLE items (id INTEGER PRIMARY KEY)",
	})

	rec := doRequest(t, api, http.MethodGet, "/databases/DB/tables", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["tables"], 1)
}

func TestKVRoutes(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/kv", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"CACHE"}, decodeBody(t, rec)["namespaces"])

	req := httptest.NewRequest(http.MethodPut, "/kv/CACHE/values/greeting?ttl=60", bytes.NewReader([]byte("hello")))
	rec2 := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	rec = doRequest(t, api, http.MethodGet, "/kv/CACHE/values/greeting", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())

	rec = doRequest(t, api, http.MethodGet, "/kv/CACHE/keys?prefix=gr", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	keys := decodeBody(t, rec)["keys"].([]any)
	require.Len(t, keys, 1)
	assert.Equal(t, "greeting", keys[0].(map[string]any)["name"])

	rec = doRequest(t, api, http.MethodDelete, "/kv/CACHE/values/greeting", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, api, http.MethodGet, "/kv/CACHE/values/greeting", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestKVUnknownNamespace(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doRequest(t, api, http.MethodGet, "/kv/NOPE/keys", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStorageRoutes(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/storage", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"ASSETS"}, decodeBody(t, rec)["buckets"])

	req := httptest.NewRequest(http.MethodPut, "/storage/ASSETS/objects/docs/readme.md", bytes.NewReader([]byte("# hi")))
	req.Header.Set("Content-Type", "text/markdown")
	rec2 := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec2, req)
	require.Equal(t, http.StatusOK, rec2.Code)

	rec = doRequest(t, api, http.MethodGet, "/storage/ASSETS/objects/docs/readme.md", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "# hi", rec.Body.String())
	assert.Equal(t, "text/markdown", rec.Header().Get("Content-Type"))

	rec = doRequest(t, api, http.MethodGet, "/storage/ASSETS/objects?prefix=docs/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["objects"], 1)

	rec = doRequest(t, api, http.MethodDelete, "/storage/ASSETS/objects/docs/readme.md", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, api, http.MethodGet, "/storage/ASSETS/objects/docs/readme.md", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestQueueRoutes(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/queues/jobs/messages", map[string]any{"body": "work"})
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "work", body["body"])

	rec = doRequest(t, api, http.MethodGet, "/queues", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	queues := decodeBody(t, rec)["queues"].([]any)
	require.NotEmpty(t, queues)
}

func TestQueueSendValidation(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doRequest(t, api, http.MethodPost, "/queues/jobs/messages", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestActorRoutes(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/actors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"COUNTER"}, decodeBody(t, rec)["namespaces"])

	rec = doRequest(t, api, http.MethodPost, "/actors/COUNTER/id-from-name", map[string]any{"name": "room-1"})
	require.Equal(t, http.StatusOK, rec.Code)
	id := decodeBody(t, rec)["id"].(string)
	assert.Len(t, id, 64)

	// Deriving an id does not create an instance; listing is empty until use.
	rec = doRequest(t, api, http.MethodGet, "/actors/COUNTER/instances", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody(t, rec)["total"])

	rec = doRequest(t, api, http.MethodGet, "/actors/COUNTER/instances/"+id+"/storage", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestActorIDFromNameValidation(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doRequest(t, api, http.MethodPost, "/actors/COUNTER/id-from-name", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
