package dashboard

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

func addCapture(hub *telemetry.Hub, id string) {
	hub.Requests().Append(&telemetry.CapturedRequest{
		ID:        id,
		Timestamp: time.Now(),
		Method:    http.MethodGet,
		URL:       "http://localhost:8787/api/items",
		Path:      "/api/items",
		Headers:   map[string]string{"accept": "application/json"},
	})
}

func TestListRequests(t *testing.T) {
	api, hub := newTestAPI(t)
	addCapture(hub, "req-1")
	addCapture(hub, "req-2")

	rec := doRequest(t, api, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(2), body["total"])
	assert.Len(t, body["requests"], 2)
}

func TestListRequestsEmpty(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, float64(0), body["total"])
	assert.NotNil(t, body["requests"], "requests must be an array, not null")
}

func TestGetRequest(t *testing.T) {
	api, hub := newTestAPI(t)
	addCapture(hub, "req-1")

	rec := doRequest(t, api, http.MethodGet, "/requests/req-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "req-1", decodeBody(t, rec)["id"])
}

func TestGetRequestNotFound(t *testing.T) {
	api, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/requests/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Request not found", decodeBody(t, rec)["error"])
}

func TestClearRequests(t *testing.T) {
	api, hub := newTestAPI(t)
	addCapture(hub, "req-1")

	rec := doRequest(t, api, http.MethodDelete, "/requests", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
	assert.Equal(t, 0, hub.Requests().Count())
}

func TestClearRequestsLeavesLogs(t *testing.T) {
	api, hub := newTestAPI(t)
	addCapture(hub, "req-1")
	hub.Log("", "keep me", nil, "")

	doRequest(t, api, http.MethodDelete, "/requests", nil)
	assert.Equal(t, 1, hub.Logs().Count())
}
