package dashboard

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

func TestListLogsDefaultLimit(t *testing.T) {
	api, hub := newTestAPI(t)
	for i := 0; i < 150; i++ {
		hub.Log("", fmt.Sprintf("entry %d", i), nil, "")
	}

	rec := doRequest(t, api, http.MethodGet, "/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	logs := decodeBody(t, rec)["logs"].([]any)
	require.Len(t, logs, DefaultLogLimit)

	// Most recent entries win, oldest first within the page.
	first := logs[0].(map[string]any)
	assert.Equal(t, "entry 50", first["message"])
}

func TestListLogsExplicitLimit(t *testing.T) {
	api, hub := newTestAPI(t)
	for i := 0; i < 10; i++ {
		hub.Log("", fmt.Sprintf("entry %d", i), nil, "")
	}

	rec := doRequest(t, api, http.MethodGet, "/logs?limit=3", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["logs"], 3)
}

func TestListLogsBadLimit(t *testing.T) {
	api, _ := newTestAPI(t)
	rec := doRequest(t, api, http.MethodGet, "/logs?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAppendLog(t *testing.T) {
	api, hub := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/logs", map[string]any{
		"message": "deploy finished",
		"level":   "warn",
		"source":  "worker",
		"data":    map[string]any{"elapsed": 12},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])

	entries := hub.Logs().All()
	require.Len(t, entries, 1)
	assert.Equal(t, "deploy finished", entries[0].Message)
	assert.Equal(t, telemetry.LevelWarn, entries[0].Level)
	assert.Equal(t, telemetry.SourceWorker, entries[0].Source)
	assert.NotEmpty(t, entries[0].ID)
	assert.False(t, entries[0].Timestamp.IsZero())
}

func TestAppendLogDefaults(t *testing.T) {
	api, hub := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/logs", map[string]any{"message": "plain"})
	require.Equal(t, http.StatusOK, rec.Code)

	entries := hub.Logs().All()
	require.Len(t, entries, 1)
	assert.Equal(t, telemetry.LevelInfo, entries[0].Level)
	assert.Equal(t, telemetry.SourceSystem, entries[0].Source)
}

func TestAppendLogMissingMessage(t *testing.T) {
	api, hub := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/logs", map[string]any{"level": "info"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NotEmpty(t, decodeBody(t, rec)["error"])
	assert.Equal(t, 0, hub.Logs().Count(), "store must stay untouched")
}

func TestAppendLogInvalidJSON(t *testing.T) {
	api, _ := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestClearLogs(t *testing.T) {
	api, hub := newTestAPI(t)
	hub.Log("", "old", nil, "")

	rec := doRequest(t, api, http.MethodDelete, "/logs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["success"])
	assert.Equal(t, 0, hub.Logs().Count())
}
