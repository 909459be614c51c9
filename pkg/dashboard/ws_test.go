package dashboard

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

func dialWS(t *testing.T, server *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/logs/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readWSEvent(t *testing.T, conn *websocket.Conn) wsEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var ev wsEvent
	require.NoError(t, conn.ReadJSON(&ev))
	return ev
}

func TestWebSocketConnectedFirst(t *testing.T) {
	api, _ := newTestAPI(t)
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	conn := dialWS(t, server)
	ev := readWSEvent(t, conn)

	assert.Equal(t, telemetry.EventConnected, ev.Event)
	data := ev.Data.(map[string]any)
	require.Contains(t, data, "timestamp")

	ts, ok := data["timestamp"].(string)
	require.True(t, ok, "timestamp should be a string, got %T", data["timestamp"])
	_, err := time.Parse(time.RFC3339, ts)
	assert.NoError(t, err)
}

func TestWebSocketReceivesEvents(t *testing.T) {
	api, hub := newTestAPI(t)
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	conn := dialWS(t, server)
	readWSEvent(t, conn) // connected

	hub.Log("", "over the socket", nil, "")

	ev := readWSEvent(t, conn)
	assert.Equal(t, telemetry.EventLog, ev.Event)
	data := ev.Data.(map[string]any)
	assert.Equal(t, "over the socket", data["message"])
}

func TestWebSocketDisconnectUnsubscribes(t *testing.T) {
	api, hub := newTestAPI(t)
	server := httptest.NewServer(api.Handler())
	defer server.Close()

	conn := dialWS(t, server)
	readWSEvent(t, conn)
	require.Equal(t, 1, hub.Broadcaster().SubscriberCount())

	_ = conn.Close()

	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Broadcaster().SubscriberCount() == 0 {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("subscriber not released after websocket close")
}
