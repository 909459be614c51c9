package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// The dashboard is a localhost tool; any origin may attach.
var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// wsEvent is the JSON frame sent to WebSocket viewers, mirroring the SSE
// event name and payload.
type wsEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// handleStreamLogsWS handles GET /logs/ws: the same live event feed as the
// SSE endpoint, delivered over a WebSocket. One writer goroutine owns the
// connection; the read loop exists only to observe disconnects.
func (a *API) handleStreamLogsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		a.log.Debug("websocket upgrade failed", "error", err)
		return
	}

	events, unsubscribe := a.hub.Broadcaster().Subscribe(telemetry.DefaultMailboxSize)

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	go a.writeEvents(conn, events, unsubscribe, done)
}

func (a *API) writeEvents(conn *websocket.Conn, events <-chan telemetry.Event, unsubscribe func(), done <-chan struct{}) {
	ping := time.NewTicker(wsPingPeriod)
	defer func() {
		ping.Stop()
		unsubscribe()
		_ = conn.Close()
	}()

	connected := wsEvent{
		Event: telemetry.EventConnected,
		Data:  map[string]any{"timestamp": time.Now()},
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(connected); err != nil {
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case ev, open := <-events:
			if !open {
				return
			}
			frame, err := json.Marshal(wsEvent{Event: ev.Name, Data: ev.Payload})
			if err != nil {
				// Skip the message, keep the session.
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		}
	}
}
