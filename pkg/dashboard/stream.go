package dashboard

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/edgedeck/edgedeck/pkg/httputil"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// keepaliveInterval is how often an SSE comment line is written to detect
// dead connections.
const keepaliveInterval = 30 * time.Second

// handleStreamLogs handles GET /logs/stream: a persistent one-way SSE feed of
// request and log events. The first message is always "connected" with the
// current timestamp; history is never replayed. The session lives until
// either side disconnects, and unsubscribes exactly once on the way out.
func (a *API) handleStreamLogs(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		httputil.WriteInternalError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	events, unsubscribe := a.hub.Broadcaster().Subscribe(telemetry.DefaultMailboxSize)
	defer unsubscribe()

	// The timestamp serializes as RFC 3339, like every other wire timestamp.
	if !writeSSE(w, telemetry.EventConnected, map[string]any{"timestamp": time.Now()}) {
		return
	}
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, open := <-events:
			if !open {
				return
			}
			// A failed serialization skips this message, not the session.
			if !writeSSE(w, ev.Name, ev.Payload) {
				continue
			}
			flusher.Flush()
		}
	}
}

// writeSSE writes one event frame. It reports false when the message could
// not be written, either because the payload failed to marshal or the
// connection failed.
func writeSSE(w http.ResponseWriter, name string, payload any) bool {
	data, err := json.Marshal(payload)
	if err != nil {
		return false
	}
	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data); err != nil {
		return false
	}
	return true
}
