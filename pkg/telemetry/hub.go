package telemetry

import (
	"log/slog"
	"time"

	"github.com/edgedeck/edgedeck/internal/id"
	"github.com/edgedeck/edgedeck/pkg/logging"
)

// Hub owns the two ring buffer stores and the broadcaster. It is the single
// shared telemetry object for a running edgedeck process: the proxy's capture
// interceptor and every dashboard endpoint hold a reference to the same Hub.
// Construct a fresh Hub per test for isolation; there is no package-level
// state.
type Hub struct {
	requests    *RequestStore
	logs        *LogStore
	broadcaster *Broadcaster
	log         *slog.Logger
}

// HubOption configures a Hub.
type HubOption func(*Hub)

// WithRequestCapacity overrides the captured-request ring buffer capacity.
func WithRequestCapacity(n int) HubOption {
	return func(h *Hub) {
		h.requests = NewRequestStore(n)
	}
}

// WithLogCapacity overrides the log ring buffer capacity.
func WithLogCapacity(n int) HubOption {
	return func(h *Hub) {
		h.logs = NewLogStore(n)
	}
}

// WithLogger sets the operational logger for the hub.
func WithLogger(log *slog.Logger) HubOption {
	return func(h *Hub) {
		if log != nil {
			h.log = log
		}
	}
}

// NewHub creates a Hub with default capacities (500 requests, 1000 logs).
func NewHub(opts ...HubOption) *Hub {
	h := &Hub{
		requests:    NewRequestStore(DefaultRequestCapacity),
		logs:        NewLogStore(DefaultLogCapacity),
		broadcaster: NewBroadcaster(),
		log:         logging.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Requests returns the captured-request store.
func (h *Hub) Requests() *RequestStore { return h.requests }

// Logs returns the log store.
func (h *Hub) Logs() *LogStore { return h.logs }

// Broadcaster returns the event broadcaster.
func (h *Hub) Broadcaster() *Broadcaster { return h.broadcaster }

// AppendLog stores the entry and broadcasts it as a "log" event. Entries
// without an ID or timestamp get one assigned.
func (h *Hub) AppendLog(entry *LogEntry) {
	if entry == nil {
		return
	}
	if entry.ID == "" {
		entry.ID = id.ULID()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	h.logs.Append(entry)
	h.broadcaster.Publish(EventLog, entry)
}

// Log builds and appends a log entry. An empty level defaults to "info" and
// an empty source to "system".
func (h *Hub) Log(level, message string, data any, source string) {
	if level == "" {
		level = LevelInfo
	}
	if source == "" {
		source = SourceSystem
	}
	h.AppendLog(&LogEntry{
		Level:   level,
		Source:  source,
		Message: message,
		Data:    data,
	})
}
