package telemetry

import (
	"maps"
	"time"
)

// Log levels. These mirror what an edge worker's console surface emits.
const (
	LevelLog   = "log"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelDebug = "debug"
)

// Log sources identify where an entry originated.
const (
	SourceWorker  = "worker"  // the worker runtime itself
	SourceQueue   = "queue"   // queue consumer deliveries
	SourceActor   = "actor"   // stateful-object activity
	SourceSystem  = "system"  // edgedeck itself
	SourceRequest = "request" // derived from a completed capture
)

// ValidLevel reports whether s is a known log level.
func ValidLevel(s string) bool {
	switch s {
	case LevelLog, LevelInfo, LevelWarn, LevelError, LevelDebug:
		return true
	}
	return false
}

// ValidSource reports whether s is a known log source.
func ValidSource(s string) bool {
	switch s {
	case SourceWorker, SourceQueue, SourceActor, SourceSystem, SourceRequest:
		return true
	}
	return false
}

// CapturedRequest records one proxied HTTP exchange. It is created in a
// pending state (no Response) when the request enters the proxy and completed
// exactly once when the upstream response resolves. Evicted records are gone;
// there is no per-record deletion beyond a bulk clear.
type CapturedRequest struct {
	// ID is assigned at capture start and never changes.
	ID string `json:"id"`

	// Timestamp is the capture-start time.
	Timestamp time.Time `json:"timestamp"`

	Method string `json:"method"`
	URL    string `json:"url"`

	// Path is the request path plus query string.
	Path string `json:"path"`

	// Headers is a snapshot of the request headers at capture start.
	Headers map[string]string `json:"headers"`

	// Body is the request body if captured.
	Body string `json:"body,omitempty"`

	// Response is attached exactly once when the upstream response resolves.
	Response *CapturedResponse `json:"response,omitempty"`
}

// CapturedResponse holds the response side of a completed capture.
type CapturedResponse struct {
	Status     int               `json:"status"`
	StatusText string            `json:"statusText"`
	Headers    map[string]string `json:"headers"`

	// Body is the decoded response body, or a human-readable placeholder
	// when the body was oversized, binary, or unreadable.
	Body string `json:"body,omitempty"`

	// Duration is wall-clock milliseconds from capture start to
	// response-ready.
	Duration int64 `json:"duration"`
}

// Completed reports whether the response has been attached.
func (c *CapturedRequest) Completed() bool {
	return c.Response != nil
}

// Clone returns a deep copy. The store hands out clones so readers can
// serialize them while the live record is still receiving its response.
func (c *CapturedRequest) Clone() *CapturedRequest {
	if c == nil {
		return nil
	}
	out := *c
	out.Headers = maps.Clone(c.Headers)
	if c.Response != nil {
		resp := *c.Response
		resp.Headers = maps.Clone(c.Response.Headers)
		out.Response = &resp
	}
	return &out
}

// LogEntry is a single immutable log line. Entries with Source == "request"
// are synthesized automatically when a capture completes and carry a
// RequestLogData payload in Data.
type LogEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"`
	Source    string    `json:"source"`
	Message   string    `json:"message"`
	Data      any       `json:"data,omitempty"`
}

// RequestLogData cross-references the capture that produced a derived log
// entry.
type RequestLogData struct {
	RequestID string `json:"requestId"`
	Method    string `json:"method"`
	Path      string `json:"path"`
	Status    int    `json:"status"`
	Duration  int64  `json:"duration"`
}
