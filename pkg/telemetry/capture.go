package telemetry

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edgedeck/edgedeck/internal/id"
)

// MaxBodyCapture is the largest response body stored verbatim. Anything
// larger is replaced with a size placeholder.
const MaxBodyCapture = 100 * 1024

// Body placeholders stored in place of content that could not be kept.
const (
	placeholderTooLarge = "[Response too large: %d bytes]"
	placeholderBinary   = "[Binary data: %d bytes]"
	placeholderUnread   = "[Could not read body]"
)

// Interceptor records proxied request/response exchanges into a Hub. It is
// attached around the proxy's upstream call and never alters the exchange:
// every fault during capture is absorbed with a placeholder value or a silent
// skip.
type Interceptor struct {
	hub *Hub
}

// NewInterceptor creates an Interceptor recording into hub.
func NewInterceptor(hub *Hub) *Interceptor {
	return &Interceptor{hub: hub}
}

// StartCapture records a new pending capture for req and returns its ID.
// Called before the request is forwarded upstream.
func (i *Interceptor) StartCapture(req *http.Request) string {
	captured := &CapturedRequest{
		ID:        id.ULID(),
		Timestamp: time.Now(),
		Method:    req.Method,
		URL:       req.URL.String(),
		Path:      req.URL.RequestURI(),
		Headers:   flattenHeader(req.Header),
	}
	i.hub.Requests().Append(captured)
	return captured.ID
}

// CompleteCapture attaches the response to the pending capture, publishes the
// completed record as a "request" event, and synthesizes the derived log
// entry. An unknown or evicted captureID is a silent no-op. When captureBody
// is true the response body is read and restored so the caller's stream stays
// consumable; see readBody for the size and content-type policy.
func (i *Interceptor) CompleteCapture(captureID string, resp *http.Response, start time.Time, captureBody bool) {
	if resp == nil {
		return
	}

	var body string
	if captureBody {
		body = readBody(resp)
	}

	completed := i.hub.Requests().Complete(captureID, &CapturedResponse{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Headers:    flattenHeader(resp.Header),
		Body:       body,
		Duration:   time.Since(start).Milliseconds(),
	})
	if completed == nil {
		// Evicted, cleared, or already completed. Accepted race: the
		// exchange happened but leaves no telemetry behind.
		return
	}

	i.hub.Broadcaster().Publish(EventRequest, completed)

	level := LevelInfo
	if completed.Response.Status >= 400 {
		level = LevelError
	}
	i.hub.AppendLog(&LogEntry{
		Timestamp: completed.Timestamp,
		Level:     level,
		Source:    SourceRequest,
		Message: fmt.Sprintf("%s %s → %d (%dms)",
			completed.Method, completed.Path, completed.Response.Status, completed.Response.Duration),
		Data: RequestLogData{
			RequestID: completed.ID,
			Method:    completed.Method,
			Path:      completed.Path,
			Status:    completed.Response.Status,
			Duration:  completed.Response.Duration,
		},
	})
}

// readBody drains resp.Body and replaces it with an equivalent reader, so
// inspection is side-effect-free for the caller. Returns the decoded body or
// a placeholder per the capture policy. Read failures yield a placeholder and
// whatever bytes were read remain consumable.
func readBody(resp *http.Response) string {
	if resp.Body == nil {
		return ""
	}

	buf, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(buf))
	if err != nil {
		return placeholderUnread
	}
	if len(buf) == 0 {
		return ""
	}
	if len(buf) > MaxBodyCapture {
		return fmt.Sprintf(placeholderTooLarge, len(buf))
	}
	if !textContentType(resp.Header.Get("Content-Type")) {
		return fmt.Sprintf(placeholderBinary, len(buf))
	}
	return string(buf)
}

// textContentType reports whether the content type is stored as decoded text.
func textContentType(ct string) bool {
	return strings.Contains(ct, "application/json") ||
		strings.Contains(ct, "text/") ||
		strings.Contains(ct, "javascript")
}

// statusText extracts the reason phrase from resp.Status, falling back to the
// standard text for the code.
func statusText(resp *http.Response) string {
	if text, ok := strings.CutPrefix(resp.Status, fmt.Sprintf("%d ", resp.StatusCode)); ok && text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// flattenHeader snapshots a header, joining repeated values the way the
// dashboard displays them.
func flattenHeader(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for k, vs := range h {
		out[k] = strings.Join(vs, ", ")
	}
	return out
}

// Transport is an http.RoundTripper that captures every exchange passing
// through it. The proxy installs it as the reverse proxy's transport so
// capture rides along without touching the request path.
type Transport struct {
	// Base is the underlying transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper

	// Interceptor records the exchanges. Required.
	Interceptor *Interceptor

	// CaptureBody controls whether response bodies are read and stored.
	CaptureBody bool
}

// RoundTrip implements http.RoundTripper. Transport errors are passed through
// untouched; the pending capture stays incomplete and a worker-source error
// entry is logged.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	start := time.Now()
	captureID := t.Interceptor.StartCapture(req)

	resp, err := base.RoundTrip(req)
	if err != nil {
		t.Interceptor.hub.Log(LevelError,
			fmt.Sprintf("%s %s failed: %v", req.Method, req.URL.RequestURI(), err),
			nil, SourceWorker)
		return nil, err
	}

	t.Interceptor.CompleteCapture(captureID, resp, start, t.CaptureBody)
	return resp, nil
}
