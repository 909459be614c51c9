package cli

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/edgedeck/edgedeck/pkg/dashboard"
	"github.com/edgedeck/edgedeck/pkg/project"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// DefaultDashboardURL is where the dashboard API lives when edgedeck runs
// with default settings.
const DefaultDashboardURL = "http://localhost:8788/__edgedeck"

// Client talks to a running edgedeck dashboard API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the dashboard API at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Health checks whether the server is reachable.
func (c *Client) Health() error {
	var resp struct {
		Status string `json:"status"`
	}
	if err := c.get("/health", &resp); err != nil {
		return fmt.Errorf("server not reachable at %s: %w", c.baseURL, err)
	}
	return nil
}

// Status fetches the server status document.
func (c *Client) Status() (*dashboard.StatusResponse, error) {
	var out dashboard.StatusResponse
	if err := c.get("/status", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetLogs fetches the most recent limit log entries.
func (c *Client) GetLogs(limit int) ([]*telemetry.LogEntry, error) {
	var resp struct {
		Logs []*telemetry.LogEntry `json:"logs"`
	}
	path := "/logs"
	if limit > 0 {
		path = fmt.Sprintf("/logs?limit=%d", limit)
	}
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return resp.Logs, nil
}

// ClearLogs deletes all log entries.
func (c *Client) ClearLogs() error {
	return c.delete("/logs")
}

// AppendLog posts a log entry to the server.
func (c *Client) AppendLog(level, message string, data any, source string) error {
	body, err := json.Marshal(map[string]any{
		"level":   level,
		"message": message,
		"data":    data,
		"source":  source,
	})
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Post(c.baseURL+"/logs", "application/json", bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return checkStatus(resp)
}

// GetRequests fetches the full captured-request snapshot.
func (c *Client) GetRequests() ([]*telemetry.CapturedRequest, int, error) {
	var resp struct {
		Requests []*telemetry.CapturedRequest `json:"requests"`
		Total    int                          `json:"total"`
	}
	if err := c.get("/requests", &resp); err != nil {
		return nil, 0, err
	}
	return resp.Requests, resp.Total, nil
}

// GetRequest fetches one captured request by id.
func (c *Client) GetRequest(id string) (*telemetry.CapturedRequest, error) {
	var out telemetry.CapturedRequest
	if err := c.get("/requests/"+id, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearRequests deletes all captured requests.
func (c *Client) ClearRequests() error {
	return c.delete("/requests")
}

// GetBindings fetches the project binding manifest.
func (c *Client) GetBindings() (*project.Manifest, error) {
	var out project.Manifest
	if err := c.get("/bindings", &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// StreamEvent is one frame from the live event stream.
type StreamEvent struct {
	Name string
	Data json.RawMessage
}

// Stream attaches to the SSE feed and calls fn for every event until ctx is
// cancelled or the connection drops.
func (c *Client) Stream(ctx context.Context, fn func(StreamEvent)) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/logs/stream", nil)
	if err != nil {
		return err
	}

	// The stream outlives any request timeout.
	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return err
	}

	reader := bufio.NewReader(resp.Body)
	var event string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\n")
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			fn(StreamEvent{Name: event, Data: json.RawMessage(strings.TrimPrefix(line, "data: "))})
		}
	}
}

func (c *Client) get(path string, out any) error {
	resp, err := c.httpClient.Get(c.baseURL + path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if err := checkStatus(resp); err != nil {
		return err
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) delete(path string) error {
	req, err := http.NewRequest(http.MethodDelete, c.baseURL+path, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	return checkStatus(resp)
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode < 400 {
		return nil
	}
	var apiErr struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
		return fmt.Errorf("server error (%d): %s", resp.StatusCode, apiErr.Error)
	}
	return fmt.Errorf("server error: %s", resp.Status)
}
