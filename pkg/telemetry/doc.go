// Package telemetry implements the capture-and-broadcast engine behind the
// edgedeck dashboard: bounded in-memory ring buffers for proxied HTTP
// exchanges and free-form log lines, and a live fan-out of both to any number
// of attached dashboard viewers.
//
// Nothing in this package persists across restarts and nothing here may ever
// fail a proxied request. Capture is strictly best-effort and side-channel:
// body-read failures, oversized bodies, evicted records, and slow or
// disconnected viewers are all absorbed locally.
package telemetry
