// Package proxy runs the edgedeck front server: a reverse proxy that
// forwards every request to the developer's worker runtime with the
// telemetry capture transport attached, and mounts the dashboard API under
// the /__edgedeck/ prefix on the same listener.
package proxy
