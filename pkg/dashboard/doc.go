// Package dashboard provides the REST and streaming API the edgedeck
// dashboard frontend talks to: captured request and log queries, the live
// event stream over SSE and WebSocket, the project binding manifest, and thin
// routes over the emulated resource bindings.
//
// The API can listen on its own port or be mounted under a path prefix on the
// proxy listener via Handler.
package dashboard
