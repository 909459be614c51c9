// Route registration for the dashboard API.

package dashboard

import (
	"net/http"
)

// registerRoutes sets up all API routes.
func (a *API) registerRoutes(mux *http.ServeMux) {
	// Health and status
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /status", a.handleStatus)

	// Captured logs
	mux.HandleFunc("GET /logs", a.handleListLogs)
	mux.HandleFunc("POST /logs", a.handleAppendLog)
	mux.HandleFunc("DELETE /logs", a.handleClearLogs)
	mux.HandleFunc("GET /logs/stream", a.handleStreamLogs)
	mux.HandleFunc("GET /logs/ws", a.handleStreamLogsWS)

	// Captured requests
	mux.HandleFunc("GET /requests", a.handleListRequests)
	mux.HandleFunc("GET /requests/{id}", a.handleGetRequest)
	mux.HandleFunc("DELETE /requests", a.handleClearRequests)

	// Project bindings
	mux.HandleFunc("GET /bindings", a.handleGetBindings)

	// Databases
	mux.HandleFunc("GET /databases", a.handleListDatabases)
	mux.HandleFunc("POST /databases/{binding}/query", a.handleDatabaseQuery)
	mux.HandleFunc("GET /databases/{binding}/tables", a.handleDatabaseTables)

	// Key-value namespaces
	mux.HandleFunc("GET /kv", a.handleListKVNamespaces)
	mux.HandleFunc("GET /kv/{binding}/keys", a.handleKVList)
	mux.HandleFunc("GET /kv/{binding}/values/{key...}", a.handleKVGet)
	mux.HandleFunc("PUT /kv/{binding}/values/{key...}", a.handleKVPut)
	mux.HandleFunc("DELETE /kv/{binding}/values/{key...}", a.handleKVDelete)

	// Storage buckets
	mux.HandleFunc("GET /storage", a.handleListBuckets)
	mux.HandleFunc("GET /storage/{binding}/objects", a.handleBucketList)
	mux.HandleFunc("GET /storage/{binding}/objects/{key...}", a.handleBucketGet)
	mux.HandleFunc("PUT /storage/{binding}/objects/{key...}", a.handleBucketPut)
	mux.HandleFunc("DELETE /storage/{binding}/objects/{key...}", a.handleBucketDelete)

	// Queues
	mux.HandleFunc("GET /queues", a.handleListQueues)
	mux.HandleFunc("POST /queues/{name}/messages", a.handleQueueSend)

	// Actors
	mux.HandleFunc("GET /actors", a.handleListActorNamespaces)
	mux.HandleFunc("POST /actors/{binding}/id-from-name", a.handleActorIDFromName)
	mux.HandleFunc("GET /actors/{binding}/instances", a.handleListActorInstances)
	mux.HandleFunc("GET /actors/{binding}/instances/{id}/storage", a.handleActorStorage)
}
