package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/edgedeck/edgedeck/pkg/logging"
	"github.com/edgedeck/edgedeck/pkg/project"
	"github.com/edgedeck/edgedeck/pkg/resources"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// API serves the dashboard REST and streaming endpoints.
type API struct {
	hub      *telemetry.Hub
	registry *resources.Registry
	manifest *project.Manifest

	httpServer *http.Server
	port       int
	startTime  time.Time
	version    string
	log        *slog.Logger

	corsEnabled  bool
	allowOrigins []string
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithRegistry attaches the resource registry served by the binding routes.
func WithRegistry(r *resources.Registry) Option {
	return func(a *API) { a.registry = r }
}

// WithManifest sets the binding manifest served at /bindings.
func WithManifest(m *project.Manifest) Option {
	return func(a *API) { a.manifest = m }
}

// WithVersion sets the version string reported by /status.
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// WithCORS enables CORS for the given origins. An empty list allows any
// origin, which is the local-development default.
func WithCORS(origins []string) Option {
	return func(a *API) {
		a.corsEnabled = true
		a.allowOrigins = origins
	}
}

// NewAPI creates a dashboard API over the given telemetry hub.
func NewAPI(port int, hub *telemetry.Hub, opts ...Option) *API {
	a := &API{
		hub:         hub,
		port:        port,
		log:         logging.Nop(),
		corsEnabled: true,
	}
	for _, opt := range opts {
		opt(a)
	}

	mux := http.NewServeMux()
	a.registerRoutes(mux)

	a.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     a.withMiddleware(mux),
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: streaming sessions stay open indefinitely.
	}
	return a
}

// Handler returns the full dashboard handler, middleware included, for
// mounting on another listener.
func (a *API) Handler() http.Handler {
	return a.httpServer.Handler
}

// Start begins serving on the configured port.
func (a *API) Start() error {
	a.startTime = time.Now()
	a.log.Info("starting dashboard API", "port", a.port)
	go func() {
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error("dashboard API error", "error", err)
		}
	}()
	return nil
}

// MarkStarted records the start time without opening a listener, for use when
// the handler is mounted on the proxy server.
func (a *API) MarkStarted() {
	a.startTime = time.Now()
}

// Stop gracefully shuts down the server.
func (a *API) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return a.httpServer.Shutdown(ctx)
}

// Uptime returns seconds since Start.
func (a *API) Uptime() int {
	if a.startTime.IsZero() {
		return 0
	}
	return int(time.Since(a.startTime).Seconds())
}

// withMiddleware wraps the mux with request logging and CORS.
func (a *API) withMiddleware(handler http.Handler) http.Handler {
	logged := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		handler.ServeHTTP(w, r)
		a.log.Debug("dashboard request",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start))
	})

	if !a.corsEnabled {
		return logged
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		w.Header().Add("Vary", "Origin")

		if allow := a.allowOrigin(origin); allow != "" {
			w.Header().Set("Access-Control-Allow-Origin", allow)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		logged.ServeHTTP(w, r)
	})
}

func (a *API) allowOrigin(origin string) string {
	if len(a.allowOrigins) == 0 {
		if origin != "" {
			return origin
		}
		return "*"
	}
	for _, o := range a.allowOrigins {
		if o == origin || o == "*" {
			return origin
		}
	}
	return ""
}
