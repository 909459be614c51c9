package proxy

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	"github.com/edgedeck/edgedeck/pkg/logging"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// DashboardPrefix is the path prefix the dashboard API is mounted under on
// the proxy listener. Requests outside it go to the worker runtime.
const DashboardPrefix = "/__edgedeck"

// Server is the edgedeck front listener.
type Server struct {
	upstream   *url.URL
	proxy      *httputil.ReverseProxy
	dashboard  http.Handler
	httpServer *http.Server
	port       int
	log        *slog.Logger
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) ServerOption {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithDashboard mounts a dashboard handler under DashboardPrefix.
func WithDashboard(h http.Handler) ServerOption {
	return func(s *Server) { s.dashboard = h }
}

// NewServer creates a proxy listening on port that forwards to upstream
// through the capture transport. Capture faults never alter the proxied
// exchange; a failed upstream dial surfaces as a plain 502.
func NewServer(port int, upstream *url.URL, hub *telemetry.Hub, captureBody bool, opts ...ServerOption) *Server {
	s := &Server{
		upstream: upstream,
		port:     port,
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.proxy = httputil.NewSingleHostReverseProxy(upstream)
	s.proxy.Transport = &telemetry.Transport{
		Interceptor: telemetry.NewInterceptor(hub),
		CaptureBody: captureBody,
	}
	log := s.log
	s.proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Debug("upstream error", "method", r.Method, "path", r.URL.Path, "error", err)
		w.WriteHeader(http.StatusBadGateway)
	}

	s.httpServer = &http.Server{
		Addr:        fmt.Sprintf(":%d", port),
		Handler:     s,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: the dashboard stream endpoints stay open.
	}
	return s
}

// ServeHTTP routes dashboard-prefixed requests to the mounted dashboard and
// everything else to the worker runtime.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s.dashboard != nil && underPrefix(r.URL.Path) {
		http.StripPrefix(DashboardPrefix, s.dashboard).ServeHTTP(w, r)
		return
	}
	s.proxy.ServeHTTP(w, r)
}

// Start begins serving.
func (s *Server) Start() error {
	s.log.Info("starting proxy", "port", s.port, "upstream", s.upstream.String())
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.log.Error("proxy server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully shuts down the listener.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func underPrefix(path string) bool {
	return path == DashboardPrefix || strings.HasPrefix(path, DashboardPrefix+"/")
}
