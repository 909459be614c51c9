package cli

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"syscall"

	"github.com/edgedeck/edgedeck/pkg/config"
	"github.com/edgedeck/edgedeck/pkg/dashboard"
	"github.com/edgedeck/edgedeck/pkg/logging"
	"github.com/edgedeck/edgedeck/pkg/project"
	"github.com/edgedeck/edgedeck/pkg/proxy"
	"github.com/edgedeck/edgedeck/pkg/resources"
	"github.com/edgedeck/edgedeck/pkg/telemetry"
)

// RunServe handles the serve command. It loads the server config and project
// file, builds the telemetry hub and resource emulators, and runs the proxy
// with the dashboard API mounted under /__edgedeck until interrupted.
func RunServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	port := fs.Int("port", 0, "Port for the proxy server")
	fs.IntVar(port, "p", 0, "Port for the proxy server (shorthand)")
	upstream := fs.String("upstream", "", "Worker runtime URL to forward to")
	fs.StringVar(upstream, "u", "", "Worker runtime URL (shorthand)")
	configFile := fs.String("config", "", "Path to edgedeck config file")
	fs.StringVar(configFile, "c", "", "Path to config file (shorthand)")
	projectFile := fs.String("project", "", "Path to the project's edge.toml")
	dataDir := fs.String("data-dir", "", "Directory for persisted resource state")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	fs.Usage = func() {
		fmt.Fprint(os.Stderr, `Usage: edgedeck serve [flags]

Start the edgedeck proxy and dashboard.

Flags:
  -p, --port        Port for the proxy server (default: 8788)
  -u, --upstream    Worker runtime URL to forward to (default: http://localhost:8787)
  -c, --config      Path to edgedeck config file (default: edgedeck.yaml)
      --project     Path to the project's edge.toml (default: edge.toml)
      --data-dir    Directory for persisted resource state (default: .edgedeck)
      --log-level   Log level: debug, info, warn, error (default: info)

Examples:
  # Start with defaults
  edgedeck serve

  # Forward to a runtime on another port
  edgedeck serve --upstream http://localhost:3000

  # Use a specific config and project file
  edgedeck serve -c edgedeck.yaml --project apps/api/edge.toml
`)
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := loadServerConfig(*configFile)
	if err != nil {
		return err
	}
	if *port > 0 {
		cfg.Port = *port
	}
	if *upstream != "" {
		cfg.UpstreamURL = *upstream
	}
	if *projectFile != "" {
		cfg.ProjectFile = *projectFile
	}
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Logging.Level = *logLevel
	}

	upstreamURL, err := url.Parse(cfg.UpstreamURL)
	if err != nil {
		return fmt.Errorf("invalid upstream URL %q: %w", cfg.UpstreamURL, err)
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.ParseFormat(cfg.Logging.Format),
	})

	hub := telemetry.NewHub(
		telemetry.WithRequestCapacity(cfg.Capture.MaxRequests),
		telemetry.WithLogCapacity(cfg.Capture.MaxLogs),
		telemetry.WithLogger(log),
	)

	bindings, manifest := loadProject(cfg.ProjectFile, log)

	registry, err := resources.NewRegistry(bindings, cfg.DataDir, hub,
		resources.WithUpstream(upstreamURL))
	if err != nil {
		return fmt.Errorf("building resource emulators: %w", err)
	}
	defer func() { _ = registry.Close() }()

	apiOpts := []dashboard.Option{
		dashboard.WithLogger(log),
		dashboard.WithRegistry(registry),
		dashboard.WithManifest(manifest),
	}
	if cfg.CORS.Enabled != nil && *cfg.CORS.Enabled {
		apiOpts = append(apiOpts, dashboard.WithCORS(cfg.CORS.AllowOrigins))
	}
	api := dashboard.NewAPI(cfg.Port, hub, apiOpts...)
	api.MarkStarted()

	captureBody := cfg.Capture.CaptureBodies == nil || *cfg.Capture.CaptureBodies
	server := proxy.NewServer(cfg.Port, upstreamURL, hub, captureBody,
		proxy.WithLogger(log),
		proxy.WithDashboard(api.Handler()))

	if err := server.Start(); err != nil {
		return err
	}

	fmt.Printf("edgedeck listening on http://localhost:%d\n", cfg.Port)
	fmt.Printf("  forwarding to %s\n", cfg.UpstreamURL)
	fmt.Printf("  dashboard API at http://localhost:%d%s\n", cfg.Port, proxy.DashboardPrefix)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println("\nShutting down...")
	return server.Stop()
}

// loadServerConfig reads the config file, falling back to defaults when no
// file exists. An explicit path that does not exist is an error.
func loadServerConfig(path string) (*config.ServerConfig, error) {
	if path != "" {
		return config.LoadFromFile(path)
	}
	cfg, err := config.LoadDefault(".")
	if err != nil {
		if errors.Is(err, config.ErrFileNotFound) {
			return config.Default(), nil
		}
		return nil, err
	}
	return cfg, nil
}

// loadProject reads the project file and discovers its bindings. A missing
// project file is not fatal: edgedeck still proxies and captures without any
// emulated resources.
func loadProject(path string, log *slog.Logger) (*project.Bindings, *project.Manifest) {
	cfg, err := project.Load(path)
	if err != nil {
		if errors.Is(err, project.ErrFileNotFound) {
			log.Warn("no project file found, starting without bindings", "path", path)
		} else {
			log.Warn("could not load project file", "path", path, "error", err)
		}
		return project.Discover(nil), nil
	}

	bindings := project.Discover(cfg)
	for _, problem := range project.Validate(bindings) {
		log.Warn("project validation", "problem", problem)
	}
	return bindings, project.BuildManifest(bindings)
}
