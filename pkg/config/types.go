package config

// Default server settings.
const (
	DefaultPort        = 8788
	DefaultUpstreamURL = "http://localhost:8787"
	DefaultDataDir     = ".edgedeck"
	DefaultProjectFile = "edge.toml"

	DefaultMaxRequests = 500
	DefaultMaxLogs     = 1000
	DefaultMaxBodySize = 100 * 1024
)

// ServerConfig is the top-level edgedeck configuration.
type ServerConfig struct {
	// Port is the port the proxy server listens on.
	Port int `json:"port,omitempty" yaml:"port,omitempty"`
	// Host is the interface to bind. Empty binds all interfaces.
	Host string `json:"host,omitempty" yaml:"host,omitempty"`
	// UpstreamURL is the local worker runtime requests are forwarded to.
	UpstreamURL string `json:"upstreamUrl,omitempty" yaml:"upstreamUrl,omitempty"`
	// DataDir holds persisted resource state (database files, bucket objects).
	DataDir string `json:"dataDir,omitempty" yaml:"dataDir,omitempty"`
	// ProjectFile is the path to the project's edge.toml.
	ProjectFile string `json:"projectFile,omitempty" yaml:"projectFile,omitempty"`

	// Capture configures request/log capture limits.
	Capture *CaptureConfig `json:"capture,omitempty" yaml:"capture,omitempty"`
	// CORS configures cross-origin access to the dashboard API.
	CORS *CORSConfig `json:"cors,omitempty" yaml:"cors,omitempty"`
	// Logging configures structured log output.
	Logging *LoggingConfig `json:"logging,omitempty" yaml:"logging,omitempty"`
}

// CaptureConfig bounds the in-memory telemetry buffers.
type CaptureConfig struct {
	// Enabled turns request capture on. Default: true.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// CaptureBodies records request/response bodies. Default: true.
	CaptureBodies *bool `json:"captureBodies,omitempty" yaml:"captureBodies,omitempty"`
	// MaxRequests is the request ring capacity. Default: 500.
	MaxRequests int `json:"maxRequests,omitempty" yaml:"maxRequests,omitempty"`
	// MaxLogs is the log ring capacity. Default: 1000.
	MaxLogs int `json:"maxLogs,omitempty" yaml:"maxLogs,omitempty"`
	// MaxBodySize is the largest body stored verbatim, in bytes. Default: 100KiB.
	MaxBodySize int `json:"maxBodySize,omitempty" yaml:"maxBodySize,omitempty"`
}

// CORSConfig defines cross-origin settings for the dashboard API.
type CORSConfig struct {
	// Enabled enables CORS headers. Default: true for local development.
	Enabled *bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// AllowOrigins lists allowed origins. Empty allows any origin, which is
	// acceptable for a localhost-only tool.
	AllowOrigins []string `json:"allowOrigins,omitempty" yaml:"allowOrigins,omitempty"`
}

// LoggingConfig defines structured logging settings.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error. Default: info.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is "text" or "json". Default: text.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// Default returns a ServerConfig with every field set to its default.
func Default() *ServerConfig {
	enabled := true
	captureBodies := true
	return &ServerConfig{
		Port:        DefaultPort,
		UpstreamURL: DefaultUpstreamURL,
		DataDir:     DefaultDataDir,
		ProjectFile: DefaultProjectFile,
		Capture: &CaptureConfig{
			Enabled:       &enabled,
			CaptureBodies: &captureBodies,
			MaxRequests:   DefaultMaxRequests,
			MaxLogs:       DefaultMaxLogs,
			MaxBodySize:   DefaultMaxBodySize,
		},
		CORS: &CORSConfig{
			Enabled: &enabled,
		},
		Logging: &LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyDefaults fills zero-valued fields in cfg from Default. Explicit values
// are never overwritten.
func ApplyDefaults(cfg *ServerConfig) {
	def := Default()
	if cfg.Port == 0 {
		cfg.Port = def.Port
	}
	if cfg.UpstreamURL == "" {
		cfg.UpstreamURL = def.UpstreamURL
	}
	if cfg.DataDir == "" {
		cfg.DataDir = def.DataDir
	}
	if cfg.ProjectFile == "" {
		cfg.ProjectFile = def.ProjectFile
	}
	if cfg.Capture == nil {
		cfg.Capture = def.Capture
	} else {
		if cfg.Capture.Enabled == nil {
			cfg.Capture.Enabled = def.Capture.Enabled
		}
		if cfg.Capture.CaptureBodies == nil {
			cfg.Capture.CaptureBodies = def.Capture.CaptureBodies
		}
		if cfg.Capture.MaxRequests <= 0 {
			cfg.Capture.MaxRequests = def.Capture.MaxRequests
		}
		if cfg.Capture.MaxLogs <= 0 {
			cfg.Capture.MaxLogs = def.Capture.MaxLogs
		}
		if cfg.Capture.MaxBodySize <= 0 {
			cfg.Capture.MaxBodySize = def.Capture.MaxBodySize
		}
	}
	if cfg.CORS == nil {
		cfg.CORS = def.CORS
	} else if cfg.CORS.Enabled == nil {
		cfg.CORS.Enabled = def.CORS.Enabled
	}
	if cfg.Logging == nil {
		cfg.Logging = def.Logging
	} else {
		if cfg.Logging.Level == "" {
			cfg.Logging.Level = def.Logging.Level
		}
		if cfg.Logging.Format == "" {
			cfg.Logging.Format = def.Logging.Format
		}
	}
}
