package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values for the server configuration.
const (
	DefaultHost        = "0.0.0.0"
	DefaultHTTPPort    = 8050
	DefaultGRPCPort    = 50051
	DefaultLoadTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "json"

	// DefaultSource is the public launch records table the dashboard was built for.
	DefaultSource = "https://cf-courses-data.s3.us.cloud-object-storage.appdomain.cloud/IBM-DS0321EN-SkillsNetwork/datasets/spacex_launch_dash.csv"
)

// Config holds the configuration parsed from the `server:` section of
// config.yaml.
type Config struct {
	Server ServerConfig `yaml:"server"`
}

// ServerConfig holds all server-side settings.
type ServerConfig struct {
	// Host is the interface both listeners bind to (default 0.0.0.0).
	Host string `yaml:"host"`

	// HTTPPort serves the REST API, the WebSocket query channel and /metrics
	// (default 8050).
	HTTPPort int `yaml:"http_port"`

	// GRPCPort serves the gRPC query service. Zero disables it.
	GRPCPort int `yaml:"grpc_port"`

	// UIDir optionally serves pre-built dashboard static files at "/".
	UIDir string `yaml:"ui_dir"`

	Log     LogConfig     `yaml:"log"`
	Dataset DatasetConfig `yaml:"dataset"`
	CORS    CORSConfig    `yaml:"cors"`
}

// LogConfig selects the slog handler and minimum level.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// SlogLevel converts Level to a slog.Level. Unknown values map to Info;
// validate rejects them before they get here.
func (l LogConfig) SlogLevel() slog.Level {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// DatasetConfig locates the launch records table and controls how it is fetched.
type DatasetConfig struct {
	// Source is a local CSV path or an http(s) URL.
	Source string `yaml:"source"`

	// Timeout bounds the remote fetch (default 30s).
	Timeout time.Duration `yaml:"timeout"`

	// InsecureSkipVerify disables TLS verification for remote sources.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`

	// CAFile adds a PEM bundle of trusted roots for remote sources.
	CAFile string `yaml:"ca_file"`
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// HTTPAddr returns host:port for the HTTP listener.
func (s ServerConfig) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.HTTPPort)
}

// GRPCAddr returns host:port for the gRPC listener.
func (s ServerConfig) GRPCAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.GRPCPort)
}

// Load reads and parses the config file at path.
// Missing fields are filled with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("server config: read %q: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes YAML config bytes, applying defaults and validation.
func Parse(data []byte) (*Config, error) {
	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("server config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("server config: %w", err)
	}
	return cfg, nil
}

// Defaults returns a Config pre-populated with default values. It is also
// what the server runs with when no config file exists.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:     DefaultHost,
			HTTPPort: DefaultHTTPPort,
			GRPCPort: DefaultGRPCPort,
			Log: LogConfig{
				Level:  DefaultLogLevel,
				Format: DefaultLogFormat,
			},
			Dataset: DatasetConfig{
				Source:  DefaultSource,
				Timeout: DefaultLoadTimeout,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Server
	if s.HTTPPort <= 0 || s.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", s.HTTPPort)
	}
	if s.GRPCPort < 0 || s.GRPCPort > 65535 {
		return fmt.Errorf("server.grpc_port %d is out of range [0, 65535]", s.GRPCPort)
	}
	if s.GRPCPort != 0 && s.GRPCPort == s.HTTPPort {
		return fmt.Errorf("server.grpc_port and server.http_port are both %d", s.HTTPPort)
	}
	switch strings.ToLower(s.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("server.log.level %q unknown: want debug|info|warn|error", s.Log.Level)
	}
	switch s.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("server.log.format %q unknown: want json|text", s.Log.Format)
	}
	if strings.TrimSpace(s.Dataset.Source) == "" {
		return fmt.Errorf("server.dataset.source is required")
	}
	if s.Dataset.Timeout < 0 {
		return fmt.Errorf("server.dataset.timeout must not be negative")
	}
	return nil
}
