package config

import (
	stderrors "errors"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"

	"github.com/vango-dev/ripple/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "ripple.toml"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "RIPPLE_"

	// DefaultAddr is the default address of `ripple serve`.
	DefaultAddr = "localhost:8080"

	// DefaultTickInterval is the default interval of the served counter.
	DefaultTickInterval = time.Second

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "ripple"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "ripple/hook"
)

// Config is the complete ripple.toml configuration.
type Config struct {
	// LogLevel is a slog level name: debug, info, warn or error.
	LogLevel string `toml:"log_level" env:"LOG_LEVEL"`

	// Metrics configures the Prometheus collector.
	Metrics MetricsConfig `toml:"metrics" envPrefix:"METRICS_"`

	// Serve configures `ripple serve`.
	Serve ServeConfig `toml:"serve" envPrefix:"SERVE_"`

	// Tracing configures render spans.
	Tracing TracingConfig `toml:"tracing" envPrefix:"TRACING_"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig configures the Prometheus collector.
type MetricsConfig struct {
	Enabled   bool   `toml:"enabled" env:"ENABLED"`
	Namespace string `toml:"namespace" env:"NAMESPACE"`
}

// ServeConfig configures `ripple serve`.
type ServeConfig struct {
	Addr         string        `toml:"addr" env:"ADDR"`
	TickInterval time.Duration `toml:"tick_interval" env:"TICK_INTERVAL"`
}

// TracingConfig configures render spans.
type TracingConfig struct {
	TracerName string `toml:"tracer_name" env:"TRACER_NAME"`
}

// New creates a Config with default values.
func New() *Config {
	return &Config{
		LogLevel: "info",
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Serve: ServeConfig{
			Addr:         DefaultAddr,
			TickInterval: DefaultTickInterval,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads ripple.toml from dir if it exists, applies environment
// overrides and validates the result. A missing file is not an error.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.New("R007").WithLocation(path, 0, 0).Wrap(err)
		}
		cfg := New()
		return cfg, cfg.finish()
	}
	return LoadFile(path)
}

// LoadFile reads the given file, applies environment overrides and
// validates the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("R007").WithLocation(path, 0, 0).Wrap(err)
	}

	cfg := New()
	meta, err := toml.Decode(string(data), cfg)
	if err != nil {
		re := errors.New("R001").Wrap(err).WithLocation(path, 0, 0)
		var perr toml.ParseError
		if stderrors.As(err, &perr) {
			re.WithLocation(path, perr.Position.Line, 0)
		}
		return nil, re.WithSuggestion("Check that " + ConfigFileName + " is valid TOML")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return nil, errors.New("R001").
			WithLocation(path, 0, 0).
			WithField(undecoded[0].String()).
			WithDetail("The config file contains a key ripple does not know.").
			WithSuggestion("Remove the key or check its spelling")
	}

	cfg.configPath = path
	return cfg, cfg.finish()
}

func (c *Config) finish() error {
	if err := c.ApplyEnv(); err != nil {
		return err
	}
	return c.Validate()
}

// ApplyEnv overrides fields from RIPPLE_* environment variables.
func (c *Config) ApplyEnv() error {
	if err := env.ParseWithOptions(c, env.Options{Prefix: EnvPrefix}); err != nil {
		return errors.New("R005").Wrap(err)
	}
	return nil
}

// Validate checks that every field holds a usable value.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return c.fieldError("R002", "log_level", err).
			WithSuggestion(`Use one of "debug", "info", "warn" or "error"`)
	}
	if _, _, err := net.SplitHostPort(c.Serve.Addr); err != nil {
		return c.fieldError("R003", "serve.addr", err).
			WithSuggestion(`Use a host:port pair such as "localhost:8080" or ":8080"`)
	}
	if c.Serve.TickInterval <= 0 {
		return c.fieldError("R004", "serve.tick_interval", nil)
	}
	if !validNamespace(c.Metrics.Namespace) {
		return c.fieldError("R006", "metrics.namespace", nil)
	}
	return nil
}

func (c *Config) fieldError(code, field string, cause error) *errors.RippleError {
	err := errors.New(code).WithField(field)
	if cause != nil {
		err.Wrap(cause)
	}
	if c.configPath != "" {
		err.WithLocation(c.configPath, 0, 0)
	}
	return err
}

// Path returns the path where the config was loaded from, or "" when no
// file was found.
func (c *Config) Path() string {
	return c.configPath
}

// Level returns the configured slog level. Call it only on a validated
// config.
func (c *Config) Level() slog.Level {
	level, _ := ParseLevel(c.LogLevel)
	return level
}

// WriteTOML encodes the config as TOML.
func (c *Config) WriteTOML(w io.Writer) error {
	enc := toml.NewEncoder(w)
	return enc.Encode(c)
}

// ParseLevel parses a slog level name, case-insensitively.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(strings.TrimSpace(s)))
	return level, err
}

// validNamespace reports whether s is a valid Prometheus name prefix.
// An empty namespace is allowed.
func validNamespace(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
