// Package config loads roam configuration.
//
// Settings come from, lowest to highest precedence: built-in defaults, the
// TOML config file, a .env file in the working directory, and the process
// environment. Command-line flags are applied on top by the CLI.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/tessro/roam/internal/api"
	"github.com/tessro/roam/internal/paths"
)

// Environment variables read by Load.
const (
	EnvServer   = "ROAM_SERVER"
	EnvLogLevel = "ROAM_LOG_LEVEL"
)

// Defaults.
const (
	DefaultLogLevel = "info"
	DefaultRPS      = 5.0
	DefaultBurst    = 10
)

// Config is the roam configuration file.
type Config struct {
	// Server is the backend base URL.
	Server string `toml:"server"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log-level"`

	// RequestTimeout bounds every backend request.
	RequestTimeout Duration `toml:"request-timeout"`

	// ConfirmDeletes controls whether deletes ask first. Unset means true.
	ConfirmDeletes *bool `toml:"confirm-deletes"`

	RateLimit RateLimitConfig `toml:"rate-limit"`
	Metrics   MetricsConfig   `toml:"metrics"`
}

// RateLimitConfig throttles requests to the backend.
type RateLimitConfig struct {
	// RPS is requests per second. Zero or negative disables throttling.
	RPS *float64 `toml:"rps"`
	// Burst is the bucket size.
	Burst int `toml:"burst"`
}

// MetricsConfig controls the optional Prometheus listener.
type MetricsConfig struct {
	// Addr is the listen address (e.g. "127.0.0.1:9464"). Empty disables it.
	Addr string `toml:"addr"`
}

// Duration is a time.Duration that decodes from strings like "30s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Load reads the config file at path (a missing file is not an error), then
// applies overrides from the .env file in dotEnvDir and the environment.
// An empty path means paths.ConfigPath().
func Load(path, dotEnvDir string) (*Config, error) {
	if path == "" {
		p, err := paths.ConfigPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	dotenv, err := readDotEnv(dotEnvDir)
	if err != nil {
		return nil, err
	}
	cfg.applyEnv(func(key string) string {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v
		}
		return dotenv[key]
	})
	return cfg, nil
}

// LoadFile decodes the TOML file at path.
// A missing file yields an empty config.
func LoadFile(path string) (*Config, error) {
	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, &ValidationError{
			Field:   undecoded[0].String(),
			Message: "unknown setting",
			Err:     ErrUnknownKey,
		}
	}
	return &cfg, nil
}

// readDotEnv returns the variables in dir/.env, or nil if there is none.
func readDotEnv(dir string) (map[string]string, error) {
	if dir == "" {
		return nil, nil
	}
	vars, err := godotenv.Read(filepath.Join(dir, ".env"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read .env: %w", err)
	}
	return vars, nil
}

func (c *Config) applyEnv(get func(string) string) {
	if v := get(EnvServer); v != "" {
		c.Server = v
	}
	if v := get(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
}

// GetServer returns the configured backend URL or the default.
func (c *Config) GetServer() string {
	if c != nil && c.Server != "" {
		return c.Server
	}
	return api.DefaultBaseURL
}

// GetLogLevel returns the configured log level or the default.
func (c *Config) GetLogLevel() string {
	if c != nil && c.LogLevel != "" {
		return c.LogLevel
	}
	return DefaultLogLevel
}

// GetRequestTimeout returns the configured request timeout or the default.
func (c *Config) GetRequestTimeout() time.Duration {
	if c != nil && c.RequestTimeout.Duration > 0 {
		return c.RequestTimeout.Duration
	}
	return api.DefaultTimeout
}

// GetConfirmDeletes reports whether deletes must be confirmed.
func (c *Config) GetConfirmDeletes() bool {
	if c != nil && c.ConfirmDeletes != nil {
		return *c.ConfirmDeletes
	}
	return true
}

// GetRateLimit returns the request rate and burst. A rate of zero means
// throttling is disabled.
func (c *Config) GetRateLimit() (rps float64, burst int) {
	rps, burst = DefaultRPS, DefaultBurst
	if c == nil {
		return rps, burst
	}
	if c.RateLimit.RPS != nil {
		rps = *c.RateLimit.RPS
		if rps < 0 {
			rps = 0
		}
	}
	if c.RateLimit.Burst > 0 {
		burst = c.RateLimit.Burst
	}
	return rps, burst
}

// GetMetricsAddr returns the metrics listen address, or "" if disabled.
func (c *Config) GetMetricsAddr() string {
	if c == nil {
		return ""
	}
	return c.Metrics.Addr
}

// ClientOptions builds API client options from the config.
func (c *Config) ClientOptions(rec api.Recorder) *api.Options {
	rps, burst := c.GetRateLimit()
	return &api.Options{
		Timeout:  c.GetRequestTimeout(),
		RPS:      rps,
		Burst:    burst,
		Recorder: rec,
	}
}
