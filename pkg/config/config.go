package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"vigil/pkg/types"
)

// DefaultPath is where install writes the config and where monitor looks
// for it when --config is not given.
const DefaultPath = "/etc/vigil/config.yaml"

// LogConfig selects log level and sink for the monitor process.
type LogConfig struct {
	Level string `yaml:"level,omitempty"` // debug, info, warn, error
	JSON  bool   `yaml:"json,omitempty"`
	File  string `yaml:"file,omitempty"` // append sink; empty means stderr
}

// MetricsConfig enables the optional metrics endpoint.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"` // e.g. "127.0.0.1:9090"; empty disables
}

// SupervisorConfig tunes loop behavior beyond the service spec timings.
type SupervisorConfig struct {
	// BackoffEnabled doubles the check interval after each failed
	// recovery, capped at BackoffMax, resetting on success.
	BackoffEnabled bool           `yaml:"backoffEnabled,omitempty"`
	BackoffMax     types.Duration `yaml:"backoffMax,omitempty"`

	// MaxConsecutiveFailures, when positive, emits a one-time critical
	// alarm once that many recoveries fail in a row.
	MaxConsecutiveFailures int `yaml:"maxConsecutiveFailures,omitempty"`
}

// Config is the full on-disk configuration for one watchdog instance.
type Config struct {
	Service    types.ServiceSpec `yaml:"service"`
	Log        LogConfig         `yaml:"log,omitempty"`
	Metrics    MetricsConfig     `yaml:"metrics,omitempty"`
	Supervisor SupervisorConfig  `yaml:"supervisor,omitempty"`
}

// Load reads and parses the config file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	cfg.Normalize()
	return &cfg, nil
}

// Save writes the config to disk, creating directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Normalize fills defaults on the service spec and log settings.
func (c *Config) Normalize() {
	c.Service.ApplyDefaults()
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Supervisor.BackoffEnabled && c.Supervisor.BackoffMax == 0 {
		c.Supervisor.BackoffMax = types.Duration(10 * types.DefaultCheckInterval)
	}
}

// Validate checks the loaded config is usable.
func (c *Config) Validate() error {
	if err := c.Service.Validate(); err != nil {
		return fmt.Errorf("service: %w", err)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log level %q not one of debug, info, warn, error", c.Log.Level)
	}
	if c.Supervisor.MaxConsecutiveFailures < 0 {
		return fmt.Errorf("maxConsecutiveFailures must not be negative")
	}
	return nil
}
