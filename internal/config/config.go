package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"folengine/internal/logging"

	"gopkg.in/yaml.v3"
)

// Config holds all folengine configuration.
type Config struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Engine selects the default back-end for prove/find-model calls when
	// the caller does not name one explicitly: "auto", "prolog", "sat",
	// "smt", or "asp".
	Engine EngineConfig `yaml:"engine"`

	// Session controls the in-memory knowledge-base session manager.
	Session SessionConfig `yaml:"session"`

	Logging LoggingConfig `yaml:"logging"`
}

// EngineConfig holds resource limits shared by every reasoning back-end.
type EngineConfig struct {
	Default       string `yaml:"default"`         // auto, prolog, sat, smt, asp
	Strategy      string `yaml:"strategy"`        // fast, balanced, iterative
	MaxInferences int    `yaml:"max_inferences"`  // default 5000, high-power mode 100000
	MaxSeconds    string `yaml:"max_seconds"`     // wall-clock timeout per call
	MaxDomainSize int    `yaml:"max_domain_size"` // finite model finder upper bound
	SATThreshold  int    `yaml:"sat_threshold"`   // model-finder domain size at/above which SAT-assisted search engages
}

// SessionConfig controls the session manager's lifecycle and cap.
type SessionConfig struct {
	TTL         string `yaml:"ttl"`          // idle eviction window, e.g. "30m"
	MaxSessions int    `yaml:"max_sessions"` // hard cap on concurrently live sessions
	SweepEvery  string `yaml:"sweep_every"`  // eviction sweeper period, e.g. "60s"
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "folengine",
		Version: "0.1.0",

		Engine: EngineConfig{
			Default:       "auto",
			Strategy:      "balanced",
			MaxInferences: 5000,
			MaxSeconds:    "10s",
			MaxDomainSize: 8,
			SATThreshold:  500,
		},

		Session: SessionConfig{
			TTL:         "30m",
			MaxSessions: 1000,
			SweepEvery:  "60s",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "folengine.log",
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults with
// environment overrides applied when the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	logging.BootDebug("loading config from: %s", path)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logging.Boot("config file not found, using defaults: %s", path)
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		logging.BootError("failed to read config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		logging.BootError("failed to parse config file %s: %v", path, err)
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	logging.Boot("config loaded: engine=%s strategy=%s", cfg.Engine.Default, cfg.Engine.Strategy)
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("FOLENGINE_ENGINE"); v != "" {
		c.Engine.Default = v
	}
	if v := os.Getenv("FOLENGINE_STRATEGY"); v != "" {
		c.Engine.Strategy = v
	}
	if v := os.Getenv("FOLENGINE_MAX_SESSIONS"); v != "" {
		if n, err := parsePositiveInt(v); err == nil {
			c.Session.MaxSessions = n
		}
	}
	if v := os.Getenv("FOLENGINE_SESSION_TTL"); v != "" {
		c.Session.TTL = v
	}
}

func parsePositiveInt(s string) (int, error) {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid positive int %q", s)
	}
	return n, nil
}

// MaxInferenceCount returns the configured inference ceiling, or 5000 when
// none is set. The strategy setting does not affect the value.
func (c *Config) MaxInferenceCount() int {
	if c.Engine.MaxInferences <= 0 {
		return 5000
	}
	return c.Engine.MaxInferences
}

// GetMaxDuration returns the per-call wall-clock timeout as a duration.
func (c *Config) GetMaxDuration() time.Duration {
	d, err := time.ParseDuration(c.Engine.MaxSeconds)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetSessionTTL returns the session idle TTL as a duration.
func (c *Config) GetSessionTTL() time.Duration {
	d, err := time.ParseDuration(c.Session.TTL)
	if err != nil {
		return 30 * time.Minute
	}
	return d
}

// GetSweepInterval returns the session-sweeper period as a duration.
func (c *Config) GetSweepInterval() time.Duration {
	d, err := time.ParseDuration(c.Session.SweepEvery)
	if err != nil {
		return 60 * time.Second
	}
	return d
}

// MaxSessionCount returns the configured session cap.
func (c *Config) MaxSessionCount() int {
	if c.Session.MaxSessions <= 0 {
		return 1000
	}
	return c.Session.MaxSessions
}

// Validate checks the configuration for internally inconsistent values.
func (c *Config) Validate() error {
	validEngines := map[string]bool{"auto": true, "prolog": true, "sat": true, "smt": true, "asp": true}
	if !validEngines[c.Engine.Default] {
		return fmt.Errorf("invalid default engine: %s", c.Engine.Default)
	}
	if c.Engine.MaxDomainSize <= 0 {
		return fmt.Errorf("max_domain_size must be positive")
	}
	return nil
}
