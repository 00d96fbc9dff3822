package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv overrides the configuration file location.
const PathEnv = "RSIASSIST_CONFIG"

// Config represents the runtime configuration shared by the client and timerd.
type Config struct {
	Remote    RemoteConfig    `yaml:"remote"`
	Store     StoreConfig     `yaml:"store"`
	Simulator SimulatorConfig `yaml:"simulator"`
}

// RemoteConfig holds the timer service client settings.
type RemoteConfig struct {
	BaseURL         string        `yaml:"base_url"`
	TimeoutSeconds  int           `yaml:"timeout_seconds"`
	Timeout         time.Duration `yaml:"-"`
	RateLimitPerSec float64       `yaml:"rate_limit_per_sec"`
	Burst           int           `yaml:"burst"`
	StatsTTLSeconds int           `yaml:"stats_ttl_seconds"`
	StatsTTL        time.Duration `yaml:"-"`
}

// StoreConfig locates the local settings document.
type StoreConfig struct {
	Dir string `yaml:"dir"`
}

// SimulatorConfig holds the reference timer service settings.
type SimulatorConfig struct {
	Port                 int           `yaml:"port"`
	IdleThresholdSeconds int           `yaml:"idle_threshold_seconds"`
	IdleThreshold        time.Duration `yaml:"-"`
	DatabasePath         string        `yaml:"database_path"`
	RateLimitPerSec      float64       `yaml:"rate_limit_per_sec"`
	Burst                int           `yaml:"burst"`
}

// DefaultPath returns the configuration file location, honouring RSIASSIST_CONFIG.
func DefaultPath() string {
	if path := os.Getenv(PathEnv); path != "" {
		return path
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "rsiassist.yaml"
	}
	return filepath.Join(dir, "RSIAssist", "rsiassist.yaml")
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads the configuration from the given path. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	var cfg Config
	f, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("open config: %w", err)
	default:
		defer f.Close()
		decoder := yaml.NewDecoder(f)
		if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Remote.BaseURL == "" {
		cfg.Remote.BaseURL = "http://127.0.0.1:7878"
	}
	if cfg.Remote.TimeoutSeconds <= 0 {
		cfg.Remote.TimeoutSeconds = 5
	}
	cfg.Remote.Timeout = time.Duration(cfg.Remote.TimeoutSeconds) * time.Second
	if cfg.Remote.RateLimitPerSec <= 0 {
		cfg.Remote.RateLimitPerSec = 20
	}
	if cfg.Remote.Burst <= 0 {
		cfg.Remote.Burst = 10
	}
	if cfg.Remote.StatsTTLSeconds <= 0 {
		cfg.Remote.StatsTTLSeconds = 30
	}
	cfg.Remote.StatsTTL = time.Duration(cfg.Remote.StatsTTLSeconds) * time.Second

	if cfg.Store.Dir == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			cfg.Store.Dir = filepath.Join(dir, "RSIAssist")
		} else {
			cfg.Store.Dir = "."
		}
	}

	if cfg.Simulator.Port <= 0 {
		cfg.Simulator.Port = 7878
	}
	if cfg.Simulator.IdleThresholdSeconds <= 0 {
		cfg.Simulator.IdleThresholdSeconds = 5
	}
	cfg.Simulator.IdleThreshold = time.Duration(cfg.Simulator.IdleThresholdSeconds) * time.Second
	if cfg.Simulator.DatabasePath == "" {
		cfg.Simulator.DatabasePath = "timerd.db"
	}
	if cfg.Simulator.RateLimitPerSec <= 0 {
		cfg.Simulator.RateLimitPerSec = 50
	}
	if cfg.Simulator.Burst <= 0 {
		cfg.Simulator.Burst = 25
	}
}

// ListenAddr is the simulator's HTTP listen address.
func (simulator SimulatorConfig) ListenAddr() string {
	return fmt.Sprintf("127.0.0.1:%d", simulator.Port)
}
