// Package config holds all echomap configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all echomap configuration.
type Config struct {
	// Backend connection
	Server ServerConfig `yaml:"server"`

	// Client-local state (identity file, logs)
	StateDir string `yaml:"state_dir"`

	// Map working set
	PageLimit int `yaml:"page_limit"`

	// Feed defaults
	DefaultCity string `yaml:"default_city"`

	// Position used in place of browser geolocation. Zero means no fix,
	// which leaves the reveal sequence inactive.
	Latitude  float64 `yaml:"latitude"`
	Longitude float64 `yaml:"longitude"`

	// Capture directory watcher
	Capture CaptureConfig `yaml:"capture"`

	// Timers driving the interactive UI
	UI UIConfig `yaml:"ui"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the backend endpoint.
type ServerConfig struct {
	URL         string        `yaml:"url"`
	AssetPrefix string        `yaml:"asset_prefix"`
	Timeout     time.Duration `yaml:"timeout"`
}

// CaptureConfig configures the capture-directory uploader.
type CaptureConfig struct {
	Enabled bool   `yaml:"enabled"`
	Dir     string `yaml:"dir"`
}

// UIConfig configures the interactive UI timers and theme.
type UIConfig struct {
	Theme             string        `yaml:"theme"` // auto, light, dark
	TourInterval      time.Duration `yaml:"tour_interval"`
	RevealSettleDelay time.Duration `yaml:"reveal_settle_delay"`
	RevealFlyDuration time.Duration `yaml:"reveal_fly_duration"`
	PlaybackDuration  time.Duration `yaml:"playback_duration"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // empty = <state_dir>/echomap.log in TUI mode
}

// DefaultConfig returns the built-in defaults. The default city matches the
// service's home deployment.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:         "http://localhost:8000",
			AssetPrefix: "/static/uploads/",
			Timeout:     30 * time.Second,
		},
		StateDir:    defaultStateDir(),
		PageLimit:   100,
		DefaultCity: "上海市",
		Capture: CaptureConfig{
			Enabled: false,
			Dir:     "",
		},
		UI: UIConfig{
			Theme:             "auto",
			TourInterval:      6 * time.Second,
			RevealSettleDelay: 1500 * time.Millisecond,
			RevealFlyDuration: 3 * time.Second,
			PlaybackDuration:  30 * time.Second,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func defaultStateDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ".echomap"
	}
	return filepath.Join(base, "echomap")
}

// Load reads a YAML config file over the defaults, then applies environment
// overrides. An empty path yields defaults + env only.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies ECHOMAP_* environment overrides. Environment wins over
// file values so containerized runs can redirect without editing files.
func (c *Config) applyEnv() {
	if v := os.Getenv("ECHOMAP_SERVER"); v != "" {
		c.Server.URL = v
	}
	if v := os.Getenv("ECHOMAP_STATE_DIR"); v != "" {
		c.StateDir = v
	}
	if v := os.Getenv("ECHOMAP_CITY"); v != "" {
		c.DefaultCity = v
	}
}

// Validate checks the invariants the rest of the program relies on.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server.url must not be empty")
	}
	if c.PageLimit <= 0 {
		return fmt.Errorf("page_limit must be positive, got %d", c.PageLimit)
	}
	if c.UI.TourInterval <= 0 {
		return fmt.Errorf("ui.tour_interval must be positive, got %s", c.UI.TourInterval)
	}
	if c.Capture.Enabled && c.Capture.Dir == "" {
		return fmt.Errorf("capture.dir required when capture.enabled is true")
	}
	return nil
}

// LogFile returns the resolved log file path for interactive mode.
func (c *Config) LogFile() string {
	if c.Logging.File != "" {
		return c.Logging.File
	}
	return filepath.Join(c.StateDir, "echomap.log")
}

// IdentityFile returns the path of the persisted guest identity.
func (c *Config) IdentityFile() string {
	return filepath.Join(c.StateDir, "identity")
}
