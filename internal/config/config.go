// Package config provides configuration loading and defaults for sigdemo.
//
// Configuration is loaded from a TOML file in the user's data directory and
// layered over [DefaultConfig]. It covers terminal display, signal delivery
// timing, and logging.
package config

// Regenerate config.default.toml at the repo root.
//go:generate go run ../../cmd/genconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"tools.zach/dev/sigdemo/internal/paths"
)

// CurrentVersion is the config schema version written by this build.
const CurrentVersion = 1

// ///////////////////////////////////////////////
// Configuration Types
// ///////////////////////////////////////////////

// Config represents the top-level application configuration.
type Config struct {
	// Version is the config schema version.
	Version int `toml:"version"`
	// Display holds terminal output settings.
	Display DisplayConfig `toml:"display"`
	// Signals holds signal delivery settings.
	Signals SignalsConfig `toml:"signals"`
	// Log holds logging settings.
	Log LogConfig `toml:"log"`
}

// DisplayConfig holds terminal output settings.
type DisplayConfig struct {
	// Color selects ANSI coloring: "auto", "always", or "never".
	Color string `toml:"color"`
	// ShowStatus shows the handler state above the menu.
	ShowStatus bool `toml:"show_status"`
}

// SignalsConfig holds signal delivery settings.
type SignalsConfig struct {
	// DeliveryTimeoutMS is how long a raise waits for the custom handler to run.
	DeliveryTimeoutMS int `toml:"delivery_timeout_ms"`
}

// DeliveryTimeout returns DeliveryTimeoutMS as a duration.
func (s SignalsConfig) DeliveryTimeout() time.Duration {
	return time.Duration(s.DeliveryTimeoutMS) * time.Millisecond
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the minimum log level (trace, debug, info, warn, error).
	Level string `toml:"level"`
	// MaxSizeMB is the maximum log file size in megabytes before rotation.
	MaxSizeMB int `toml:"max_size_mb"`
}

// ///////////////////////////////////////////////
// Default Configuration
// ///////////////////////////////////////////////

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: CurrentVersion,
		Display: DisplayConfig{
			Color:      "auto",
			ShowStatus: true,
		},
		Signals: SignalsConfig{
			DeliveryTimeoutMS: 500,
		},
		Log: LogConfig{
			Level:     "info",
			MaxSizeMB: 5,
		},
	}
}

// ///////////////////////////////////////////////
// Loading and Saving
// ///////////////////////////////////////////////

// Load reads and parses dataDir/config.toml over the defaults.
// If the file doesn't exist, returns DefaultConfig.
func Load(dataDir string) (*Config, error) {
	path := filepath.Join(dataDir, paths.ConfigFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes TOML bytes over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("parse config: unknown keys %s", strings.Join(keys, ", "))
	}
	if cfg.Version == 0 {
		cfg.Version = CurrentVersion
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return cfg, nil
}

// WriteDefault seeds path with data unless a file already exists there.
// It reports whether the file was written.
func WriteDefault(path string, data []byte) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config: %w", err)
	}
	if err := writeAtomic(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}

// writeAtomic writes data to a temp file beside path, syncs it, and renames
// it into place. The temp file is removed on any failure.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := f.Name()
	var success bool
	defer func() {
		if !success {
			os.Remove(tmpName)
		}
	}()

	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpName, perm); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	success = true
	return nil
}

// ///////////////////////////////////////////////
// Validation
// ///////////////////////////////////////////////

// validLogLevels is the set of accepted log level strings.
var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

// Validate checks that all configuration values are within acceptable ranges.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("unsupported version %d: this build reads version %d", c.Version, CurrentVersion)
	}

	switch c.Display.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid display.color %q: must be auto, always, or never", c.Display.Color)
	}

	if c.Signals.DeliveryTimeoutMS <= 0 {
		return fmt.Errorf("signals.delivery_timeout_ms must be > 0, got %d", c.Signals.DeliveryTimeoutMS)
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		return fmt.Errorf("invalid log.level %q: must be trace, debug, info, warn, or error", c.Log.Level)
	}

	if c.Log.MaxSizeMB <= 0 {
		return fmt.Errorf("log.max_size_mb must be > 0, got %d", c.Log.MaxSizeMB)
	}

	return nil
}
