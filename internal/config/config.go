// Package config loads YAML configuration for the diff view.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"gopkg.in/yaml.v3"

	"github.com/tarkah/diffview/internal/entry"
)

// Config holds the user-facing options.
type Config struct {
	// DefaultLayout selects the layout for non-conflicted entries:
	// "two_way" or "merge".
	DefaultLayout string `yaml:"default_layout"`

	// Include limits scanned paths to these globs. Empty means all.
	Include []string `yaml:"include"`

	// Exclude drops scanned paths matching these globs.
	Exclude []string `yaml:"exclude"`

	Watch WatchConfig `yaml:"watch"`
}

// WatchConfig tunes the index watcher.
type WatchConfig struct {
	Enabled    bool `yaml:"enabled"`
	DebounceMs int  `yaml:"debounce_ms"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DefaultLayout: "two_way",
		Watch:         WatchConfig{Enabled: true, DebounceMs: 200},
	}
}

// Load reads a YAML config file, filling unset fields with defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DefaultLayout != "two_way" && cfg.DefaultLayout != "merge" {
		return nil, fmt.Errorf("unknown default_layout %q", cfg.DefaultLayout)
	}

	return cfg, nil
}

// LayoutKind returns the configured default layout kind.
func (c *Config) LayoutKind() entry.LayoutKind {
	if c.DefaultLayout == "merge" {
		return entry.KindFourWay
	}
	return entry.KindTwoWay
}

// Debounce returns the watcher debounce interval.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}

// MatchPath reports whether a repository-relative path passes the
// include/exclude globs. Patterns that fail to parse are skipped.
func (c *Config) MatchPath(path string) bool {
	for _, pattern := range c.Exclude {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return false
		}
	}

	if len(c.Include) == 0 {
		return true
	}
	for _, pattern := range c.Include {
		if ok, err := doublestar.Match(pattern, path); err == nil && ok {
			return true
		}
	}
	return false
}
