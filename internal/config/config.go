// Package config loads the pogocal YAML configuration. Every option has a
// default; a missing config file is generated on first load so a fresh
// install works without any setup.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"pogocal/internal/event"
)

// Reminder is a single calendar reminder override.
type Reminder struct {
	// Method is the reminder delivery method, e.g. "popup".
	Method string `yaml:"method"`
	// Minutes is how many minutes before the event start to fire.
	Minutes int `yaml:"minutes"`
}

// Config is the top-level application configuration.
type Config struct {
	// SourceURL is the event listing page to scrape.
	SourceURL string `yaml:"source_url"`

	// UserAgent is sent on every outbound HTTP request.
	UserAgent string `yaml:"user_agent"`

	// Timezone is the IANA zone events are scheduled in (e.g.
	// "America/New_York"). Parsed times and timed calendar entries both
	// carry this zone.
	Timezone string `yaml:"timezone"`

	// WindowDays is the forward window, in days, over which existing
	// calendar entries are listed for duplicate matching.
	WindowDays int `yaml:"window_days"`

	// FetchTimeoutSeconds bounds every HTTP fetch.
	FetchTimeoutSeconds int `yaml:"fetch_timeout_seconds"`

	// Reminders are attached to every created calendar entry.
	Reminders []Reminder `yaml:"reminders"`

	// Colors maps an event category to a display color (hex).
	Colors map[string]string `yaml:"colors"`

	// Species is the reference list of names used for title similarity:
	// a species appearing verbatim in two titles marks them as likely the
	// same event.
	Species []string `yaml:"species"`

	// DatabasePath is the SQLite calendar store location.
	DatabasePath string `yaml:"database_path"`

	// LogLevel is one of DEBUG, INFO, WARN, ERROR.
	LogLevel string `yaml:"log_level"`
}

// Default returns the in-memory default configuration.
func Default() *Config {
	return &Config{
		SourceURL:           "https://leekduck.com/events/",
		UserAgent:           "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
		Timezone:            "America/New_York",
		WindowDays:          90,
		FetchTimeoutSeconds: 30,
		Reminders: []Reminder{
			{Method: "popup", Minutes: 60},
			{Method: "popup", Minutes: 10},
		},
		Colors: map[string]string{
			string(event.CategoryRaid):         "#E57373",
			string(event.CategoryCommunityDay): "#81C784",
			string(event.CategorySpotlight):    "#64B5F6",
			string(event.CategoryBattle):       "#FFB74D",
			string(event.CategoryHatchDay):     "#9575CD",
			string(event.CategoryMega):         "#FF8A65",
			string(event.CategoryTicket):       "#4DB6AC",
			string(event.CategoryShadow):       "#9E9E9E",
			string(event.CategoryGeneral):      "#B0BEC5",
		},
		Species: []string{
			"bulbasaur", "charmander", "squirtle", "pikachu", "eevee",
			"dratini", "larvitar", "beldum", "gible", "deino",
			"machop", "gastly", "magikarp", "rhyhorn", "mudkip",
		},
		DatabasePath: "~/.local/share/pogocal/calendar.db",
		LogLevel:     "INFO",
	}
}

// Load reads the config at path, filling unset options from defaults. When
// the file does not exist a default config is written there (0600) and
// returned, so the core never has to handle an absent configuration.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		cfg := Default()
		if werr := Save(path, cfg); werr != nil {
			return nil, fmt.Errorf("writing default config: %w", werr)
		}
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes cfg to path as YAML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

func (c *Config) validate() error {
	if c.SourceURL == "" {
		return fmt.Errorf("config: source_url must not be empty")
	}
	if c.WindowDays <= 0 {
		return fmt.Errorf("config: window_days must be positive, got %d", c.WindowDays)
	}
	if c.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("config: fetch_timeout_seconds must be positive, got %d", c.FetchTimeoutSeconds)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("config: invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location resolves the configured timezone, falling back to UTC for
// hand-built configs that skipped validation.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// FetchTimeout returns the configured per-fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

// ExpandPath expands a leading "~/" in a configured path.
func ExpandPath(path string) (string, error) {
	if len(path) >= 2 && path[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
