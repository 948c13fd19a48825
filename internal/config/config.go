// Package config loads the daemon's YAML configuration. A missing file
// means defaults; a present but unreadable or invalid file is an error,
// so a typo never silently reverts the user to defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that unmarshals from YAML strings like
// "90s" or "3m".
type Duration time.Duration

// UnmarshalYAML parses a Go duration string.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML renders the duration back as a string.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Std returns the underlying time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the full daemon configuration.
type Config struct {
	// DatabasePath is the primary SQLite database file.
	DatabasePath string `yaml:"database_path"`

	// FallbackPath is the JSON file used when SQLite is unavailable.
	FallbackPath string `yaml:"fallback_path"`

	// TickInterval is how often task state is re-evaluated.
	TickInterval Duration `yaml:"tick_interval"`

	// RefreshInterval is how often the day's task list is refetched from
	// the store, picking up edits made by other processes.
	RefreshInterval Duration `yaml:"refresh_interval"`

	// RolloverPoll is how often the date is checked for a day change.
	RolloverPoll Duration `yaml:"rollover_poll"`

	// Grace widens the start boundary: a task becomes startable this
	// long before its scheduled start. Zero means exact boundaries.
	Grace Duration `yaml:"grace"`

	// Notifications controls reminder delivery.
	Notifications Notifications `yaml:"notifications"`

	// Quote configures the motivational text source.
	Quote Quote `yaml:"quote"`
}

// Notifications controls reminder delivery.
type Notifications struct {
	// Enabled turns reminder delivery on or off entirely.
	Enabled bool `yaml:"enabled"`

	// Cooldown is the minimum gap between reminders for one milestone.
	Cooldown Duration `yaml:"cooldown"`
}

// Quote configures the text-generation collaborator.
type Quote struct {
	// Endpoint is the generateContent URL. Empty means the hosted default.
	Endpoint string `yaml:"endpoint,omitempty"`

	// APIKeyEnv names the environment variable holding the API key.
	// An unset variable disables generation; notifications then carry
	// static text.
	APIKeyEnv string `yaml:"api_key_env"`

	// Timeout bounds a single generation call.
	Timeout Duration `yaml:"timeout"`

	// CacheTTL is how long one generated line is reused.
	CacheTTL Duration `yaml:"cache_ttl"`

	// QuotaCooldown is how long generation is suspended after a 429.
	QuotaCooldown Duration `yaml:"quota_cooldown"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	dir := defaultDir()
	return Config{
		DatabasePath:    filepath.Join(dir, "tasks.db"),
		FallbackPath:    filepath.Join(dir, "tasks.json"),
		TickInterval:    Duration(time.Second),
		RefreshInterval: Duration(5 * time.Second),
		RolloverPoll:    Duration(time.Minute),
		Grace:           0,
		Notifications: Notifications{
			Enabled:  true,
			Cooldown: Duration(3 * time.Minute),
		},
		Quote: Quote{
			APIKeyEnv:     "GEMINI_API_KEY",
			Timeout:       Duration(2 * time.Second),
			CacheTTL:      Duration(10 * time.Minute),
			QuotaCooldown: Duration(5 * time.Minute),
		},
	}
}

// DefaultPath returns the conventional config file location.
func DefaultPath() string {
	return filepath.Join(defaultDir(), "config.yaml")
}

func defaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".timetable"
	}
	return filepath.Join(home, ".timetable")
}

// Load reads the config file at path. A missing file yields Default().
// Unknown fields are rejected so typos surface instead of being ignored.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := validate(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func validate(cfg Config) error {
	if cfg.DatabasePath == "" {
		return fmt.Errorf("database_path is required")
	}
	if cfg.FallbackPath == "" {
		return fmt.Errorf("fallback_path is required")
	}
	for name, d := range map[string]Duration{
		"tick_interval":    cfg.TickInterval,
		"refresh_interval": cfg.RefreshInterval,
		"rollover_poll":    cfg.RolloverPoll,
		"quote.timeout":    cfg.Quote.Timeout,
	} {
		if d.Std() <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	if cfg.Grace.Std() < 0 {
		return fmt.Errorf("grace must not be negative")
	}
	if cfg.Notifications.Cooldown.Std() < 0 {
		return fmt.Errorf("notifications.cooldown must not be negative")
	}
	return nil
}

// APIKey resolves the quote API key from the environment. Empty means
// generation is disabled.
func (q Quote) APIKey() string {
	if q.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(q.APIKeyEnv)
}
