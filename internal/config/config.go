package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ---------------------------------------------------------------------------
// Configuration structs
// ---------------------------------------------------------------------------

// Config is the top-level configuration for nyseclock.
type Config struct {
	Storage  Storage        `yaml:"storage"`
	Server   Server         `yaml:"server"`
	Holidays HolidaysConfig `yaml:"holidays"`
	Session  SessionConfig  `yaml:"session"`
	Logging  Logging        `yaml:"logging"`
}

// Storage holds paths for the transition journal and schedule exports.
type Storage struct {
	DataDir    string `yaml:"data_dir"`
	SQLitePath string `yaml:"sqlite_path"`
}

// Server holds network listener configuration.
type Server struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	GRPCPort int    `yaml:"grpc_port"`
}

// HolidaysConfig selects and tunes the holiday data source.
type HolidaysConfig struct {
	// Source is "nager" (public feed) or "builtin" (offline rules).
	Source  string        `yaml:"source"`
	BaseURL string        `yaml:"base_url"`
	Country string        `yaml:"country"`
	Timeout time.Duration `yaml:"timeout"`
	// RetryAttempts is how often the server retries a failed load at
	// startup before running in weekend-only mode.
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryDelay    time.Duration `yaml:"retry_delay"`
}

// SessionConfig controls status polling and lookahead.
type SessionConfig struct {
	Lookahead    int           `yaml:"lookahead"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// Logging configures the application logger.
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Holiday source names.
const (
	SourceNager   = "nager"
	SourceBuiltin = "builtin"
)

// Default returns a Config with every field set to a usable value.
func Default() *Config {
	return &Config{
		Storage: Storage{
			DataDir:    "data",
			SQLitePath: "data/nyseclock.db",
		},
		Server: Server{
			Host:     "127.0.0.1",
			Port:     8080,
			GRPCPort: 9090,
		},
		Holidays: HolidaysConfig{
			Source:        SourceNager,
			BaseURL:       "https://date.nager.at/api/v3",
			Country:       "US",
			Timeout:       10 * time.Second,
			RetryAttempts: 3,
			RetryDelay:    2 * time.Second,
		},
		Session: SessionConfig{
			Lookahead:    2,
			PollInterval: time.Second,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}

// ---------------------------------------------------------------------------
// Loading
// ---------------------------------------------------------------------------

// Load reads the YAML configuration file at the given path on top of the
// defaults, loads a .env file from the working directory if present, and then
// applies environment variable overrides. A missing config file or .env file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	applyEnvOverrides(cfg)

	return cfg, cfg.Validate()
}

// Validate reports configuration values the program cannot run with.
func (c *Config) Validate() error {
	var errs []string

	switch c.Holidays.Source {
	case SourceNager, SourceBuiltin:
	default:
		errs = append(errs, fmt.Sprintf("holidays.source %q must be %q or %q", c.Holidays.Source, SourceNager, SourceBuiltin))
	}
	if c.Session.Lookahead <= 0 {
		errs = append(errs, "session.lookahead must be positive")
	}
	if c.Session.PollInterval <= 0 {
		errs = append(errs, "session.poll_interval must be positive")
	}
	if c.Server.Port < 0 || c.Server.GRPCPort < 0 {
		errs = append(errs, "server ports must not be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// applyEnvOverrides checks well-known environment variables and overrides the
// corresponding configuration fields when they are set.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("DATA_DIR"); v != "" {
		cfg.Storage.DataDir = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLitePath = v
	}

	if v := os.Getenv("NYSECLOCK_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v, ok := envInt("NYSECLOCK_PORT"); ok {
		cfg.Server.Port = v
	}
	if v, ok := envInt("NYSECLOCK_GRPC_PORT"); ok {
		cfg.Server.GRPCPort = v
	}

	if v := os.Getenv("NYSECLOCK_HOLIDAY_SOURCE"); v != "" {
		cfg.Holidays.Source = strings.ToLower(v)
	}
	if v := os.Getenv("NYSECLOCK_HOLIDAY_URL"); v != "" {
		cfg.Holidays.BaseURL = v
	}
	if v, ok := envDuration("NYSECLOCK_HOLIDAY_TIMEOUT"); ok {
		cfg.Holidays.Timeout = v
	}

	if v, ok := envDuration("NYSECLOCK_POLL_INTERVAL"); ok {
		cfg.Session.PollInterval = v
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Logging.Format = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, false
	}
	return d, true
}
