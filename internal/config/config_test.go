package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	tmpFile, err := os.CreateTemp(t.TempDir(), "nyseclock-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	if _, err := tmpFile.WriteString(content); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}
	return tmpFile.Name()
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATA_DIR", "SQLITE_PATH", "NYSECLOCK_HOST", "NYSECLOCK_PORT", "NYSECLOCK_GRPC_PORT",
		"NYSECLOCK_HOLIDAY_SOURCE", "NYSECLOCK_HOLIDAY_URL", "NYSECLOCK_HOLIDAY_TIMEOUT",
		"NYSECLOCK_POLL_INTERVAL", "LOG_LEVEL", "LOG_FORMAT",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
storage:
  data_dir: "/tmp/nyseclock/data"
  sqlite_path: "/tmp/nyseclock/nyseclock.db"
server:
  host: "0.0.0.0"
  port: 8181
  grpc_port: 9191
holidays:
  source: "builtin"
  country: "US"
  timeout: 5s
  retry_attempts: 2
session:
  lookahead: 3
  poll_interval: 500ms
logging:
  level: "debug"
  format: "text"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/nyseclock/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/nyseclock/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/nyseclock/nyseclock.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/nyseclock/nyseclock.db")
	}

	// -- Server --
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8181)
	}
	if cfg.Server.GRPCPort != 9191 {
		t.Errorf("Server.GRPCPort = %d, want %d", cfg.Server.GRPCPort, 9191)
	}

	// -- Holidays --
	if cfg.Holidays.Source != SourceBuiltin {
		t.Errorf("Holidays.Source = %q, want %q", cfg.Holidays.Source, SourceBuiltin)
	}
	if cfg.Holidays.Timeout != 5*time.Second {
		t.Errorf("Holidays.Timeout = %v, want %v", cfg.Holidays.Timeout, 5*time.Second)
	}
	if cfg.Holidays.RetryAttempts != 2 {
		t.Errorf("Holidays.RetryAttempts = %d, want %d", cfg.Holidays.RetryAttempts, 2)
	}
	// Unset in the file, so the default survives.
	if cfg.Holidays.BaseURL != "https://date.nager.at/api/v3" {
		t.Errorf("Holidays.BaseURL = %q, want default", cfg.Holidays.BaseURL)
	}

	// -- Session --
	if cfg.Session.Lookahead != 3 {
		t.Errorf("Session.Lookahead = %d, want %d", cfg.Session.Lookahead, 3)
	}
	if cfg.Session.PollInterval != 500*time.Millisecond {
		t.Errorf("Session.PollInterval = %v, want %v", cfg.Session.PollInterval, 500*time.Millisecond)
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}
	def := Default()
	if cfg.Holidays.Source != def.Holidays.Source {
		t.Errorf("Holidays.Source = %q, want %q", cfg.Holidays.Source, def.Holidays.Source)
	}
	if cfg.Session.Lookahead != 2 {
		t.Errorf("Session.Lookahead = %d, want %d", cfg.Session.Lookahead, 2)
	}
	if cfg.Session.PollInterval != time.Second {
		t.Errorf("Session.PollInterval = %v, want %v", cfg.Session.PollInterval, time.Second)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 8080
holidays:
  source: "nager"
storage:
  data_dir: "/original/data"
`)

	t.Setenv("NYSECLOCK_PORT", "9999")
	t.Setenv("NYSECLOCK_HOLIDAY_SOURCE", "BUILTIN")
	t.Setenv("DATA_DIR", "/env/data")
	t.Setenv("NYSECLOCK_POLL_INTERVAL", "250ms")
	t.Setenv("NYSECLOCK_GRPC_PORT", "not-a-number")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Server.Port != 9999 {
		t.Errorf("Server.Port = %d, want %d (env override)", cfg.Server.Port, 9999)
	}
	if cfg.Server.GRPCPort != 9090 {
		t.Errorf("Server.GRPCPort = %d, want %d (invalid env ignored)", cfg.Server.GRPCPort, 9090)
	}
	if cfg.Holidays.Source != SourceBuiltin {
		t.Errorf("Holidays.Source = %q, want %q (env override)", cfg.Holidays.Source, SourceBuiltin)
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Session.PollInterval != 250*time.Millisecond {
		t.Errorf("Session.PollInterval = %v, want %v (env override)", cfg.Session.PollInterval, 250*time.Millisecond)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
holidays:
  source: "alpaca"
session:
  lookahead: 0
`)

	if _, err := Load(path); err == nil {
		t.Fatal("Load() accepted an unknown holiday source and zero lookahead")
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	// godotenv never overrides a variable that is already set, even to "".
	os.Unsetenv("NYSECLOCK_PORT")

	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NYSECLOCK_PORT=7070\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	cfg, err := Load(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070 from .env", cfg.Server.Port)
	}
}

func TestLoadMalformedDotEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("NYSECLOCK_HOST=\"unterminated\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	if _, err := Load(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("Load should fail on a malformed .env file")
	}
}
