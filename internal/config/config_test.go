package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Storage.Keys.Tests != "cquiz_tests_v2" || cfg.Storage.Keys.Results != "cquiz_results_v2" || cfg.Storage.Keys.User != "cquiz_user_v2" {
		t.Fatalf("expected default storage keys, got %+v", cfg.Storage.Keys)
	}
	if cfg.Log.Level != "info" {
		t.Fatalf("expected default log level, got %q", cfg.Log.Level)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
storage:
  keys:
    tests: custom_tests
  redis:
    addr: localhost:6379
dashboard:
  pollInterval: 5s
`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", cfg.Server.Port)
	}
	if cfg.Storage.Keys.Tests != "custom_tests" {
		t.Fatalf("expected overridden tests key, got %q", cfg.Storage.Keys.Tests)
	}
	if cfg.Storage.Keys.Results != "cquiz_results_v2" {
		t.Fatalf("expected default results key kept, got %q", cfg.Storage.Keys.Results)
	}
	if cfg.Dashboard.PollInterval != "5s" {
		t.Fatalf("expected poll interval 5s, got %q", cfg.Dashboard.PollInterval)
	}
}

func TestIntervalDuration(t *testing.T) {
	if d := IntervalDuration("", 3*time.Second); d != 3*time.Second {
		t.Fatalf("expected fallback, got %v", d)
	}
	if d := IntervalDuration("5s", 3*time.Second); d != 5*time.Second {
		t.Fatalf("expected parsed 5s, got %v", d)
	}
	if d := IntervalDuration("bogus", 3*time.Second); d != 3*time.Second {
		t.Fatalf("expected fallback on parse error, got %v", d)
	}
}
