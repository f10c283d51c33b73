package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 3001 || cfg.Mode != "release" {
		t.Fatalf("port/mode = %d/%s", cfg.Port, cfg.Mode)
	}
	if cfg.GracePeriod != 30*time.Second || cfg.MaxCodeAttempts != 64 || cfg.StrictReorder {
		t.Fatalf("session defaults = %+v", cfg)
	}
	if cfg.Search.Limit != 15 || cfg.Search.Suffix != "karaoke" || cfg.Search.Timeout != 10*time.Second {
		t.Fatalf("search defaults = %+v", cfg.Search)
	}
	if cfg.NATS.URL != "" || cfg.NATS.Subject != "karaoke.sessions" {
		t.Fatalf("nats defaults = %+v", cfg.NATS)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Fatalf("cors = %v", cfg.CORSOrigins)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.test.yaml")
	yaml := `
mode: debug
port: 4000
grace_period: 45s
strict_reorder: true
search:
  limit: 5
nats:
  url: nats://localhost:4222
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("KARAOKE_PORT", "5000")
	t.Setenv("KARAOKE_SEARCH_SUFFIX", "instrumental")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != "debug" || cfg.GracePeriod != 45*time.Second || !cfg.StrictReorder {
		t.Fatalf("file values not applied: %+v", cfg)
	}
	if cfg.Port != 5000 {
		t.Fatalf("env override port = %d", cfg.Port)
	}
	if cfg.Search.Limit != 5 || cfg.Search.Suffix != "instrumental" {
		t.Fatalf("search = %+v", cfg.Search)
	}
	if cfg.NATS.URL != "nats://localhost:4222" {
		t.Fatalf("nats url = %q", cfg.NATS.URL)
	}
}

func TestValidateRejectsBadTimings(t *testing.T) {
	t.Setenv("KARAOKE_PING_PERIOD", "2m")
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("ping_period longer than pong_wait accepted")
	}
}
