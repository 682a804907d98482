package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadParsesSectionsAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
server:
  port: "9090"
  public_origin: https://quiz.example
quiz:
  ttl: 2m
  statistics_ttl: 15s
auth:
  tokens:
    dev: u1
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "9090" || cfg.Server.PublicOrigin != "https://quiz.example" {
		t.Fatalf("unexpected server section %+v", cfg.Server)
	}
	if cfg.Auth.Tokens["dev"] != "u1" {
		t.Fatalf("expected dev token, got %v", cfg.Auth.Tokens)
	}
	if cfg.Postgres.URL != "postgres://env" {
		t.Fatalf("expected env override, got %q", cfg.Postgres.URL)
	}
	if got := TTLDuration(cfg.Quiz.StatisticsTTL, time.Minute); got != 15*time.Second {
		t.Fatalf("expected 15s, got %s", got)
	}
}

func TestTTLDurationFallback(t *testing.T) {
	if got := TTLDuration("", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for empty, got %s", got)
	}
	if got := TTLDuration("soon", time.Minute); got != time.Minute {
		t.Fatalf("expected fallback for invalid, got %s", got)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
