package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Server.HTTPPort != 8080 {
		t.Fatalf("expected default http port 8080, got %d", cfg.Server.HTTPPort)
	}
	if cfg.Dispatch.EmailLimit != 50 {
		t.Fatalf("expected default email limit 50, got %d", cfg.Dispatch.EmailLimit)
	}
	if cfg.Dispatch.PollInterval != time.Minute {
		t.Fatalf("expected default poll interval 1m, got %s", cfg.Dispatch.PollInterval)
	}
	if cfg.Dispatch.LockTTL != 5*time.Minute {
		t.Fatalf("expected default lock ttl 5m, got %s", cfg.Dispatch.LockTTL)
	}
	if cfg.Auth.TokenTTL != 24*time.Hour {
		t.Fatalf("expected default token ttl 24h, got %s", cfg.Auth.TokenTTL)
	}
	if cfg.Scraper.BaseURL == "" {
		t.Fatal("expected default scraper base url")
	}
}

func TestScraperEnabled(t *testing.T) {
	cfg := &ScraperConfig{}
	if cfg.Enabled() {
		t.Fatal("scraper must be disabled without an api token")
	}
	cfg.APIToken = "token"
	if !cfg.Enabled() {
		t.Fatal("scraper must be enabled with an api token")
	}
}

func TestDatabaseDSN(t *testing.T) {
	cfg := &DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		User:     "leadforge",
		Password: "secret",
		Database: "leadforge",
		SSLMode:  "require",
	}
	want := "host=db.internal port=5432 user=leadforge password=secret dbname=leadforge sslmode=require"
	if got := cfg.DSN(); got != want {
		t.Fatalf("DSN() = %q, want %q", got, want)
	}
}
