package config_test

import (
	"testing"

	"github.com/Dicode-Tech/dicode-app-jobseeker/internal/config"
)

func TestLoad_RequiresDatabaseURL(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	if _, err := config.Load(); err == nil {
		t.Error("Load without DATABASE_URL should fail")
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")
	t.Setenv("PORT", "")
	t.Setenv("ADZUNA_COUNTRY", "")
	t.Setenv("SCRAPE_INTERVAL_HOURS", "")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.AdzunaCountry != "es" {
		t.Errorf("AdzunaCountry = %q, want es", cfg.AdzunaCountry)
	}
	if cfg.ScrapeIntervalHours != 6 {
		t.Errorf("ScrapeIntervalHours = %d, want 6", cfg.ScrapeIntervalHours)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
}

func TestLoad_InvalidInterval(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/jobs")

	for _, bad := range []string{"zero", "0", "-3"} {
		t.Setenv("SCRAPE_INTERVAL_HOURS", bad)
		if _, err := config.Load(); err == nil {
			t.Errorf("Load with SCRAPE_INTERVAL_HOURS=%q should fail", bad)
		}
	}
}
