// Package config loads and validates environment variables at startup.
// Fail-fast: if a required variable is missing, the process exits.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the jobseeker backend.
type Config struct {
	Port                string
	DatabaseURL         string
	RedisURL            string // optional; empty disables the listing cache
	AdzunaAppID         string
	AdzunaAppKey        string
	AdzunaCountry       string // e.g. "es", "gb", "us"
	ScrapeIntervalHours int    // how often the cron job fires
	ProfilePath         string // optional YAML user profile override
	LogLevel            string
}

// Load reads environment variables (after a best-effort .env load) and
// returns a validated Config.
func Load() (*Config, error) {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	interval := 6
	if s := os.Getenv("SCRAPE_INTERVAL_HOURS"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return nil, fmt.Errorf("SCRAPE_INTERVAL_HOURS must be a positive integer, got %q", s)
		}
		interval = v
	}

	country := os.Getenv("ADZUNA_COUNTRY")
	if country == "" {
		country = "es"
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}

	return &Config{
		Port:                port,
		DatabaseURL:         dbURL,
		RedisURL:            os.Getenv("REDIS_URL"),
		AdzunaAppID:         os.Getenv("ADZUNA_APP_ID"),
		AdzunaAppKey:        os.Getenv("ADZUNA_APP_KEY"),
		AdzunaCountry:       country,
		ScrapeIntervalHours: interval,
		ProfilePath:         os.Getenv("PROFILE_PATH"),
		LogLevel:            logLevel,
	}, nil
}
