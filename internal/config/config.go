package config

import (
	"os"
	"time"

	"statfeed/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	Provider ProviderConfig
	Range    RangeConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	URL string
}

// ProviderConfig holds the external data source endpoints
type ProviderConfig struct {
	WDSBaseURL   string
	ValetBaseURL string
	HTTPTimeout  time.Duration
}

// RangeConfig holds the default reference-period range
type RangeConfig struct {
	Start time.Time
	End   time.Time
}

const dateLayout = "2006-01-02"

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Provider: ProviderConfig{
			WDSBaseURL:   getEnvOrDefault("WDS_BASE_URL", ""),
			ValetBaseURL: getEnvOrDefault("VALET_BASE_URL", ""),
			HTTPTimeout:  getEnvDurationOrDefault("HTTP_TIMEOUT", 60*time.Second),
		},
	}

	if config.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	start, err := getEnvDateOrDefault("START_DATE", "2000-01-01")
	if err != nil {
		return nil, errors.ConfigInvalid("START_DATE must be YYYY-MM-DD")
	}
	end, err := getEnvDateOrDefault("END_DATE", "2025-12-31")
	if err != nil {
		return nil, errors.ConfigInvalid("END_DATE must be YYYY-MM-DD")
	}
	if end.Before(start) {
		return nil, errors.ConfigInvalid("END_DATE precedes START_DATE")
	}
	config.Range = RangeConfig{Start: start, End: end}

	return config, nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvDateOrDefault(key, defaultValue string) (time.Time, error) {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}
	return time.Parse(dateLayout, value)
}
