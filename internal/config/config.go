package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds the environment-driven settings shared by all commands.
// Flags override these where both exist.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string `split_words:"true" default:"crmetrics.db"`

	// APIKey is the Clash Royale API bearer token used by fetch-cards.
	APIKey string `split_words:"true"`

	// MinMatches is the minimum battle count for a player to be aggregated.
	MinMatches int `split_words:"true" default:"10"`

	// ChurnDays is the inactivity threshold, in days, for the churn label.
	ChurnDays int `split_words:"true" default:"7"`

	// SampleFraction is the default fraction for the sample command.
	SampleFraction float64 `split_words:"true" default:"0.1"`

	// Verbose enables debug-level logging.
	Verbose bool
}

// Load reads .env (if present) and the CRMETRICS_* environment variables.
func Load() (*Config, error) {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			return nil, fmt.Errorf("load .env: %w", err)
		}
	}

	var cfg Config
	if err := envconfig.Process("crmetrics", &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return &cfg, nil
}
