package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration.
type Config struct {
	// GeminiAPIKey enables the intel lookup; leave empty to play
	// without enrichment.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	// ScanDir is the directory to scan for monsters. Empty means the
	// curated Story Mode bestiary.
	ScanDir    string `env:"FILEBANE_SCAN_DIR"`
	ScanLimit  int    `env:"FILEBANE_SCAN_LIMIT" envDefault:"6"`
	ProgressDB string `env:"FILEBANE_PROGRESS_DB" envDefault:".filebane/progress.db"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.ScanLimit <= 0 {
		return nil, fmt.Errorf("FILEBANE_SCAN_LIMIT must be positive, got %d", cfg.ScanLimit)
	}
	return cfg, nil
}
