// Package config loads runtime settings from the environment, with an
// optional .env file for local development.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries every tunable setting in one bundle
type Config struct {
	DatabasePath string
	CoverDir     string
	FontDir      string
	Workers      int
}

// Load reads an optional .env file and builds the config from the
// environment. Every setting has a default, so an empty environment is a
// valid one.
func Load() (*Config, error) {
	// A missing .env file is fine; the environment may already carry
	// everything
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: withDefault(os.Getenv("STELLARON_DB"), "library.db"),
		CoverDir:     withDefault(os.Getenv("STELLARON_COVER_DIR"), "covers"),
		FontDir:      withDefault(os.Getenv("STELLARON_FONT_DIR"), "fonts"),
		Workers:      runtime.NumCPU(),
	}

	if raw := strings.TrimSpace(os.Getenv("STELLARON_WORKERS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid STELLARON_WORKERS value %q: %w", raw, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("STELLARON_WORKERS must be positive, got %d", n)
		}
		cfg.Workers = n
	}

	return cfg, nil
}

func withDefault(value string, fallback string) string {
	if strings.TrimSpace(value) == "" {
		return fallback
	}
	return value
}
