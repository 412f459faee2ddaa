// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Defaults applied when neither a flag nor the environment sets a value.
const (
	DefaultPort          = 3318
	DefaultSQLitePath    = "electoral_data.db"
	DefaultMaxVoters     = 1_000_000
	DefaultMaxCandidates = 50
)

type Config struct {
	Port          int
	DatabaseURL   string
	DatabaseType  string
	AdminKeySalt  string
	SlugSalt      string
	MaxVoters     int
	MaxCandidates int
	LogLevel      string
	LogFormat     string
}

// Driver returns the database/sql driver name for the configured database type.
func (c Config) Driver() string {
	if c.DatabaseType == "postgres" {
		return "postgres"
	}
	return "sqlite"
}

// ParseFlags reads flags, then an optional .env file, then the environment.
func ParseFlags(args []string) (Config, error) {
	var cfg Config
	var envFile string

	fs := flag.NewFlagSet("electsim", flag.ContinueOnError)

	fs.StringVar(&envFile, "env", "", "Path to a .env file")
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL or SQLite path")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite or postgres)")

	// Secrets (prefer env variables, but allow CLI for dev)
	fs.StringVar(&cfg.AdminKeySalt, "admin-salt", "", "Admin key salt (prefer env)")
	fs.StringVar(&cfg.SlugSalt, "slug-salt", "", "Scenario slug salt (prefer env)")

	fs.IntVar(&cfg.MaxVoters, "max-voters", 0, "Largest ballot generation request")
	fs.IntVar(&cfg.MaxCandidates, "max-candidates", 0, "Largest candidate list per request")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", "", "Log format (text or json)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	// .env never overrides variables already present in the environment
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return Config{}, fmt.Errorf("failed to load env file: %w", err)
		}
	}

	var err error
	if cfg.Port, err = intSetting(cfg.Port, "PORT", DefaultPort); err != nil {
		return Config{}, err
	}
	if cfg.MaxVoters, err = intSetting(cfg.MaxVoters, "MAX_VOTERS", DefaultMaxVoters); err != nil {
		return Config{}, err
	}
	if cfg.MaxCandidates, err = intSetting(cfg.MaxCandidates, "MAX_CANDIDATES", DefaultMaxCandidates); err != nil {
		return Config{}, err
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = "sqlite"
		}
	}
	cfg.DatabaseType = strings.ToLower(cfg.DatabaseType)
	if cfg.DatabaseType != "sqlite" && cfg.DatabaseType != "postgres" {
		return Config{}, fmt.Errorf("unsupported database type %q", cfg.DatabaseType)
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.DatabaseURL == "" {
		if cfg.DatabaseType == "postgres" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
		cfg.DatabaseURL = DefaultSQLitePath
	}

	// Secrets - MUST be provided
	if cfg.AdminKeySalt == "" {
		cfg.AdminKeySalt = os.Getenv("ADMIN_KEY_SALT")
	}
	if cfg.AdminKeySalt == "" {
		return Config{}, errors.New("ADMIN_KEY_SALT required")
	}

	if cfg.SlugSalt == "" {
		cfg.SlugSalt = os.Getenv("SLUG_SALT")
	}
	if cfg.SlugSalt == "" {
		return Config{}, errors.New("SLUG_SALT required")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = envOr("LOG_LEVEL", "info")
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = envOr("LOG_FORMAT", "text")
	}

	return cfg, nil
}

func intSetting(flagValue int, key string, def int) (int, error) {
	if flagValue != 0 {
		if flagValue < 0 {
			return 0, fmt.Errorf("%s must be positive", key)
		}
		return flagValue, nil
	}
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("invalid %s env variable", key)
	}
	return v, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
