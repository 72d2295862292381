package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all configuration for the application
type Config struct {
	DatabaseDriver string `yaml:"database_driver"`
	DatabaseURL    string `yaml:"database_url"`
	Port           string `yaml:"port"`

	// Bearer token gate on /api/*
	AuthEnabled bool   `yaml:"auth_enabled"`
	AuthSecret  string `yaml:"auth_secret"`

	SyncImages bool   `yaml:"sync_images"`
	StaticDir  string `yaml:"static_dir"`
	LogLevel   string `yaml:"log_level"`

	// Used by the curator CLI
	CuratorURL   string `yaml:"curator_url"`
	CuratorToken string `yaml:"curator_token"`
}

// DefaultConfig returns a Config struct with default values
func DefaultConfig() *Config {
	return &Config{
		DatabaseDriver: DriverSQLite,
		DatabaseURL:    "curation.db",
		Port:           "8080",
		AuthEnabled:    false,
		SyncImages:     true,
		StaticDir:      "public",
		LogLevel:       "info",
		CuratorURL:     "http://localhost:8080",
	}
}

// LoadConfig reads configuration from the .env file, an optional YAML file
// named by CURATOR_CONFIG, and the environment, in that order of precedence
// (environment wins).
func LoadConfig() (*Config, error) {
	// Load .env file. In production, env variables are often set directly.
	_ = godotenv.Load()

	cfg := DefaultConfig()

	if path := os.Getenv("CURATOR_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.DatabaseDriver = getEnv("DATABASE_DRIVER", cfg.DatabaseDriver)
	cfg.DatabaseURL = getEnv("DATABASE_URL", cfg.DatabaseURL)
	cfg.Port = getEnv("PORT", cfg.Port)
	cfg.AuthSecret = getEnv("AUTH_SECRET", cfg.AuthSecret)
	cfg.StaticDir = getEnv("STATIC_DIR", cfg.StaticDir)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.CuratorURL = getEnv("CURATOR_URL", cfg.CuratorURL)
	cfg.CuratorToken = getEnv("CURATOR_TOKEN", cfg.CuratorToken)

	var err error
	if cfg.AuthEnabled, err = getEnvBool("AUTH_ENABLED", cfg.AuthEnabled); err != nil {
		return nil, err
	}
	if cfg.SyncImages, err = getEnvBool("SYNC_IMAGES", cfg.SyncImages); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.DatabaseDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.DatabaseDriver)
	}

	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}

	if c.AuthEnabled && c.AuthSecret == "" {
		return errors.New("AUTH_ENABLED requires AUTH_SECRET")
	}

	return nil
}

// Helper function to get env var or return default
func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) (bool, error) {
	value, exists := os.LookupEnv(key)
	if !exists || value == "" {
		return defaultValue, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s: %w", key, err)
	}
	return b, nil
}
