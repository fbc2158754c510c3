package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is the environment variable prefix, e.g. TABSAVE_PROFILE.
const Prefix = "TABSAVE"

// Config holds settings read from the environment.
type Config struct {
	Profile    string `envconfig:"PROFILE"`
	FirefoxDir string `envconfig:"FIREFOX_DIR"`
	DataDir    string `envconfig:"DATA_DIR"`
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`
}

// Load reads an optional .env file and then the TABSAVE_* environment.
// A missing .env file is not an error; a malformed one is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if cfg.DataDir == "" {
		dir, err := DefaultDataDir()
		if err != nil {
			return nil, err
		}
		cfg.DataDir = dir
	}
	return &cfg, nil
}

// DefaultDataDir returns ~/.local/share/tabsave.
func DefaultDataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "tabsave"), nil
}

// DBPath returns the snapshot database path inside the data directory.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "tabsave.db")
}

// ProfileName returns the flag value if set, otherwise the configured profile.
func (c *Config) ProfileName(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	return c.Profile
}
