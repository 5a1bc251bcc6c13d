// Package config manages listq configuration and the .listq directory
// structure. It handles loading, saving, and initializing the client
// configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const (
	ListqDir     = ".listq"
	ConfigFile   = "config"
	DatabaseFile = "listq.db"
)

// Config represents the listq client configuration.
type Config struct {
	ServerURL  string `toml:"server_url"`
	List       string `toml:"list"`
	Token      string `toml:"token,omitempty"`
	MaxRetries int    `toml:"max_retries,omitempty"`
	BaseDelay  int    `toml:"base_delay_ms,omitempty"`
	MaxDelay   int    `toml:"max_delay_ms,omitempty"`

	path string // path to the .listq directory
}

// FindRoot finds the .listq directory by walking up from the current directory.
func FindRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		p := filepath.Join(dir, ListqDir)
		if info, err := os.Stat(p); err == nil && info.IsDir() {
			return p, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not a listq directory (or any parent up to root)")
		}
		dir = parent
	}
}

// Load loads the configuration from the .listq directory.
func Load() (*Config, error) {
	path, err := FindRoot()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(path, ConfigFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.path = path
	return &cfg, nil
}

// Save saves the configuration to disk.
func (c *Config) Save() error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	return os.WriteFile(filepath.Join(c.path, ConfigFile), data, 0644)
}

// Path returns the path to the .listq directory.
func (c *Config) Path() string {
	return c.path
}

// DatabasePath returns the path to the bbolt database.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.path, DatabaseFile)
}

// RetryCeiling returns the configured retry ceiling, or 0 to use defaults.
func (c *Config) RetryCeiling() int {
	return c.MaxRetries
}

// BaseDelayDuration returns the configured base backoff delay.
func (c *Config) BaseDelayDuration() time.Duration {
	return time.Duration(c.BaseDelay) * time.Millisecond
}

// MaxDelayDuration returns the configured backoff ceiling.
func (c *Config) MaxDelayDuration() time.Duration {
	return time.Duration(c.MaxDelay) * time.Millisecond
}

// Initialize creates a new .listq directory with initial configuration.
func Initialize(serverURL, list, token string) (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	path := filepath.Join(cwd, ListqDir)

	// Check if already initialized
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("listq directory already exists")
	}

	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("failed to create .listq directory: %w", err)
	}

	cfg := &Config{
		ServerURL: serverURL,
		List:      list,
		Token:     token,
		path:      path,
	}

	if err := cfg.Save(); err != nil {
		// Cleanup on failure
		os.RemoveAll(path)
		return nil, err
	}

	return cfg, nil
}
