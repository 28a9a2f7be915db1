// ABOUTME: Configuration management with storage backend selection
// ABOUTME: Handles remote API credentials, data paths, and the store factory

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/harper/stash/internal/store"
)

// Config stores stash configuration.
type Config struct {
	// Backend selects the storage backend: "sqlite" (default) or "charm".
	Backend string `json:"backend,omitempty"`

	// DataDir is the root directory for data storage. SQLite puts stash.db
	// here; the media cache lives under media/. Supports ~ expansion.
	// Defaults to ~/.local/share/stash.
	DataDir string `json:"data_dir,omitempty"`

	// Server is the remote article API base URL.
	Server string `json:"server,omitempty"`

	// Token is the bearer credential attached to API requests. It is issued
	// by the auth layer; stash only carries it.
	Token string `json:"token,omitempty"`

	// UserID scopes all local storage keys and media cache paths.
	UserID string `json:"user_id,omitempty"`

	// AutoSyncMinutes is the background sync interval. Values below the OS
	// minimum are raised at runtime.
	AutoSyncMinutes int `json:"auto_sync_minutes,omitempty"`
}

// GetBackend returns the configured backend, defaulting to "sqlite".
func (c *Config) GetBackend() string {
	if c.Backend == "" {
		return "sqlite"
	}
	return c.Backend
}

// GetDataDir returns the configured data directory with ~ expanded,
// defaulting to the standard XDG data directory.
func (c *Config) GetDataDir() string {
	if c.DataDir == "" {
		return defaultDataDir()
	}
	return ExpandPath(c.DataDir)
}

// MediaDir returns the root of the on-disk image cache.
func (c *Config) MediaDir() string {
	return filepath.Join(c.GetDataDir(), "media")
}

// IsConfigured reports whether the remote API can be reached.
func (c *Config) IsConfigured() bool {
	return c.Server != "" && c.Token != "" && c.UserID != ""
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path == "" {
		return ""
	}
	if path == "~" {
		home, _ := os.UserHomeDir()
		return home
	}
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// OpenStore creates a Store implementation based on the configured backend.
func (c *Config) OpenStore() (store.Store, error) {
	switch c.GetBackend() {
	case "sqlite":
		return store.NewSQLiteStore(filepath.Join(c.GetDataDir(), "stash.db"))
	case "charm":
		return store.NewCharmStore()
	default:
		return nil, fmt.Errorf("unknown backend: %q", c.GetBackend())
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, _ := os.UserHomeDir()
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "stash", "config.json")
}

// Load reads config from disk, returning defaults when no file exists.
func Load() (*Config, error) {
	data, err := os.ReadFile(GetConfigPath())
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes config to disk via write-then-rename.
func (c *Config) Save() error {
	path := GetConfigPath()
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".config-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Chmod(tmp.Name(), 0600); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// defaultDataDir returns the standard XDG data directory for stash.
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, _ := os.UserHomeDir()
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "stash")
}
