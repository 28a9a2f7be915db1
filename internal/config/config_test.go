// ABOUTME: Tests for configuration loading, defaults, and the store factory
// ABOUTME: Uses XDG env overrides to isolate paths under temp dirs

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harper/stash/internal/store"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, "sqlite", cfg.GetBackend())
	assert.False(t, cfg.IsConfigured())
}

func TestIsConfigured(t *testing.T) {
	cfg := Config{Server: "https://api.test", Token: "tok", UserID: "u1"}
	assert.True(t, cfg.IsConfigured())

	cfg.Token = ""
	assert.False(t, cfg.IsConfigured())
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, home, ExpandPath("~"))
	assert.Equal(t, filepath.Join(home, "stash"), ExpandPath("~/stash"))
	assert.Equal(t, "/abs/path", ExpandPath("/abs/path"))
	assert.Equal(t, "", ExpandPath(""))
}

func TestMediaDirUnderDataDir(t *testing.T) {
	cfg := Config{DataDir: "/data/stash"}
	assert.Equal(t, filepath.Join("/data/stash", "media"), cfg.MediaDir())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := &Config{
		Backend:         "sqlite",
		Server:          "https://api.test",
		Token:           "tok",
		UserID:          "u1",
		AutoSyncMinutes: 30,
	}
	require.NoError(t, cfg.Save())

	loaded, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Server, loaded.Server)
	assert.Equal(t, cfg.UserID, loaded.UserID)
	assert.Equal(t, 30, loaded.AutoSyncMinutes)

	info, err := os.Stat(GetConfigPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm(), "config holds a credential")
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.GetBackend())
}

func TestOpenStoreSQLite(t *testing.T) {
	cfg := Config{Backend: "sqlite", DataDir: t.TempDir()}
	s, err := cfg.OpenStore()
	require.NoError(t, err)
	defer s.Close()

	_, isSQLite := s.(*store.SQLiteStore)
	assert.True(t, isSQLite)
}

func TestOpenStoreUnknownBackend(t *testing.T) {
	cfg := Config{Backend: "papyrus"}
	_, err := cfg.OpenStore()
	assert.Error(t, err)
}
