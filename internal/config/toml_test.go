package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigMissingFileIsEmpty(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)
	assert.Nil(t, cfg.Practice.Region)
	assert.Nil(t, cfg.Faces.Offline)
}

func TestLoadConfigParsesAllSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[practice]
region = "usa"
difficulty = 15

[faces]
endpoint = "https://faces.example.com"
relay = ""
offline = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.NotNil(t, cfg.Practice.Region)
	assert.Equal(t, "usa", *cfg.Practice.Region)
	require.NotNil(t, cfg.Practice.Difficulty)
	assert.Equal(t, 15, *cfg.Practice.Difficulty)

	require.NotNil(t, cfg.Faces.Endpoint)
	assert.Equal(t, "https://faces.example.com", *cfg.Faces.Endpoint)
	require.NotNil(t, cfg.Faces.Relay)
	assert.Equal(t, "", *cfg.Faces.Relay)
	require.NotNil(t, cfg.Faces.Offline)
	assert.True(t, *cfg.Faces.Offline)
}

func TestLoadConfigRejectsBrokenTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[practice\nregion="), 0o644))

	_, err := LoadConfig(path)
	require.Error(t, err)
}

func TestLoadConfigEmptyPath(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
}

func TestDefaultPathsUnderXDGDirs(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg-config")
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")

	assert.Equal(t, filepath.Join("/tmp/xdg-config", "facedrill", "config.toml"), DefaultConfigPath())
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "facedrill", "facedrill.db"), DefaultDBPath())
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "facedrill", "fallback.json"), DefaultFallbackPath())
	assert.Equal(t, filepath.Join("/tmp/xdg-data", "facedrill"), DefaultAssetRoot())
}
