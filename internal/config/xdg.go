// Package config provides XDG path helpers.
package config

import (
	"os"
	"path/filepath"
)

// XDGConfigHome returns the XDG config home or a default fallback.
func XDGConfigHome() string {
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".config")
}

// XDGDataHome returns the XDG data home or a default fallback.
func XDGDataHome() string {
	if v := os.Getenv("XDG_DATA_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "."
	}
	return filepath.Join(home, ".local", "share")
}

// DefaultConfigPath returns the default TOML config path.
func DefaultConfigPath() string {
	return filepath.Join(XDGConfigHome(), "facedrill", "config.toml")
}

// DefaultDataDir returns the directory holding all persisted state.
func DefaultDataDir() string {
	return filepath.Join(XDGDataHome(), "facedrill")
}

// DefaultDBPath returns the default path for the SQLite key-value store.
func DefaultDBPath() string {
	return filepath.Join(DefaultDataDir(), "facedrill.db")
}

// DefaultFallbackPath returns the default path for the flat-file store.
func DefaultFallbackPath() string {
	return filepath.Join(DefaultDataDir(), "fallback.json")
}

// DefaultAssetRoot returns the directory against which bundled asset paths
// such as "assets/default-face.jpg" resolve.
func DefaultAssetRoot() string {
	return DefaultDataDir()
}
