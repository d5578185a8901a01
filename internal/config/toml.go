// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Practice PracticeConfig `toml:"practice"`
	Faces    FacesConfig    `toml:"faces"`
}

// PracticeConfig maps practice-related settings.
type PracticeConfig struct {
	Region     *string `toml:"region"`
	Difficulty *int    `toml:"difficulty"`
}

// FacesConfig maps face acquisition settings.
type FacesConfig struct {
	Endpoint *string `toml:"endpoint"`
	Relay    *string `toml:"relay"`
	Offline  *bool   `toml:"offline"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
