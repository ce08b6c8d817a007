// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Paths  PathsConfig  `toml:"paths"`
	Player PlayerConfig `toml:"player"`
	Log    LogConfig    `toml:"log"`
}

// PathsConfig maps document and data locations.
type PathsConfig struct {
	Timetable *string `toml:"timetable"`
	Settings  *string `toml:"settings"`
	Sounds    *string `toml:"sounds"`
	BaseDir   *string `toml:"base-dir"`
	DB        *string `toml:"db"`
}

// PlayerConfig maps the external player command.
type PlayerConfig struct {
	Command *string `toml:"command"`
}

// LogConfig maps logger settings.
type LogConfig struct {
	Env  *string `toml:"env"`
	File *string `toml:"file"`
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
