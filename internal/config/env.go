package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables read after LoadEnv.
const (
	EnvName   = "SCHOOLBELL_ENV"
	EnvPlayer = "SCHOOLBELL_PLAYER"
)

// LoadEnv loads an optional .env file next to the config file. Variables
// already set in the process environment win. A missing file is not an
// error.
func LoadEnv(configPath string) error {
	path := filepath.Join(filepath.Dir(configPath), ".env")
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// Environment returns the logger environment, "development" by default.
func Environment() string {
	if v := os.Getenv(EnvName); v != "" {
		return v
	}
	return "development"
}

// PlayerCommand returns the player command from the environment, or "".
func PlayerCommand() string {
	return os.Getenv(EnvPlayer)
}
