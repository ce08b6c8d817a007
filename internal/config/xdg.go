package config

import (
	"os"
	"path/filepath"
)

const appName = "schoolbell"

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
	return filepath.Join(XDGConfigHome(), appName, "config.toml")
}

// DefaultTimetablePath returns the default timetable document path.
func DefaultTimetablePath() string {
	return filepath.Join(XDGConfigHome(), appName, "schedule.json")
}

// DefaultSettingsPath returns the default settings document path.
func DefaultSettingsPath() string {
	return filepath.Join(XDGConfigHome(), appName, "settings.json")
}

// DefaultBaseDir returns the directory relative sound names fall back to.
func DefaultBaseDir() string {
	return filepath.Join(XDGDataHome(), appName)
}

// DefaultSoundsDir returns the default sound library directory.
func DefaultSoundsDir() string {
	return filepath.Join(DefaultBaseDir(), "sounds")
}

// DefaultDBPath returns the default path for the SQLite ring log.
func DefaultDBPath() string {
	return filepath.Join(DefaultBaseDir(), appName+".db")
}

// DefaultLogPath returns the log file used while the dashboard owns the
// terminal.
func DefaultLogPath() string {
	return filepath.Join(DefaultBaseDir(), appName+".log")
}
