package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvSettingsPath is the environment variable for an explicit
	// settings path.
	EnvSettingsPath = "COBBLER_SETTINGS"
	// SettingsFileName is the default settings file name in the
	// working directory.
	SettingsFileName = "cobbler.yaml"
	// SettingsDirName is the settings directory name under XDG.
	SettingsDirName = "cobbler"
	// SystemSettingsPath is the system-wide settings location.
	SystemSettingsPath = "/etc/cobbler/settings.yaml"
)

// FindSettingsPath searches for the settings file in priority order:
//  1. $COBBLER_SETTINGS (explicit path)
//  2. ./cobbler.yaml (working directory)
//  3. $XDG_CONFIG_HOME/cobbler/settings.yaml
//  4. ~/.config/cobbler/settings.yaml
//  5. /etc/cobbler/settings.yaml
//
// Returns empty string if no settings file is found.
func FindSettingsPath() string {
	if path := os.Getenv(EnvSettingsPath); path != "" {
		if fileExists(path) {
			return path
		}
	}

	if fileExists(SettingsFileName) {
		if abs, err := filepath.Abs(SettingsFileName); err == nil {
			return abs
		}
		return SettingsFileName
	}

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		path := filepath.Join(xdgHome, SettingsDirName, "settings.yaml")
		if fileExists(path) {
			return path
		}
	}

	if home := os.Getenv("HOME"); home != "" {
		path := filepath.Join(home, ".config", SettingsDirName, "settings.yaml")
		if fileExists(path) {
			return path
		}
	}

	if fileExists(SystemSettingsPath) {
		return SystemSettingsPath
	}

	return ""
}

// EnsureSettingsDir creates the settings directory if it doesn't exist.
func EnsureSettingsDir(settingsPath string) error {
	dir := filepath.Dir(settingsPath)
	return os.MkdirAll(dir, 0755)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
