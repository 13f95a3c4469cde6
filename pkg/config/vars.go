package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gyadmin"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gyadmin by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files (the default home of
// the local single-file store).
// Returns ~/.cache/gyadmin by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// DataDir returns the directory for generated artifacts (extracts and
// downloaded user files).
// Returns ~/.local/share/gyadmin by default.
func DataDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName)
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gyadmin/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(DataDir(homeDir), "logs")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gyadmin/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}

// LocalStorePath returns the default path of the SQLite file backing
// "_local" profiles when Config.LocalPath is not set.
func LocalStorePath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "getyour_local.sqlite")
}
