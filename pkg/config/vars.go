package config

import (
	"path/filepath"
)

var (
	// AppName is used in generating file system paths.
	AppName = "gnrecon"
)

// ConfigDir returns the directory path for configuration files.
// Returns ~/.config/gnrecon by default.
func ConfigDir(homeDir string) string {
	return filepath.Join(homeDir, ".config", AppName)
}

// CacheDir returns the directory path for cache files.
// Returns ~/.cache/gnrecon by default.
func CacheDir(homeDir string) string {
	return filepath.Join(homeDir, ".cache", AppName)
}

// SnapshotDir returns the directory holding per-genus reference
// snapshots. Returns ~/.cache/gnrecon/snapshots by default.
func SnapshotDir(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "snapshots")
}

// RegisterDBPath returns the path of the hybrid register cache
// database.
func RegisterDBPath(homeDir string) string {
	return filepath.Join(CacheDir(homeDir), "register.db")
}

// LogDir returns the directory path for log files.
// Returns ~/.local/share/gnrecon/logs by default.
func LogDir(homeDir string) string {
	return filepath.Join(homeDir, ".local", "share", AppName, "logs")
}

// EndpointsFilePath returns the full path to the endpoints.yaml file.
// Returns ~/.config/gnrecon/endpoints.yaml by default.
func EndpointsFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "endpoints.yaml")
}

// ConfigFilePath returns the full path to the config.yaml file.
// Returns ~/.config/gnrecon/config.yaml by default.
func ConfigFilePath(homeDir string) string {
	return filepath.Join(ConfigDir(homeDir), "config.yaml")
}
