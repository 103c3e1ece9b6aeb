package config

import (
	"os"
	"path/filepath"
)

const (
	// EnvConfigPath names an explicit config file
	EnvConfigPath = "MCCNET_CONFIG"
	// ConfigFileName is looked up in the working directory
	ConfigFileName = "mccnet.yaml"
	// ConfigDirName is the directory under XDG and /etc
	ConfigDirName = "mccnet"

	configFile = "config.yaml"
)

// SearchPaths lists candidate config files in priority order.
// Unset environment variables contribute no entry.
func SearchPaths() []string {
	var paths []string

	if path := os.Getenv(EnvConfigPath); path != "" {
		paths = append(paths, path)
	}
	paths = append(paths, ConfigFileName)

	if xdgHome := os.Getenv("XDG_CONFIG_HOME"); xdgHome != "" {
		paths = append(paths, filepath.Join(xdgHome, ConfigDirName, configFile))
	}
	if home := os.Getenv("HOME"); home != "" {
		paths = append(paths, filepath.Join(home, ".config", ConfigDirName, configFile))
	}

	return append(paths, filepath.Join("/etc", ConfigDirName, configFile))
}

// FindConfigPath returns the first existing candidate from SearchPaths,
// made absolute, or "" when none exists.
func FindConfigPath() string {
	for _, path := range SearchPaths() {
		if !fileExists(path) {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			return abs
		}
		return path
	}
	return ""
}

// EnsureConfigDir creates the directory holding configPath
func EnsureConfigDir(configPath string) error {
	return os.MkdirAll(filepath.Dir(configPath), 0755)
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
