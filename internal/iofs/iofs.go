package iofs

import (
	"os"

	"github.com/gnames/gnrecon/pkg/config"
	"github.com/gnames/gnrecon/pkg/templates"
)

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
		config.SnapshotDir(homeDir),
		config.LogDir(homeDir),
	}
	for _, v := range dirs {
		if err := touchDir(v); err != nil {
			return err
		}
	}
	return nil
}

func touchDir(dir string) error {
	info, err := os.Stat(dir)
	if err == nil && info.IsDir() {
		return nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return CreateDirError(dir, err)
	}

	return nil
}

func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	// Check if config file already exists
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	// Write embedded config.yaml to the config directory
	if err := os.WriteFile(
		configPath, []byte(templates.ConfigYAML), 0644,
	); err != nil {
		return CopyFileError(configPath, err)
	}

	return nil
}

func EnsureEndpointsFile(homeDir string) error {
	endpointsPath := config.EndpointsFilePath(homeDir)

	// Check if endpoints file already exists
	if _, err := os.Stat(endpointsPath); err == nil {
		return nil
	}

	// Write embedded endpoints.yaml to the config directory
	if err := os.WriteFile(
		endpointsPath, []byte(templates.EndpointsYAML), 0644,
	); err != nil {
		return CopyFileError(endpointsPath, err)
	}

	return nil
}
