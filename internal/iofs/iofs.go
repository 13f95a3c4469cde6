// Package iofs prepares the filesystem layout gyadmin relies on:
// config, cache, data and log directories, and the default config file.
package iofs

import (
	"os"

	"github.com/getyour/gyadmin/pkg/config"
	"gopkg.in/yaml.v3"
)

const configHeader = `# gyadmin configuration.
#
# Profiles name the database environments records move between. The
# "_local" profile suffix selects the SQLite file at local_path instead
# of a PostgreSQL server.
`

func EnsureDirs(homeDir string) error {
	dirs := []string{
		config.ConfigDir(homeDir),
		config.CacheDir(homeDir),
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

// EnsureConfigFile writes the default configuration to the config
// directory unless a config file already exists.
func EnsureConfigFile(homeDir string) error {
	configPath := config.ConfigFilePath(homeDir)

	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	body, err := yaml.Marshal(config.New())
	if err != nil {
		return WriteFileError(configPath, err)
	}

	data := append([]byte(configHeader), body...)
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return WriteFileError(configPath, err)
	}

	return nil
}
