package iofs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/getyour/gyadmin/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// TestEnsureDirs_CreatesDirectories verifies all required
// directories are created.
func TestEnsureDirs_CreatesDirectories(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	configDir := filepath.Join(tmpDir, ".config", "gyadmin")
	info, err := os.Stat(configDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Config directory should exist")

	cacheDir := filepath.Join(tmpDir, ".cache", "gyadmin")
	info, err = os.Stat(cacheDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Cache directory should exist")

	logDir := filepath.Join(tmpDir, ".local", "share", "gyadmin",
		"logs")
	info, err = os.Stat(logDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir(),
		"Log directory should exist")
}

// TestEnsureDirs_Idempotent verifies multiple calls work.
func TestEnsureDirs_Idempotent(t *testing.T) {
	tmpDir := t.TempDir()

	err := EnsureDirs(tmpDir)
	require.NoError(t, err)

	err = EnsureDirs(tmpDir)
	require.NoError(t, err)
}

// TestEnsureConfigFile_WritesDefaults verifies the generated config
// file parses back into the default configuration.
func TestEnsureConfigFile_WritesDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureDirs(tmpDir))

	err := EnsureConfigFile(tmpDir)
	require.NoError(t, err)

	data, err := os.ReadFile(config.ConfigFilePath(tmpDir))
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))

	def := config.New()
	assert.Equal(t, def.Extract.FilenameSuffix, cfg.Extract.FilenameSuffix)
	assert.Equal(t, def.Clone.DevProfile, cfg.Clone.DevProfile)
	assert.Contains(t, cfg.Profiles, "getyour_dev")
}

// TestEnsureConfigFile_PreservesExisting verifies an existing config
// file is not overwritten.
func TestEnsureConfigFile_PreservesExisting(t *testing.T) {
	tmpDir := t.TempDir()
	require.NoError(t, EnsureDirs(tmpDir))

	path := config.ConfigFilePath(tmpDir)
	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: debug\n"), 0644))

	require.NoError(t, EnsureConfigFile(tmpDir))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "log:\n  level: debug\n", string(data))
}
