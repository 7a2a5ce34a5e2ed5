package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAtomicWrite(t *testing.T) {
	tmpDir := t.TempDir()
	testPath := filepath.Join(tmpDir, "config.yaml")

	data := []byte("github:\n  max_results: 5\n")
	require.NoError(t, atomicWrite(testPath, data, 0600))

	leftovers, err := filepath.Glob(filepath.Join(tmpDir, "*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers, "temp file was not cleaned up")

	readData, err := os.ReadFile(testPath)
	require.NoError(t, err)
	assert.Equal(t, string(data), string(readData))

	info, err := os.Stat(testPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestAtomicWriteCreatesDir(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "subdir", "config.yaml")

	require.NoError(t, atomicWrite(testPath, []byte("log:\n  level: info\n"), 0644))

	_, err := os.Stat(testPath)
	assert.NoError(t, err)
}

func TestBackupConfig(t *testing.T) {
	testPath := filepath.Join(t.TempDir(), "config.yaml")

	// first run: nothing to back up
	require.NoError(t, backupConfig(testPath))
	_, err := os.Stat(testPath + ".bak")
	assert.True(t, os.IsNotExist(err))

	original := []byte("suggest:\n  limit: 4\n")
	require.NoError(t, os.WriteFile(testPath, original, 0644))
	require.NoError(t, backupConfig(testPath))

	bak, err := os.ReadFile(testPath + ".bak")
	require.NoError(t, err)
	assert.Equal(t, original, bak)
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")

	cfg := NewConfig()
	cfg.GitHub.BaseURL = "https://ghes.example.com/api/v3"
	cfg.Suggest.Limit = 7
	cfg.Storage.Path = filepath.Join(dir, "history.db")

	require.NoError(t, Save(cfg, configPath))

	loaded, err := Load(configPath)
	require.NoError(t, err)

	assert.Equal(t, cfg.GitHub.BaseURL, loaded.GitHub.BaseURL)
	assert.Equal(t, 7, loaded.Suggest.Limit)
	assert.Equal(t, cfg.Suggest.Debounce, loaded.Suggest.Debounce)
	assert.Equal(t, cfg.Storage.Path, loaded.Storage.Path)

	// saving again keeps the previous file as a backup
	cfg.Suggest.Limit = 8
	require.NoError(t, Save(cfg, configPath))
	bak, err := os.ReadFile(configPath + ".bak")
	require.NoError(t, err)
	assert.Contains(t, string(bak), "limit: 7")
}

func TestSaveWithTokenIsOwnerOnly(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	cfg.GitHub.Token = "ghp_example"
	require.NoError(t, Save(cfg, configPath))

	info, err := os.Stat(configPath)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestMarshal(t *testing.T) {
	data, err := Marshal(NewConfig())
	require.NoError(t, err)

	out := string(data)
	assert.True(t, strings.HasPrefix(out, "# gh-repo-search configuration\n"))
	assert.Contains(t, out, "github:\n  base_url: https://api.github.com\n")
	assert.Contains(t, out, "debounce: 300ms")
}

func TestSaveRejectsInvalidConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	cfg := NewConfig()
	cfg.GitHub.BaseURL = ""

	err := Save(cfg, configPath)
	var invalid *InvalidConfigError
	require.ErrorAs(t, err, &invalid)

	_, statErr := os.Stat(configPath)
	assert.True(t, os.IsNotExist(statErr), "invalid config must not be written")
}
