package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/beanbocchi/deta/pkg/model"
)

func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "deta.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), `
projectKey: abc_secret
timeout: 5s
concurrency: 4
log:
  level: debug
  format: json
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc_secret", cfg.ProjectKey)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, "https://database.deta.sh/v1", cfg.BaseURL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, t.TempDir(), "projectKey: abc_file\n")
	t.Setenv("DETA_PROJECT_KEY", "abc_env")
	t.Setenv("DETA_DRIVE_URL", "http://localhost:8080/v1")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc_env", cfg.ProjectKey)
	assert.Equal(t, "http://localhost:8080/v1", cfg.DriveURL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
}

func TestLoadDefaultPathMayBeMissing(t *testing.T) {
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DETA_PROJECT_KEY", "abc_env")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "abc_env", cfg.ProjectKey)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := writeConfig(t, t.TempDir(), "log:\n  level: verbose\n")
	t.Setenv("DETA_PROJECT_KEY", "abc_env")
	_, err = Load(path)
	assert.ErrorIs(t, err, model.ErrValidation)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := Log{Level: "warn", Format: "json"}.NewLogger(&buf)

	logger.Info("hidden")
	logger.Warn("shown", "k", "v")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)
	assert.Contains(t, buf.String(), `"k":"v"`)
}
