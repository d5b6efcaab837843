package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetConfig(t *testing.T) {
	t.Helper()
	initOnce = sync.Once{}
	Instance = AppConfig{}
	v = nil
	t.Cleanup(func() {
		initOnce = sync.Once{}
		Instance = AppConfig{}
		v = nil
	})
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "etl-bridge.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestInitializeFromFile(t *testing.T) {
	resetConfig(t)
	t.Chdir(t.TempDir())

	path := writeConfig(t, `
log_format: json
conversion:
  compress: zstd
batch:
  max_files: 10
  hash_algorithm: blake2b-256
`)

	require.NoError(t, Initialize(path))
	assert.True(t, ConfigLoaded)
	assert.Equal(t, path, ConfigFile)
	assert.Equal(t, "json", Instance.LogFormat)
	assert.Equal(t, "zstd", Instance.Conversion.Compress)
	assert.Equal(t, 10, Instance.Batch.MaxFiles)
	assert.Equal(t, "blake2b-256", Instance.Batch.HashAlgorithm)
	assert.Equal(t, "info", Instance.Validation.MinSeverity)
	assert.True(t, Instance.Docs.IncludeValidation)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	resetConfig(t)
	t.Chdir(t.TempDir())
	t.Setenv("ETL_BRIDGE_VALIDATION_MIN_SEVERITY", "error")

	path := writeConfig(t, "validation:\n  min_severity: warning\n")

	require.NoError(t, Initialize(path))
	assert.Equal(t, "error", Instance.Validation.MinSeverity)
}

func TestDotEnvIsLoaded(t *testing.T) {
	resetConfig(t)
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("ETL_BRIDGE_BATCH_REPORT_FORMAT=yaml\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("ETL_BRIDGE_BATCH_REPORT_FORMAT") })

	require.NoError(t, Initialize(""))
	assert.False(t, ConfigLoaded)
	assert.Equal(t, "yaml", Instance.Batch.ReportFormat)
}

func TestInvalidConfigRejected(t *testing.T) {
	resetConfig(t)
	t.Chdir(t.TempDir())

	path := writeConfig(t, "conversion:\n  compress: lz4\n")

	err := Initialize(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
}

func TestMissingConfigFile(t *testing.T) {
	resetConfig(t)

	err := Initialize(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrConfigFileNotFound))
}

func TestSetAndSave(t *testing.T) {
	resetConfig(t)
	t.Chdir(t.TempDir())

	assert.Error(t, Set("debug", true))

	require.NoError(t, Initialize(""))
	require.NoError(t, Set("debug", true))
	assert.True(t, Instance.Debug)

	out := filepath.Join(t.TempDir(), "nested", "saved.yaml")
	require.NoError(t, SaveConfig(out))
	assert.FileExists(t, out)
}

func TestReload(t *testing.T) {
	resetConfig(t)
	t.Chdir(t.TempDir())

	assert.True(t, errors.Is(Reload(), errors.ErrNotInitialized))

	require.NoError(t, Initialize(""))
	Viper().Set("log_format", "json")
	require.NoError(t, Reload())
	assert.Equal(t, "json", Instance.LogFormat)

	Viper().Set("log_format", "xml")
	err := Reload()
	assert.True(t, errors.Is(err, errors.ErrConfigInvalid))
	assert.Equal(t, "json", Instance.LogFormat, "a rejected reload keeps the previous values")
}
