package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperast-go/hyperast/pkg/config"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  path: /repo\n  after: abc123\n"), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "/repo", cfg.Repository.Path)
	assert.Equal(t, "abc123", cfg.Repository.After)
	assert.Equal(t, "maven", cfg.Repository.Language)
	assert.Equal(t, config.DefaultMaxRefs, cfg.Analysis.MaxRefs)
	assert.Equal(t, int64(config.DefaultCacheMaxSizeBytes), cfg.Cache.MaxSizeBytes)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
repository:
  path: /repo
  before: v1
  after: v2
  root_module: services/api
  language: java
analysis:
  max_refs: 1000
  propagate_error_on_bad_cst: true
cache:
  max_size_bytes: 1048576
logging:
  level: debug
  format: text
  output: /tmp/hyperast.log
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "v1", cfg.Repository.Before)
	assert.Equal(t, "v2", cfg.Repository.After)
	assert.Equal(t, "services/api", cfg.Repository.RootModule)
	assert.Equal(t, "java", cfg.Repository.Language)
	assert.Equal(t, 1000, cfg.Analysis.MaxRefs)
	assert.True(t, cfg.Analysis.PropagateErrorOnBadCST)
	assert.Equal(t, int64(1048576), cfg.Cache.MaxSizeBytes)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "/tmp/hyperast.log", cfg.Logging.Output)
}

func TestLoadConfig_EnvironmentOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  path: /repo\n  after: abc123\n"), 0o600))

	t.Setenv("HYPERAST_ANALYSIS_MAX_REFS", "42")

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 42, cfg.Analysis.MaxRefs)
}

func TestLoadConfig_MissingRepositoryPath_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  after: abc123\n"), 0o600))

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrMissingRepository)
}

func TestLoadConfig_MissingAfter_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  path: /repo\n"), 0o600))

	_, err := config.LoadConfig(path)
	require.ErrorIs(t, err, config.ErrMissingAfter)
}

func TestLoadConfig_ExplicitPathNotFound_Errors(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig("/nonexistent/path/config.yaml")
	require.Error(t, err)
}

func TestLoadConfig_MalformedYAML_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  path: [broken\n"), 0o600))

	_, err := config.LoadConfig(path)
	require.Error(t, err)
}
