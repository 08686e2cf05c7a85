package commands

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperast-go/hyperast/pkg/ingest"
)

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, parseLogLevel("debug"))
	assert.Equal(t, slog.LevelWarn, parseLogLevel("warn"))
	assert.Equal(t, slog.LevelError, parseLogLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel("info"))
	assert.Equal(t, slog.LevelInfo, parseLogLevel(""))
}

func TestKindForLanguage(t *testing.T) {
	t.Parallel()

	cases := []struct {
		language string
		want     ingest.Kind
	}{
		{"", ingest.KindMaven},
		{"maven", ingest.KindMaven},
		{"java", ingest.KindJava},
		{"cpp", ingest.KindCpp},
	}

	for _, tc := range cases {
		got, err := kindForLanguage(tc.language)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestKindForLanguage_Unknown(t *testing.T) {
	t.Parallel()

	_, err := kindForLanguage("rust")
	require.ErrorIs(t, err, errUnknownLanguage)
}

func TestHitRate(t *testing.T) {
	t.Parallel()

	assert.InDelta(t, 0.0, hitRate(0, 0), 0)
	assert.InDelta(t, 75.0, hitRate(3, 1), 0.001)
	assert.InDelta(t, 100.0, hitRate(5, 0), 0.001)
}

func TestIngestCommand_LoadConfig_FlagOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  path: /repo\n  after: abc123\n"), 0o600))

	ic := &IngestCommand{
		configFile: path,
		repoPath:   "/override",
		after:      "def456",
		language:   "cpp",
		maxRefs:    10,
	}

	cfg, err := ic.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, "/override", cfg.Repository.Path)
	assert.Equal(t, "def456", cfg.Repository.After)
	assert.Equal(t, "cpp", cfg.Repository.Language)
	assert.Equal(t, 10, cfg.Analysis.MaxRefs)
}

func TestIngestCommand_LoadConfig_CacheSizeFlag(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  path: /repo\n  after: abc123\n"), 0o600))

	ic := &IngestCommand{configFile: path, cacheSizeStr: "128MiB"}

	cfg, err := ic.loadConfig()
	require.NoError(t, err)
	assert.Equal(t, int64(128*1024*1024), cfg.Cache.MaxSizeBytes)
}

func TestIngestCommand_LoadConfig_InvalidCacheSize(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("repository:\n  path: /repo\n  after: abc123\n"), 0o600))

	ic := &IngestCommand{configFile: path, cacheSizeStr: "not-a-size"}

	_, err := ic.loadConfig()
	require.Error(t, err)
}
