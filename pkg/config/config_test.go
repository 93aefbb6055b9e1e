package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, cfg.Compaction.Interval)
	assert.Equal(t, []string{".ts", ".js"}, cfg.Tracked.Suffixes)
	assert.Equal(t, []string{"manifest.json"}, cfg.Tracked.Names)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "dev", cfg.Editor.Version)
}

func TestLoad_FromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "timefold.yaml")
	content := `
tracked:
  suffixes: [".lua"]
  names: ["project.json"]
compaction:
  interval: 30s
  min_time: 100
  max_time: 5000
logging:
  level: debug
  format: json
editor:
  version: "2.1.0"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, []string{".lua"}, cfg.Tracked.Suffixes)
	assert.Equal(t, []string{"project.json"}, cfg.Tracked.Names)
	assert.Equal(t, 30*time.Second, cfg.Compaction.Interval)
	assert.Equal(t, int64(100), cfg.Compaction.MinTime)
	assert.Equal(t, int64(5000), cfg.Compaction.MaxTime)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "2.1.0", cfg.Editor.Version)
}

func TestLoad_InvalidInterval(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "timefold.yaml")
	require.NoError(t, os.WriteFile(path, []byte("compaction:\n  interval: -5s\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestLoad_InvalidWindow(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "timefold.yaml")
	content := "compaction:\n  min_time: 500\n  max_time: 100\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestLoad_EmptyTrackedSet(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "timefold.yaml")
	content := "tracked:\n  suffixes: []\n  names: []\n  patterns: []\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoTrackedFiles)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "timefold.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: loud\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}
