package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ego.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engine: /opt/ygo/libocgcore.so
cdb: /opt/ygo/cards.cdb
debug: true
logging:
  level: debug
  format: json
`), 0o644))
	t.Setenv("EGO_CDB", "/tmp/other.cdb")
	t.Setenv("EGO_LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/opt/ygo/libocgcore.so", cfg.Engine)
	assert.Equal(t, "/tmp/other.cdb", cfg.CDB)
	assert.Equal(t, "./script", cfg.Scripts)
	assert.True(t, cfg.Debug)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadRejectsBadInput(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging: [oops"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)

	t.Setenv("EGO_LOG_FORMAT", "xml")
	_, err = Load("")
	assert.ErrorContains(t, err, "unknown log format")
}

func TestNewLogger(t *testing.T) {
	for _, cfg := range []LoggingConfig{
		{Level: "debug", Format: "console"},
		{Level: "error", Format: "json"},
		{},
	} {
		log, err := NewLogger(cfg)
		require.NoError(t, err)
		require.NotNil(t, log)
	}
	log, _ := NewLogger(LoggingConfig{Level: "warn"})
	assert.False(t, log.Core().Enabled(-1))
	assert.True(t, log.Core().Enabled(1))
}
