package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTP.RESTPort)
	assert.Equal(t, "https://www.hockeydb.com/ihdb/stats/pdisplay.php", cfg.HockeyDB.BaseURL)
	assert.Equal(t, time.Second, cfg.HockeyDB.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Redis.PageTTL)
	assert.Equal(t, 2, cfg.Export.MinNHLSeasons)
	assert.EqualValues(t, 10240, cfg.Export.MaxFileSize)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	t.Setenv("REST_PORT", "9090")
	t.Setenv("DIRECTUS_TOKEN", "secret")
	t.Setenv("HOCKEYDB_INTERVAL", "2s")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTP.RESTPort)
	assert.True(t, cfg.UploadEnabled())
	assert.Equal(t, 2*time.Second, cfg.HockeyDB.Interval)
}

func TestLoadEnvFile(t *testing.T) {
	t.Setenv("EXPORT_DIR", "")
	os.Unsetenv("EXPORT_DIR")
	t.Setenv("WS_PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("EXPORT_DIR=/tmp/players\nWS_PORT=6000\n"), 0o644))
	t.Cleanup(func() { os.Unsetenv("EXPORT_DIR") })

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/players", cfg.Export.Dir)
	assert.Equal(t, "7000", cfg.HTTP.WSPort)
}

func TestLoadRejectsBadRefreshHour(t *testing.T) {
	t.Setenv("SCHEDULER_REFRESH_HOUR", "25")

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}
