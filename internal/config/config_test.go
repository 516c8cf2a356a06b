package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "ads_monitor", cfg.Store.RootPath)
	assert.Equal(t, "live_metrics", cfg.Store.LivePath)
	assert.Equal(t, 180, cfg.Timing.FetchIntervalSec)
	assert.Equal(t, 300, cfg.Timing.SnapshotIntervalSec)
	assert.Equal(t, "@every 1h", cfg.Directory.RefreshCron)
	assert.False(t, cfg.AdsConfigured())
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := writeFile(t, `
store:
  base_url: https://store.example.com
  root_path: my_ads
ads:
  base_url: https://seller.example.com
  campaign_list_url: /api/ads/list
timing:
  fetch_interval_sec: 120
`)
	t.Setenv("STORE_ROOT_PATH", "env_wins")
	t.Setenv("TIMING_SNAPSHOT_INTERVAL_SEC", "60")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://store.example.com", cfg.Store.BaseURL)
	assert.Equal(t, "env_wins", cfg.Store.RootPath)
	assert.Equal(t, 120, cfg.Timing.FetchIntervalSec)
	assert.Equal(t, 60, cfg.Timing.SnapshotIntervalSec)
	assert.True(t, cfg.AdsConfigured())
	require.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "store.base_url is required")

	cfg.Store.BaseURL = "https://store.example.com"
	require.NoError(t, cfg.Validate())

	// Endpoints without a base URL are a configuration mistake.
	cfg.Ads.SetBudgetURL = "/api/setBudget"
	assert.Error(t, cfg.Validate())
	cfg.Ads.BaseURL = "https://seller.example.com"
	require.NoError(t, cfg.Validate())

	cfg.Timing.FetchIntervalSec = 5
	assert.Error(t, cfg.Validate())
}
