package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kevwatch/kevwatch/catalog"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, catalog.DefaultFeedURL, cfg.FeedURL)
	assert.Equal(t, "local", cfg.DataDir)
	assert.Equal(t, "webhooks.conf", cfg.WebhookFile)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.FetchTimeout())
	assert.Equal(t, time.Hour, cfg.WatchInterval())
	assert.Equal(t, "kevwatch", cfg.Database.Name)
	assert.Equal(t, "http://localhost:8529", cfg.Database.URL)
	assert.Equal(t, filepath.Join("local", "kev_catalog.json"), cfg.SnapshotPath())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KEV_FEED_URL", "https://mirror.example.com/kev.json")
	t.Setenv("KEV_DATA_DIR", "/var/lib/kevwatch")
	t.Setenv("ARANGO_HOST", "db.internal")
	t.Setenv("ARANGO_PORT", "9529")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.com/kev.json", cfg.FeedURL)
	assert.Equal(t, "/var/lib/kevwatch", cfg.DataDir)
	assert.Equal(t, "http://db.internal:9529", cfg.Database.URL)
}

func TestLoadYAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kevwatch.yaml")
	content := `feed_url: https://mirror.example.com/kev.json
watch_interval_seconds: 600
database:
  host: arango.example.com
  port: "8530"
  name: kev_prod
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://mirror.example.com/kev.json", cfg.FeedURL)
	assert.Equal(t, 10*time.Minute, cfg.WatchInterval())
	assert.Equal(t, "kev_prod", cfg.Database.Name)
	assert.Equal(t, "http://arango.example.com:8530", cfg.Database.URL)

	// Settings the file does not mention keep their defaults.
	assert.Equal(t, "webhooks.conf", cfg.WebhookFile)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "kevwatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte("feed_url: [unclosed"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
