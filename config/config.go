// Package config builds the kevwatch runtime configuration once at startup.
// Components receive the resulting struct through their constructors; no
// package reads environment variables or defaults at import time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/kevwatch/kevwatch/catalog"
	"github.com/kevwatch/kevwatch/database"
	"github.com/kevwatch/kevwatch/util"
)

// Config carries every runtime setting. Defaults come from environment
// variables and built-ins; a YAML file, when given, overrides them.
type Config struct {
	FeedURL          string          `yaml:"feed_url"`
	FetchTimeoutSec  int             `yaml:"fetch_timeout_seconds"`
	DataDir          string          `yaml:"data_dir"`
	WebhookFile      string          `yaml:"webhook_file"`
	WatchIntervalSec int             `yaml:"watch_interval_seconds"`
	Port             string          `yaml:"port"`
	Database         database.Config `yaml:"database"`
}

// Load builds the configuration from env-backed defaults, then overlays the
// YAML file at path when path is non-empty.
func Load(path string) (*Config, error) {
	cfg := &Config{
		FeedURL:          util.GetEnvDefault("KEV_FEED_URL", catalog.DefaultFeedURL),
		FetchTimeoutSec:  10,
		DataDir:          util.GetEnvDefault("KEV_DATA_DIR", "local"),
		WebhookFile:      util.GetEnvDefault("KEV_WEBHOOK_FILE", "webhooks.conf"),
		WatchIntervalSec: 3600,
		Port:             util.GetEnvDefault("KEV_PORT", "3000"),
		Database: database.Config{
			Host:     util.GetEnvDefault("ARANGO_HOST", "localhost"),
			Port:     util.GetEnvDefault("ARANGO_PORT", "8529"),
			User:     util.GetEnvDefault("ARANGO_USER", "root"),
			Password: util.GetEnvDefault("ARANGO_PASS", ""),
			URL:      os.Getenv("ARANGO_URL"),
			Name:     util.GetEnvDefault("ARANGO_DB", "kevwatch"),
		},
	}

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if cfg.Database.URL == "" {
		cfg.Database.URL = "http://" + cfg.Database.Host + ":" + cfg.Database.Port
	}

	return cfg, nil
}

// FetchTimeout returns the feed HTTP timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// WatchInterval returns the daemon sync interval as a duration.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.WatchIntervalSec) * time.Second
}

// SnapshotPath is where the last fetched raw catalog payload lives.
func (c *Config) SnapshotPath() string {
	return filepath.Join(c.DataDir, "kev_catalog.json")
}
