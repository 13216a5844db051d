package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fleetsync/fleetsync/pkg/fields"
)

// config is the on-disk shape of the -c/--config file: remote-inventory
// connection details, default SSH credentials, and optional per-kind field
// overrides (pkg/fields.OverrideConfig). Nothing here is required — every
// field has a workable zero value or an environment-variable fallback, so
// a bare `fleetsync devices -d devices.json` works with no config file at
// all.
type config struct {
	Netbox struct {
		BaseURL     string        `yaml:"base_url"`
		Token       string        `yaml:"token"`
		HTTPTimeout time.Duration `yaml:"http_timeout"`
		Retries     int           `yaml:"retries"`
	} `yaml:"netbox"`

	Credentials struct {
		Username     string `yaml:"username"`
		Password     string `yaml:"password"`
		EnableSecret string `yaml:"enable_secret"`
	} `yaml:"credentials"`

	RemoteInventoryTenant string `yaml:"remote_inventory_tenant"`
	MaxWorkers            int    `yaml:"max_workers"`
	PipelinesDir          string `yaml:"pipelines_dir"`
	HistoryFile           string `yaml:"history_file"`

	// Cache configures the optional Redis-backed command-output cache
	// (pkg/statecache). Leaving Addr unset disables caching.
	Cache struct {
		Addr       string `yaml:"addr"`
		Password   string `yaml:"password"`
		DB         int    `yaml:"db"`
		TTLSeconds int    `yaml:"ttl_seconds"`
	} `yaml:"cache"`

	Fields fields.OverrideConfig `yaml:"field_overrides"`
}

// pipelinesDir returns the configured pipeline catalog directory, or the
// "pipelines" default when the config file leaves it unset.
func (c config) pipelinesDir() string {
	if c.PipelinesDir != "" {
		return c.PipelinesDir
	}
	return "pipelines"
}

// historyFile returns the configured audit-trail file path, or the
// "history.json" default when the config file leaves it unset.
func (c config) historyFile() string {
	if c.HistoryFile != "" {
		return c.HistoryFile
	}
	return "history.json"
}

func loadConfig(path string) (config, error) {
	var cfg config
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

func envOrConfig(envVar, fromConfig string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fromConfig
}
