package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration. Values come from the YAML
// file, then environment overrides, then defaults.
type Config struct {
	Store struct {
		BaseURL   string `yaml:"base_url" env:"BASE_URL"`
		AuthToken string `yaml:"auth_token" env:"AUTH_TOKEN"`
		RootPath  string `yaml:"root_path" env:"ROOT_PATH"`
		// LivePath is the collaborator-owned live-metrics path, read-only.
		LivePath string `yaml:"live_path" env:"LIVE_PATH"`
	} `yaml:"store" envPrefix:"STORE_"`

	Ads struct {
		BaseURL string `yaml:"base_url" env:"BASE_URL"`
		// Endpoint paths are optional; an empty path disables that call.
		UserInfoURL     string `yaml:"user_info_url" env:"USER_INFO_URL"`
		BalanceURL      string `yaml:"balance_url" env:"BALANCE_URL"`
		CampaignListURL string `yaml:"campaign_list_url" env:"CAMPAIGN_LIST_URL"`
		SetBudgetURL    string `yaml:"set_budget_url" env:"SET_BUDGET_URL"`
		PauseURL        string `yaml:"pause_url" env:"PAUSE_URL"`
		ResumeURL       string `yaml:"resume_url" env:"RESUME_URL"`
	} `yaml:"ads" envPrefix:"ADS_"`

	Directory struct {
		CSVURL      string `yaml:"csv_url" env:"CSV_URL"`
		RefreshCron string `yaml:"refresh_cron" env:"REFRESH_CRON"`
	} `yaml:"directory" envPrefix:"DIRECTORY_"`

	Timing struct {
		FetchIntervalSec    int `yaml:"fetch_interval_sec" env:"FETCH_INTERVAL_SEC"`
		SnapshotIntervalSec int `yaml:"snapshot_interval_sec" env:"SNAPSHOT_INTERVAL_SEC"`
	} `yaml:"timing" envPrefix:"TIMING_"`

	Database struct {
		SQLitePath string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	} `yaml:"database"`

	Ops struct {
		// Addr is the ops HTTP listen address; empty disables the server.
		Addr string `yaml:"addr" env:"OPS_ADDR"`
	} `yaml:"ops"`

	Proxy string `yaml:"proxy" env:"HTTPS_PROXY"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides, then defaults. A missing file is not an error; overrides and
// defaults still apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides.
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// Defaults.
	if cfg.Store.RootPath == "" {
		cfg.Store.RootPath = "ads_monitor"
	}
	if cfg.Store.LivePath == "" {
		cfg.Store.LivePath = "live_metrics"
	}
	if cfg.Directory.RefreshCron == "" {
		cfg.Directory.RefreshCron = "@every 1h"
	}
	if cfg.Timing.FetchIntervalSec <= 0 {
		cfg.Timing.FetchIntervalSec = 180
	}
	if cfg.Timing.SnapshotIntervalSec <= 0 {
		cfg.Timing.SnapshotIntervalSec = 300
	}

	return cfg, nil
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Store.BaseURL == "" {
		return fmt.Errorf("store.base_url is required")
	}
	if c.Ads.BaseURL == "" && c.hasAdsEndpoint() {
		return fmt.Errorf("ads.base_url is required when ads endpoints are configured")
	}
	if c.Timing.FetchIntervalSec < 30 {
		return fmt.Errorf("timing.fetch_interval_sec must be at least 30")
	}
	return nil
}

// AdsConfigured reports whether the remote ads capability is present at all.
func (c *Config) AdsConfigured() bool {
	return c.Ads.BaseURL != "" && c.hasAdsEndpoint()
}

func (c *Config) hasAdsEndpoint() bool {
	return c.Ads.UserInfoURL != "" || c.Ads.BalanceURL != "" || c.Ads.CampaignListURL != "" ||
		c.Ads.SetBudgetURL != "" || c.Ads.PauseURL != "" || c.Ads.ResumeURL != ""
}
