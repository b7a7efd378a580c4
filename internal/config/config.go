// Package config loads the YAML configuration file and applies environment
// overrides and defaults.
package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider configures the market data client.
type Provider struct {
	BaseURL            string `yaml:"base_url"`
	APIKey             string `yaml:"api_key"`
	RateLimitPerMinute int    `yaml:"rate_limit_per_minute"`
	TimeoutSeconds     int    `yaml:"timeout_seconds"`
}

// Database selects and configures the ledger backend.
type Database struct {
	Backend     string `yaml:"backend"` // memory, redis, postgres
	RedisURL    string `yaml:"redis_url"`
	PostgresURL string `yaml:"postgres_url"`
}

// Scanner tunes the fetch and trading loop.
type Scanner struct {
	EnableReplay         bool    `yaml:"enable_replay"`
	ReplayDate           string  `yaml:"replay_date"` // yyyyMMdd
	BatchSize            int     `yaml:"batch_size"`
	StrikeCount          int     `yaml:"strike_count"`
	DaysToExpirationMax  int     `yaml:"days_to_expiration_max"`
	BatchTimeoutSeconds  int     `yaml:"batch_timeout_seconds"`
	ScanFrequencySeconds int     `yaml:"scan_frequency_seconds"`
	EnableRebalance      bool    `yaml:"enable_rebalance"`
	HedgeSkew            float64 `yaml:"hedge_skew"`
	EnableBSMSignal      bool    `yaml:"enable_bsm_signal"`
}

// Alerts configures end-of-day report delivery.
type Alerts struct {
	Enabled       bool     `yaml:"enabled"`
	WebhookURL    string   `yaml:"webhook_url"`
	Sender        string   `yaml:"sender"`
	Recipients    []string `yaml:"recipients"`
	EODReportTime string   `yaml:"eod_report_time"` // HH:MM:SS local
}

// Metrics configures the Prometheus endpoint.
type Metrics struct {
	Addr string `yaml:"addr"`
}

// Config is the full application configuration.
type Config struct {
	Provider Provider `yaml:"provider"`
	Database Database `yaml:"database"`
	Scanner  Scanner  `yaml:"scanner"`
	Alerts   Alerts   `yaml:"alerts"`
	Metrics  Metrics  `yaml:"metrics"`
	Tickers  []string `yaml:"tickers"`
}

// Load reads the configuration file, layers in .env and environment
// overrides, and fills defaults. Secrets belong in the environment, not the
// YAML file.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if v := os.Getenv("OPTRADER_API_KEY"); v != "" {
		cfg.Provider.APIKey = v
	}
	if v := os.Getenv("OPTRADER_WEBHOOK_URL"); v != "" {
		cfg.Alerts.WebhookURL = v
	}
	if v := os.Getenv("OPTRADER_REDIS_URL"); v != "" {
		cfg.Database.RedisURL = v
	}
	if v := os.Getenv("OPTRADER_POSTGRES_URL"); v != "" {
		cfg.Database.PostgresURL = v
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Database.Backend == "" {
		cfg.Database.Backend = "memory"
	}
	if cfg.Scanner.BatchSize <= 0 {
		cfg.Scanner.BatchSize = 10
	}
	if cfg.Scanner.StrikeCount <= 0 {
		cfg.Scanner.StrikeCount = 20
	}
	if cfg.Scanner.DaysToExpirationMax <= 0 {
		cfg.Scanner.DaysToExpirationMax = 100
	}
	if cfg.Scanner.BatchTimeoutSeconds <= 0 {
		cfg.Scanner.BatchTimeoutSeconds = 20
	}
	if cfg.Scanner.ScanFrequencySeconds <= 0 {
		cfg.Scanner.ScanFrequencySeconds = 60
	}
	if cfg.Scanner.HedgeSkew == 0 {
		cfg.Scanner.HedgeSkew = 1
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9102"
	}
	if cfg.Alerts.EODReportTime == "" {
		cfg.Alerts.EODReportTime = "16:15:00"
	}
}

func validate(cfg *Config) error {
	switch cfg.Database.Backend {
	case "memory", "redis", "postgres":
	default:
		return fmt.Errorf("unknown database backend %q", cfg.Database.Backend)
	}
	if cfg.Scanner.EnableReplay && cfg.Scanner.ReplayDate == "" {
		return fmt.Errorf("replay enabled but replay_date is empty")
	}
	if len(cfg.Tickers) == 0 {
		return fmt.Errorf("at least one ticker is required")
	}
	return nil
}
