// Package config loads and validates service configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cividex/portalwatch/internal/lease"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Ops      OpsConfig      `mapstructure:"ops"`
	Scrape   ScrapeConfig   `mapstructure:"scrape"`
	Worker   WorkerConfig   `mapstructure:"worker"`
	Store    StoreConfig    `mapstructure:"store"`
	RawStore RawStoreConfig `mapstructure:"rawstore"`
	Lease    LeaseConfig    `mapstructure:"lease"`
	Monitor  MonitorConfig  `mapstructure:"monitor"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// OpsConfig controls the observability HTTP listener.
type OpsConfig struct {
	Port int `mapstructure:"port"`
}

// ScrapeConfig governs adapter fetch behavior.
type ScrapeConfig struct {
	UserAgent        string `mapstructure:"user_agent"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
	RequestGapMs     int    `mapstructure:"request_gap_ms"`
	MaxRetries       int    `mapstructure:"max_retries"`
	BatchConcurrency int    `mapstructure:"batch_concurrency"`
	BatchSize        int    `mapstructure:"batch_size"`
	LeaseTTLSeconds  int    `mapstructure:"lease_ttl_seconds"`
	SoftLimitSeconds int    `mapstructure:"soft_limit_seconds"`
	HardLimitSeconds int    `mapstructure:"hard_limit_seconds"`
}

// WorkerConfig governs dispatch queue consumption.
type WorkerConfig struct {
	Count      int `mapstructure:"count"`
	QueueDepth int `mapstructure:"queue_depth"`
}

// StoreConfig selects and configures the run/record persistence layer.
type StoreConfig struct {
	Provider     string `mapstructure:"provider"`
	DSN          string `mapstructure:"dsn"`
	RunsTable    string `mapstructure:"runs_table"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

// RawStoreConfig sets where raw record batches land.
type RawStoreConfig struct {
	BaseDir string `mapstructure:"base_dir"`
}

// LeaseConfig selects the per-source run lease backend.
type LeaseConfig struct {
	Provider string            `mapstructure:"provider"`
	Redis    lease.RedisConfig `mapstructure:"redis"`
}

// MonitorConfig tunes dashboard windows and chronic detection.
type MonitorConfig struct {
	WindowHours        int `mapstructure:"window_hours"`
	ChronicMinFailures int `mapstructure:"chronic_min_failures"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("PORTALWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ops.port", 8080)
	v.SetDefault("scrape.user_agent", "portalwatch-bot/0.1")
	v.SetDefault("scrape.timeout_seconds", 30)
	v.SetDefault("scrape.request_gap_ms", 1000)
	v.SetDefault("scrape.max_retries", 3)
	v.SetDefault("scrape.batch_concurrency", 5)
	v.SetDefault("scrape.batch_size", 10)
	v.SetDefault("scrape.lease_ttl_seconds", 900)
	v.SetDefault("scrape.soft_limit_seconds", 540)
	v.SetDefault("scrape.hard_limit_seconds", 600)
	v.SetDefault("worker.count", 4)
	v.SetDefault("worker.queue_depth", 256)
	v.SetDefault("store.provider", "memory")
	v.SetDefault("store.runs_table", "scrape_runs")
	v.SetDefault("store.max_open_conns", 8)
	v.SetDefault("rawstore.base_dir", "data/raw")
	v.SetDefault("lease.provider", "memory")
	v.SetDefault("lease.redis.addr", "localhost:6379")
	v.SetDefault("lease.redis.db", 0)
	v.SetDefault("monitor.window_hours", 24)
	v.SetDefault("monitor.chronic_min_failures", 3)
	v.SetDefault("logging.development", true)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Ops.Port <= 0 {
		return fmt.Errorf("ops.port must be > 0")
	}
	if c.Scrape.TimeoutSeconds <= 0 {
		return fmt.Errorf("scrape.timeout_seconds must be > 0")
	}
	if c.Scrape.BatchConcurrency <= 0 {
		return fmt.Errorf("scrape.batch_concurrency must be > 0")
	}
	if c.Scrape.HardLimitSeconds < c.Scrape.SoftLimitSeconds {
		return fmt.Errorf("scrape.hard_limit_seconds must be >= scrape.soft_limit_seconds")
	}
	if c.Worker.Count <= 0 {
		return fmt.Errorf("worker.count must be > 0")
	}
	switch c.Store.Provider {
	case "memory":
	case "postgres":
		if c.Store.DSN == "" {
			return fmt.Errorf("store.dsn must be set when store.provider is postgres")
		}
	default:
		return fmt.Errorf("store.provider must be memory or postgres")
	}
	switch c.Lease.Provider {
	case "memory":
	case "redis":
		if c.Lease.Redis.Addr == "" {
			return fmt.Errorf("lease.redis.addr must be set when lease.provider is redis")
		}
	default:
		return fmt.Errorf("lease.provider must be memory or redis")
	}
	return nil
}

// ScrapeTimeout converts the adapter timeout into a duration.
func (c Config) ScrapeTimeout() time.Duration {
	return time.Duration(c.Scrape.TimeoutSeconds) * time.Second
}

// RequestGap converts the per-portal request gap into a duration.
func (c Config) RequestGap() time.Duration {
	return time.Duration(c.Scrape.RequestGapMs) * time.Millisecond
}

// LeaseTTL converts the run lease lifetime into a duration.
func (c Config) LeaseTTL() time.Duration {
	return time.Duration(c.Scrape.LeaseTTLSeconds) * time.Second
}

// SoftLimit converts the soft run ceiling into a duration.
func (c Config) SoftLimit() time.Duration {
	return time.Duration(c.Scrape.SoftLimitSeconds) * time.Second
}

// HardLimit converts the hard run ceiling into a duration.
func (c Config) HardLimit() time.Duration {
	return time.Duration(c.Scrape.HardLimitSeconds) * time.Second
}

// MonitorWindow converts the dashboard lookback into a duration.
func (c Config) MonitorWindow() time.Duration {
	return time.Duration(c.Monitor.WindowHours) * time.Hour
}
