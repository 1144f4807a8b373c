package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-pkgz/lgr"
	"gopkg.in/yaml.v3"

	"github.com/umputun/podpulse/pkg/feed"
	"github.com/umputun/podpulse/pkg/health"
	"github.com/umputun/podpulse/pkg/repository"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"description=Server configuration"`
	Database DatabaseConfig `yaml:"database" json:"database" jsonschema:"description=Database configuration"`
	Fetch    FetchConfig    `yaml:"fetch" json:"fetch" jsonschema:"description=Feed download configuration"`
	Scan     ScanConfig     `yaml:"scan" json:"scan" jsonschema:"description=Scan pass and schedule configuration"`
	Health   HealthConfig   `yaml:"health" json:"health" jsonschema:"description=Feed health thresholds"`
}

// ServerConfig holds HTTP API settings
type ServerConfig struct {
	Listen   string        `yaml:"listen" json:"listen" jsonschema:"default=:8080,description=HTTP server listen address"`
	Timeout  time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=HTTP server timeout"`
	Throttle int           `yaml:"throttle" json:"throttle" jsonschema:"default=100,minimum=1,description=Maximum concurrent API requests"`
}

// DatabaseConfig holds database settings
type DatabaseConfig struct {
	DSN             string   `yaml:"dsn" json:"dsn" jsonschema:"description=Database connection string"`
	MaxOpenConns    int      `yaml:"max_open_conns" json:"max_open_conns" jsonschema:"default=10,minimum=1,description=Maximum number of open connections"`
	MaxIdleConns    int      `yaml:"max_idle_conns" json:"max_idle_conns" jsonschema:"default=5,minimum=0,description=Maximum number of idle connections"`
	ConnMaxLifetime int      `yaml:"conn_max_lifetime" json:"conn_max_lifetime" jsonschema:"default=3600,minimum=0,description=Connection maximum lifetime in seconds"`
	SelfHostedHosts []string `yaml:"self_hosted_hosts" json:"self_hosted_hosts" jsonschema:"description=Extra hosts of self-hosted feeds excluded from scanning"`
}

// FetchConfig holds feed download settings
type FetchConfig struct {
	UserAgent          string        `yaml:"user_agent" json:"user_agent" jsonschema:"description=User agent sent to feed hosts"`
	ConnectTimeout     time.Duration `yaml:"connect_timeout" json:"connect_timeout" jsonschema:"default=10s,description=Connect timeout"`
	Timeout            time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s,description=Total request timeout"`
	MaxRedirects       int           `yaml:"max_redirects" json:"max_redirects" jsonschema:"default=5,minimum=1,maximum=20,description=Maximum redirects followed"`
	MaxBodySize        int64         `yaml:"max_body_size" json:"max_body_size" jsonschema:"default=20971520,minimum=1024,description=Maximum feed body size in bytes"`
	InsecureSkipVerify bool          `yaml:"insecure_skip_verify" json:"insecure_skip_verify" jsonschema:"default=false,description=Skip TLS verification (local setups only)"`
}

// ScanConfig holds scan pass and scheduling settings
type ScanConfig struct {
	Delay         time.Duration `yaml:"delay" json:"delay" jsonschema:"default=2s,description=Delay between requests (per domain with several workers)"`
	Workers       int           `yaml:"workers" json:"workers" jsonschema:"default=1,minimum=1,maximum=32,description=Concurrent feed checks, 1 is strictly sequential"`
	LazyInterval  time.Duration `yaml:"lazy_interval" json:"lazy_interval" jsonschema:"default=5m,description=Minimal interval between passes started by API trigger"`
	CronInterval  time.Duration `yaml:"cron_interval" json:"cron_interval" jsonschema:"default=30m,description=Minimal interval between periodic passes"`
	CheckInterval time.Duration `yaml:"check_interval" json:"check_interval" jsonschema:"default=1m,description=How often the server checks whether a periodic pass is due"`
	MaxEntries    int           `yaml:"max_entries" json:"max_entries" jsonschema:"default=50,minimum=1,description=Feed entries examined for episode details"`
	MaxTextSize   int           `yaml:"max_text_size" json:"max_text_size" jsonschema:"default=4000,minimum=16,description=Maximum length of stored title and description"`
}

// HealthConfig holds health status thresholds
type HealthConfig struct {
	HealthyMinRate      float64 `yaml:"healthy_min_rate" json:"healthy_min_rate" jsonschema:"default=95,minimum=0,maximum=100,description=Minimal success rate of a healthy feed"`
	HealthyMaxFailures  int     `yaml:"healthy_max_failures" json:"healthy_max_failures" jsonschema:"default=3,minimum=1,description=Consecutive failures that end healthy status"`
	WarningMinRate      float64 `yaml:"warning_min_rate" json:"warning_min_rate" jsonschema:"default=80,minimum=0,maximum=100,description=Minimal success rate of a warning feed"`
	WarningMaxFailures  int     `yaml:"warning_max_failures" json:"warning_max_failures" jsonschema:"default=5,minimum=1,description=Consecutive failures that end warning status"`
	DegradedMinRate     float64 `yaml:"degraded_min_rate" json:"degraded_min_rate" jsonschema:"default=50,minimum=0,maximum=100,description=Minimal success rate of a degraded feed"`
	DegradedMaxFailures int     `yaml:"degraded_max_failures" json:"degraded_max_failures" jsonschema:"default=10,minimum=1,description=Consecutive failures that end degraded status"`
	AutoDisableAfter    int     `yaml:"auto_disable_after" json:"auto_disable_after" jsonschema:"default=10,minimum=0,description=Consecutive failures that disable a feed"`
	NoAutoDisable       bool    `yaml:"no_auto_disable" json:"no_auto_disable" jsonschema:"default=false,description=Never disable failing feeds"`
	ErrorHistory        int     `yaml:"error_history" json:"error_history" jsonschema:"default=20,minimum=0,description=Error entries kept per feed"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return finalize(&cfg)
}

// Default returns configuration with all defaults, used when no config file is given
func Default() *Config {
	cfg := &Config{}
	cfg.setDefaults()
	return cfg
}

func finalize(cfg *Config) (*Config, error) {
	cfg.setDefaults()

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	// schema verification is supplementary, log and go on
	if err := VerifyAgainstSchema(cfg); err != nil {
		lgr.Printf("[WARN] schema validation failed: %v", err)
	}
	return cfg, nil
}

func (c *Config) setDefaults() {
	// server
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.Timeout == 0 {
		c.Server.Timeout = 30 * time.Second
	}
	if c.Server.Throttle == 0 {
		c.Server.Throttle = 100
	}

	// database
	if c.Database.DSN == "" {
		c.Database.DSN = repository.DefaultDSN
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = 5
	}
	if c.Database.ConnMaxLifetime == 0 {
		c.Database.ConnMaxLifetime = 3600
	}

	// fetch
	if c.Fetch.UserAgent == "" {
		c.Fetch.UserAgent = feed.DefaultUserAgent
	}
	if c.Fetch.ConnectTimeout == 0 {
		c.Fetch.ConnectTimeout = 10 * time.Second
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = 30 * time.Second
	}
	if c.Fetch.MaxRedirects == 0 {
		c.Fetch.MaxRedirects = 5
	}
	if c.Fetch.MaxBodySize == 0 {
		c.Fetch.MaxBodySize = 20 * 1024 * 1024
	}

	// scan
	if c.Scan.Delay == 0 {
		c.Scan.Delay = 2 * time.Second
	}
	if c.Scan.Workers == 0 {
		c.Scan.Workers = 1
	}
	if c.Scan.LazyInterval == 0 {
		c.Scan.LazyInterval = 5 * time.Minute
	}
	if c.Scan.CronInterval == 0 {
		c.Scan.CronInterval = 30 * time.Minute
	}
	if c.Scan.CheckInterval == 0 {
		c.Scan.CheckInterval = time.Minute
	}
	if c.Scan.MaxEntries == 0 {
		c.Scan.MaxEntries = 50
	}
	if c.Scan.MaxTextSize == 0 {
		c.Scan.MaxTextSize = 4000
	}

	// health, thresholds left at zero take the stock policy values
	def := health.DefaultPolicy()
	h := &c.Health
	if h.HealthyMinRate == 0 {
		h.HealthyMinRate = def.HealthyMinRate
	}
	if h.HealthyMaxFailures == 0 {
		h.HealthyMaxFailures = def.HealthyMaxFailures
	}
	if h.WarningMinRate == 0 {
		h.WarningMinRate = def.WarningMinRate
	}
	if h.WarningMaxFailures == 0 {
		h.WarningMaxFailures = def.WarningMaxFailures
	}
	if h.DegradedMinRate == 0 {
		h.DegradedMinRate = def.DegradedMinRate
	}
	if h.DegradedMaxFailures == 0 {
		h.DegradedMaxFailures = def.DegradedMaxFailures
	}
	if h.AutoDisableAfter == 0 {
		h.AutoDisableAfter = def.AutoDisableAfter
	}
	if h.ErrorHistory == 0 {
		h.ErrorHistory = def.ErrorHistory
	}
}

// validate checks configuration for correctness
func validate(cfg *Config) error {
	// validate server config
	if cfg.Server.Timeout < time.Second {
		return errors.New("server timeout must be at least 1 second")
	}
	if cfg.Server.Throttle < 1 {
		return errors.New("server throttle must be at least 1")
	}

	// validate fetch config
	if cfg.Fetch.ConnectTimeout <= 0 || cfg.Fetch.Timeout <= 0 {
		return errors.New("fetch timeouts must be positive")
	}
	if cfg.Fetch.Timeout < cfg.Fetch.ConnectTimeout {
		return errors.New("fetch timeout must not be shorter than connect_timeout")
	}
	if cfg.Fetch.MaxRedirects < 1 {
		return errors.New("fetch max_redirects must be at least 1")
	}

	// validate scan config
	if cfg.Scan.Workers < 1 {
		return errors.New("scan workers must be at least 1")
	}
	if cfg.Scan.Delay < 0 {
		return errors.New("scan delay must be non-negative")
	}
	if cfg.Scan.LazyInterval <= 0 || cfg.Scan.CronInterval <= 0 || cfg.Scan.CheckInterval <= 0 {
		return errors.New("scan intervals must be positive")
	}
	if cfg.Scan.MaxEntries < 1 {
		return errors.New("scan max_entries must be at least 1")
	}

	// validate health thresholds
	if err := cfg.HealthPolicy().Validate(); err != nil {
		return fmt.Errorf("health: %w", err)
	}
	return nil
}

// HealthPolicy returns health thresholds for the tracker
func (c *Config) HealthPolicy() health.Policy {
	h := c.Health
	p := health.Policy{
		HealthyMinRate:      h.HealthyMinRate,
		HealthyMaxFailures:  h.HealthyMaxFailures,
		WarningMinRate:      h.WarningMinRate,
		WarningMaxFailures:  h.WarningMaxFailures,
		DegradedMinRate:     h.DegradedMinRate,
		DegradedMaxFailures: h.DegradedMaxFailures,
		AutoDisableAfter:    h.AutoDisableAfter,
		ErrorHistory:        h.ErrorHistory,
	}
	if h.NoAutoDisable {
		p.AutoDisableAfter = 0
	}
	return p
}

// FetcherConfig returns feed download settings
func (c *Config) FetcherConfig() feed.FetcherConfig {
	return feed.FetcherConfig{
		UserAgent:          c.Fetch.UserAgent,
		ConnectTimeout:     c.Fetch.ConnectTimeout,
		Timeout:            c.Fetch.Timeout,
		MaxRedirects:       c.Fetch.MaxRedirects,
		MaxBodySize:        c.Fetch.MaxBodySize,
		InsecureSkipVerify: c.Fetch.InsecureSkipVerify,
	}
}

// NormalizerConfig returns feed parsing caps
func (c *Config) NormalizerConfig() feed.NormalizerConfig {
	return feed.NormalizerConfig{MaxEntries: c.Scan.MaxEntries, MaxTextSize: c.Scan.MaxTextSize}
}

// RepositoryConfig returns database settings
func (c *Config) RepositoryConfig() repository.Config {
	return repository.Config{
		DSN:             c.Database.DSN,
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(c.Database.ConnMaxLifetime) * time.Second,
		SelfHostedHosts: c.Database.SelfHostedHosts,
	}
}

// GetServerConfig returns HTTP API settings
func (c *Config) GetServerConfig() (listen string, timeout time.Duration, throttle int) {
	return c.Server.Listen, c.Server.Timeout, c.Server.Throttle
}
