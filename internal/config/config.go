package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// PlaceholderAPIKey is the sample key shipped in example configs. It never
// enables the primary API.
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// Config holds all application configuration.
type Config struct {
	Server struct {
		ListenAddr         string `yaml:"listen_addr"`
		ShutdownTimeoutSec int    `yaml:"shutdown_timeout_sec"`
	} `yaml:"server"`
	AlphaVantage struct {
		BaseURL     string `yaml:"base_url"`
		APIKey      string `yaml:"api_key"`
		CooldownSec int    `yaml:"cooldown_sec"`
	} `yaml:"alpha_vantage"`
	Yahoo struct {
		BaseURL string `yaml:"base_url"`
		Suffix  string `yaml:"suffix"`
	} `yaml:"yahoo"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Cache struct {
		RedisAddr string `yaml:"redis_addr"`
		TTLSec    int    `yaml:"ttl_sec"`
		MaxItems  int    `yaml:"max_items"`
	} `yaml:"cache"`
	Schedule struct {
		IngestCron         string `yaml:"ingest_cron"`
		IngestLookbackDays int    `yaml:"ingest_lookback_days"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// A missing file is not an error.
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

	// Environment variable overrides
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_API_KEY"); v != "" {
		cfg.AlphaVantage.APIKey = v
	}
	if v := os.Getenv("ALPHA_VANTAGE_BASE_URL"); v != "" {
		cfg.AlphaVantage.BaseURL = v
	}
	if v := os.Getenv("PRIMARY_COOLDOWN_SEC"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("PRIMARY_COOLDOWN_SEC: %w", err)
		}
		cfg.AlphaVantage.CooldownSec = n
	}
	if v := os.Getenv("YAHOO_BASE_URL"); v != "" {
		cfg.Yahoo.BaseURL = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("CRON_INGEST"); v != "" {
		cfg.Schedule.IngestCron = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8000"
	}
	if cfg.Server.ShutdownTimeoutSec == 0 {
		cfg.Server.ShutdownTimeoutSec = 10
	}
	if cfg.AlphaVantage.CooldownSec == 0 {
		cfg.AlphaVantage.CooldownSec = 12
	}
	if cfg.Yahoo.Suffix == "" {
		cfg.Yahoo.Suffix = ".NS"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/findata.db"
	}
	if cfg.Cache.TTLSec == 0 {
		cfg.Cache.TTLSec = 300
	}
	if cfg.Cache.MaxItems == 0 {
		cfg.Cache.MaxItems = 512
	}
	if cfg.Schedule.IngestCron == "" {
		cfg.Schedule.IngestCron = "0 30 18 * * 1-5"
	}
	if cfg.Schedule.IngestLookbackDays == 0 {
		cfg.Schedule.IngestLookbackDays = 7
	}

	return cfg, nil
}

// PrimaryEnabled reports whether the paid primary API should be consulted.
func (c *Config) PrimaryEnabled() bool {
	return c.AlphaVantage.APIKey != "" && c.AlphaVantage.APIKey != PlaceholderAPIKey
}

// NotifyEnabled reports whether ingest reports are sent to Telegram.
func (c *Config) NotifyEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

func (c *Config) Cooldown() time.Duration {
	return time.Duration(c.AlphaVantage.CooldownSec) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.Server.ShutdownTimeoutSec) * time.Second
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("server.listen_addr is required")
	}
	if c.Database.SQLitePath == "" {
		return fmt.Errorf("database.sqlite_path is required")
	}
	if c.AlphaVantage.CooldownSec < 0 {
		return fmt.Errorf("alpha_vantage.cooldown_sec must not be negative")
	}
	if c.Cache.TTLSec < 0 {
		return fmt.Errorf("cache.ttl_sec must not be negative")
	}
	if c.Schedule.IngestLookbackDays < 1 {
		return fmt.Errorf("schedule.ingest_lookback_days must be positive")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.IngestCron); err != nil {
		return fmt.Errorf("schedule.ingest_cron: %w", err)
	}
	return nil
}
