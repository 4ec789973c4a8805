package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config represents application configuration
type Config struct {
	Telegram TelegramConfig `envconfig:"TELEGRAM"`
	Upstream UpstreamConfig `envconfig:"UPSTREAM"`
	Charts   ChartsConfig   `envconfig:"CHARTS"`
	Health   HealthConfig   `envconfig:"HEALTH"`
	Logging  LoggingConfig  `envconfig:"LOGGING"`
}

// TelegramConfig represents Telegram bot configuration
type TelegramConfig struct {
	BotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// Usernames allowed to run /restart (without the leading @)
	AdminUsernames []string `envconfig:"TELEGRAM_ADMIN_USERNAMES" default:"saronqw,gilevAn"`
	UpdateTimeout  int      `envconfig:"TELEGRAM_UPDATE_TIMEOUT" default:"60"`
}

// UpstreamConfig represents the news/analyzer API endpoints
type UpstreamConfig struct {
	NewsURL   string        `envconfig:"UPSTREAM_NEWS_URL" default:"http://127.0.0.1:8000/api/v1/rest_api/lastnews/"`
	TrendsURL string        `envconfig:"UPSTREAM_TRENDS_URL" default:"http://127.0.0.1:8000/analyzer/keywords"`
	Timeout   time.Duration `envconfig:"UPSTREAM_TIMEOUT" default:"10s"`
}

// ChartsConfig represents the static charts page link
type ChartsConfig struct {
	URL string `envconfig:"CHARTS_URL" default:"46.180.235.39/analyzer/"`
}

// HealthConfig represents the health probe server
type HealthConfig struct {
	Enabled bool   `envconfig:"HEALTH_ENABLED" default:"true"`
	Port    string `envconfig:"HEALTH_PORT" default:"8080"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
	File  string `envconfig:"LOG_FILE" default:""`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks if configuration is valid
func (c *Config) Validate() error {
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram bot token is required")
	}
	if c.Upstream.NewsURL == "" {
		return fmt.Errorf("upstream news URL is required")
	}
	if c.Upstream.TrendsURL == "" {
		return fmt.Errorf("upstream trends URL is required")
	}
	if c.Upstream.Timeout <= 0 {
		return fmt.Errorf("upstream timeout must be positive")
	}
	return nil
}
