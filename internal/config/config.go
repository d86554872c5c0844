package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Fetcher  FetcherConfig  `yaml:"fetcher"`
	Sources  SourcesConfig  `yaml:"sources"`
	Sync     SyncConfig     `yaml:"sync"`
	HTTP     HTTPConfig     `yaml:"http"`
	LogLevel string         `yaml:"log_level"`
}

// RabbitMQConfig is optional; an empty URL disables publishing.
type RabbitMQConfig struct {
	URL        string `yaml:"url"`
	Exchange   string `yaml:"exchange"`
	RoutingKey string `yaml:"routing_key"`
	QueueName  string `yaml:"queue_name"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
	SSLMode  string `yaml:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

type FetcherConfig struct {
	UserAgent string        `yaml:"user_agent"`
	Timeout   time.Duration `yaml:"timeout"`
	Retry     RetryConfig   `yaml:"retry"`
}

type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
}

type SourcesConfig struct {
	NewsURL     string `yaml:"news_url"`
	RectoratURL string `yaml:"rectorat_url"`
	CentersURL  string `yaml:"centers_url"`
	// Faculties are synced from the resource links of persisted cards.
	FacultiesEnabled bool `yaml:"faculties_enabled"`
}

type SyncConfig struct {
	Schedule       string        `yaml:"schedule"`
	RunTimeout     time.Duration `yaml:"run_timeout"`
	MaxConcurrency int           `yaml:"max_concurrency"`
	UploadPrefix   string        `yaml:"upload_prefix"`
	DefaultImage   string        `yaml:"default_image"`
}

type HTTPConfig struct {
	Addr         string        `yaml:"addr"`
	CacheEntries int           `yaml:"cache_entries"`
	CacheTTL     time.Duration `yaml:"cache_ttl"`
}

func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	return Parse(data)
}

// Parse decodes raw YAML, expanding environment references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	cfg := Config{Sources: SourcesConfig{FacultiesEnabled: true}}
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyEnv()
	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("NEWS_BASE_URL"); v != "" {
		c.Sources.NewsURL = v
	}
	if v := os.Getenv("RECTORAT_BASE_URL"); v != "" {
		c.Sources.RectoratURL = v
	}
	if v := os.Getenv("CENTERS_BASE_URL"); v != "" {
		c.Sources.CentersURL = v
	}
}

func (c *Config) setDefaults() {
	if c.Database.Port == 0 {
		c.Database.Port = 5432
	}
	if c.Database.SSLMode == "" {
		c.Database.SSLMode = "disable"
	}
	if c.RabbitMQ.URL != "" {
		if c.RabbitMQ.Exchange == "" {
			c.RabbitMQ.Exchange = "campus_sync"
		}
		if c.RabbitMQ.RoutingKey == "" {
			c.RabbitMQ.RoutingKey = "cards"
		}
		if c.RabbitMQ.QueueName == "" {
			c.RabbitMQ.QueueName = "portal_cards"
		}
	}
	if c.Fetcher.UserAgent == "" {
		c.Fetcher.UserAgent = "Mozilla/5.0"
	}
	if c.Fetcher.Timeout == 0 {
		c.Fetcher.Timeout = 15 * time.Second
	}
	if c.Fetcher.Retry.MaxAttempts == 0 {
		c.Fetcher.Retry.MaxAttempts = 3
	}
	if c.Fetcher.Retry.InitialBackoff == 0 {
		c.Fetcher.Retry.InitialBackoff = 500 * time.Millisecond
	}
	if c.Fetcher.Retry.MaxBackoff == 0 {
		c.Fetcher.Retry.MaxBackoff = 5 * time.Second
	}
	if c.Sources.NewsURL == "" {
		c.Sources.NewsURL = "https://vsau.org/novini?page=1"
	}
	if c.Sources.RectoratURL == "" {
		c.Sources.RectoratURL = "https://vsau.org/pro-universitet/rektorat"
	}
	if c.Sources.CentersURL == "" {
		c.Sources.CentersURL = "https://vsau.org/pro-universitet/strukturni-pidrozdili"
	}
	if c.Sync.Schedule == "" {
		c.Sync.Schedule = "@every 1h"
	}
	if c.Sync.RunTimeout == 0 {
		c.Sync.RunTimeout = 5 * time.Minute
	}
	if c.Sync.MaxConcurrency == 0 {
		c.Sync.MaxConcurrency = 4
	}
	if c.Sync.UploadPrefix == "" {
		c.Sync.UploadPrefix = "/uploads"
	}
	if c.Sync.DefaultImage == "" {
		c.Sync.DefaultImage = "/img/default_avatar.jpg"
	}
	if c.HTTP.Addr == "" {
		c.HTTP.Addr = ":8080"
	}
	if c.HTTP.CacheEntries == 0 {
		c.HTTP.CacheEntries = 100
	}
	if c.HTTP.CacheTTL == 0 {
		c.HTTP.CacheTTL = 10 * time.Minute
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}
