package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from files and environment variables.
type Config struct {
	AppName  string `mapstructure:"app_name"`
	Env      string `mapstructure:"app_env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`

	FeedURL     string `mapstructure:"feed_url"`
	FeedSource  string `mapstructure:"feed_source"`
	RSS2JSONURL string `mapstructure:"rss2json_url"`

	HTTPTimeoutSeconds   int64         `mapstructure:"http_timeout_seconds"`
	HTTPTimeout          time.Duration `mapstructure:"-"`
	HTTPRetryCount       int           `mapstructure:"http_retry_count"`
	UserAgent            string        `mapstructure:"user_agent"`
	AllowPrivateNetworks bool          `mapstructure:"allow_private_networks"`

	RewriteEager       bool   `mapstructure:"rewrite_eager"`
	RewriteConcurrency int    `mapstructure:"rewrite_concurrency"`
	DeezerLegacyPlayer bool   `mapstructure:"embed_deezer_legacy"`
	FallbackText       string `mapstructure:"fallback_text"`
	LoadingText        string `mapstructure:"loading_text"`

	PublishersFile      string        `mapstructure:"publishers_file"`
	WarmIntervalSeconds int64         `mapstructure:"warm_interval"`
	WarmInterval        time.Duration `mapstructure:"-"`

	StorageType            string        `mapstructure:"storage_type"`
	BBoltPath              string        `mapstructure:"bbolt_path"`
	StorageTTLSeconds      int64         `mapstructure:"storage_ttl_seconds"`
	StorageCleanupSeconds  int64         `mapstructure:"storage_cleanup_interval_seconds"`
	StorageTTL             time.Duration `mapstructure:"-"`
	StorageCleanupInterval time.Duration `mapstructure:"-"`
}

// DefaultUserAgent mimics a desktop browser; several providers reject library agents.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Load reads configuration from environment variables and config files.
func Load() (*Config, error) {
	_ = godotenv.Load("configs/.env")

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app_name", "horizonti-reader")
	v.SetDefault("app_env", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("http_addr", ":8080")

	v.SetDefault("feed_url", "https://medium.com/feed/horizonti")
	v.SetDefault("feed_source", "rss2json")
	v.SetDefault("rss2json_url", "https://api.rss2json.com/v1/api.json")

	v.SetDefault("http_timeout_seconds", 8)
	v.SetDefault("http_retry_count", 0)
	v.SetDefault("user_agent", DefaultUserAgent)
	v.SetDefault("allow_private_networks", false)

	v.SetDefault("rewrite_eager", false)
	v.SetDefault("rewrite_concurrency", 6)
	v.SetDefault("embed_deezer_legacy", false)
	v.SetDefault("fallback_text", "Содржината не може да се вчита")
	v.SetDefault("loading_text", "Се вчитува…")

	v.SetDefault("publishers_file", "./configs/publishers.yaml")
	v.SetDefault("warm_interval", 900) // seconds

	v.SetDefault("storage_type", "memory")
	v.SetDefault("bbolt_path", "./data/warmer.db")
	v.SetDefault("storage_ttl_seconds", int64((30*24*time.Hour)/time.Second))
	v.SetDefault("storage_cleanup_interval_seconds", int64((12*time.Hour)/time.Second))
}

func (cfg *Config) normalize() error {
	cfg.FeedURL = strings.TrimSpace(cfg.FeedURL)
	if cfg.FeedURL == "" {
		return fmt.Errorf("feed_url is required")
	}
	cfg.FeedSource = strings.ToLower(strings.TrimSpace(cfg.FeedSource))

	if cfg.HTTPTimeoutSeconds <= 0 {
		return fmt.Errorf("invalid http_timeout_seconds (must be positive seconds)")
	}
	cfg.HTTPTimeout = time.Duration(cfg.HTTPTimeoutSeconds) * time.Second

	if cfg.HTTPRetryCount < 0 || cfg.HTTPRetryCount > 1 {
		return fmt.Errorf("invalid http_retry_count (must be 0 or 1)")
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RewriteConcurrency <= 0 {
		return fmt.Errorf("invalid rewrite_concurrency (must be positive)")
	}

	if cfg.WarmIntervalSeconds <= 0 {
		return fmt.Errorf("invalid warm_interval (must be positive seconds)")
	}
	cfg.WarmInterval = time.Duration(cfg.WarmIntervalSeconds) * time.Second

	if cfg.StorageTTLSeconds <= 0 {
		return fmt.Errorf("invalid storage_ttl_seconds (must be positive seconds)")
	}
	if cfg.StorageCleanupSeconds <= 0 {
		return fmt.Errorf("invalid storage_cleanup_interval_seconds (must be positive seconds)")
	}
	cfg.StorageTTL = time.Duration(cfg.StorageTTLSeconds) * time.Second
	cfg.StorageCleanupInterval = time.Duration(cfg.StorageCleanupSeconds) * time.Second

	return nil
}
