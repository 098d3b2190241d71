package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultServerPort    = 8788
	defaultServerTimeout = 30 * time.Second

	defaultNotionBaseURL = "https://api.notion.com/v1"
	defaultNotionVersion = "2022-06-28"
	defaultNotionTimeout = 30 * time.Second
	defaultPageSize      = 100

	defaultRedisAddress = "localhost:6379"

	defaultRateLimitMax    = 60
	defaultRateLimitWindow = 60 * time.Second

	defaultListTTL   = 5 * time.Minute
	defaultDetailTTL = time.Hour
)

type Config struct {
	Debug     bool            `env:"APP_DEBUG"  yaml:"debug"`
	Server    ServerConfig    `yaml:"server"`
	Notion    NotionConfig    `yaml:"notion"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Cache     CacheConfig     `yaml:"cache"`
	Images    ImagesConfig    `yaml:"images"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

// NotionConfig holds credentials and tunables for the upstream Notion API.
// The API key and database IDs are deployment secrets and come from env only.
type NotionConfig struct {
	APIKey            string        `env:"NOTION_API_KEY"             yaml:"-"`
	PostsDatabaseID   string        `env:"NOTION_DATABASE_ID"         yaml:"-"`
	RecipesDatabaseID string        `env:"NOTION_RECIPES_DATABASE_ID" yaml:"-"`
	BaseURL           string        `yaml:"base_url"`
	Version           string        `yaml:"version"`
	PageSize          int           `yaml:"page_size"`
	Timeout           time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"  yaml:"address"`
	Password string `env:"REDIS_PASSWORD" yaml:"password"`
	DB       int    `env:"REDIS_DB"       yaml:"db"`
	Enabled  bool   `env:"REDIS_ENABLED"  yaml:"enabled"`
}

type RateLimitConfig struct {
	MaxRequests int           `env:"RATE_LIMIT_MAX" yaml:"max_requests"`
	Window      time.Duration `yaml:"window"`
}

// CacheConfig holds per-endpoint response cache TTLs. ImageTTL of zero
// means cached image bytes never expire; they are refreshed on miss.
type CacheConfig struct {
	ListTTL   time.Duration `yaml:"list_ttl"`
	DetailTTL time.Duration `yaml:"detail_ttl"`
	ImageTTL  time.Duration `yaml:"image_ttl"`
}

type ImagesConfig struct {
	AllowedDomains []string `env:"IMAGE_ALLOWED_DOMAINS" yaml:"allowed_domains"`
}

func (c *Config) Validate() error {
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Notion.APIKey == "" {
		return errors.New("NOTION_API_KEY is required")
	}
	if c.Notion.PostsDatabaseID == "" {
		return errors.New("NOTION_DATABASE_ID is required")
	}
	if c.Notion.RecipesDatabaseID == "" {
		return errors.New("NOTION_RECIPES_DATABASE_ID is required")
	}
	if c.Redis.Enabled && c.Redis.Address == "" {
		return errors.New("redis.address is required when redis is enabled")
	}
	return nil
}

// Load reads the YAML config at path, applies defaults, then env overrides.
func Load(path string) (*Config, error) {
	cfg, err := loadWithDefaults(path, setDefaults)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{
			"https://kgeng.dev",
			"https://www.kgeng.dev",
			"http://localhost:8788",
			"http://127.0.0.1:8788",
		}
	}
	if cfg.Notion.BaseURL == "" {
		cfg.Notion.BaseURL = defaultNotionBaseURL
	}
	if cfg.Notion.Version == "" {
		cfg.Notion.Version = defaultNotionVersion
	}
	if cfg.Notion.PageSize == 0 {
		cfg.Notion.PageSize = defaultPageSize
	}
	if cfg.Notion.Timeout == 0 {
		cfg.Notion.Timeout = defaultNotionTimeout
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	if cfg.RateLimit.MaxRequests == 0 {
		cfg.RateLimit.MaxRequests = defaultRateLimitMax
	}
	if cfg.RateLimit.Window == 0 {
		cfg.RateLimit.Window = defaultRateLimitWindow
	}
	if cfg.Cache.ListTTL == 0 {
		cfg.Cache.ListTTL = defaultListTTL
	}
	if cfg.Cache.DetailTTL == 0 {
		cfg.Cache.DetailTTL = defaultDetailTTL
	}
	if len(cfg.Images.AllowedDomains) == 0 {
		cfg.Images.AllowedDomains = []string{
			"prod-files-secure.s3.us-west-2.amazonaws.com",
			"s3.us-west-2.amazonaws.com",
			"secure.notion-static.com",
			"images.unsplash.com",
		}
	}
}
