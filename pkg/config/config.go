package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Session modes.
const (
	SessionModePerRequest = "per-request"
	SessionModeShared     = "shared"
)

// Cache backends.
const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
)

// Config stores all configuration for the application.
type Config struct {
	Host     string `mapstructure:"HOST"`
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	SessionMode    string `mapstructure:"SESSION_MODE"`
	MaxConcurrency int    `mapstructure:"MAX_CONCURRENCY"`
	ChromePath     string `mapstructure:"CHROME_PATH"`
	Headless       bool   `mapstructure:"HEADLESS"`
	Proxies        string `mapstructure:"PROXIES"` // comma separated

	CacheBackend    string `mapstructure:"CACHE_BACKEND"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`
	CacheMaxEntries int    `mapstructure:"CACHE_MAX_ENTRIES"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	DetailPagePattern string `mapstructure:"DETAIL_PAGE_PATTERN"`
}

// Load reads configuration from an optional .env file and the environment.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	// Missing .env is fine, the environment alone is enough in production
	_ = v.ReadInConfig()

	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("PORT", "3000")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SESSION_MODE", SessionModePerRequest)
	v.SetDefault("MAX_CONCURRENCY", 2)
	v.SetDefault("CHROME_PATH", "")
	v.SetDefault("HEADLESS", true)
	v.SetDefault("PROXIES", "")
	v.SetDefault("CACHE_BACKEND", CacheBackendMemory)
	v.SetDefault("CACHE_TTL_SECONDS", 3600)
	v.SetDefault("CACHE_MAX_ENTRIES", 4096)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("DETAIL_PAGE_PATTERN", "/release/")
}

// Validate rejects values the service can't start with.
func (c *Config) Validate() error {
	switch c.SessionMode {
	case SessionModePerRequest, SessionModeShared:
	default:
		return fmt.Errorf("unknown SESSION_MODE %q", c.SessionMode)
	}
	switch c.CacheBackend {
	case CacheBackendMemory, CacheBackendRedis:
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", c.CacheBackend)
	}
	if c.MaxConcurrency < 1 {
		return fmt.Errorf("MAX_CONCURRENCY must be positive, got %d", c.MaxConcurrency)
	}
	if c.CacheTTLSeconds < 1 {
		return fmt.Errorf("CACHE_TTL_SECONDS must be positive, got %d", c.CacheTTLSeconds)
	}
	if c.CacheBackend == CacheBackendMemory && c.CacheMaxEntries < 1 {
		return fmt.Errorf("CACHE_MAX_ENTRIES must be positive, got %d", c.CacheMaxEntries)
	}
	if _, err := regexp.Compile(c.DetailPagePattern); err != nil {
		return fmt.Errorf("invalid DETAIL_PAGE_PATTERN: %w", err)
	}
	return nil
}

// Addr is the listen address.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

// CacheTTL is the result cache expiry.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// ProxyList splits PROXIES into its entries.
func (c *Config) ProxyList() []string {
	var out []string
	for _, p := range strings.Split(c.Proxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
