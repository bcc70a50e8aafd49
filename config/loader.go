package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Defaults applied to unset fields
const (
	DefaultPort              = 8080
	DefaultTimeoutMS         = 10000
	DefaultLocale            = "zh-CN"
	DefaultCacheBackend      = "memory"
	DefaultCacheSize         = 1024
	DefaultCacheTTLSeconds   = 600
	DefaultProducerRef       = "ZHBUS"
	DefaultValiditySeconds   = 30
	DefaultRedisKeyPrefix    = "zhbus:"
	defaultUpstreamUserAgent = "zhbus-go"
)

// DefaultPaths are searched in order when Load is called without paths
var DefaultPaths = []string{"config.yml", "./config/config.yml"}

// Load reads .env when present, then the first readable config file among
// paths (DefaultPaths if none given), and returns the validated configuration.
func Load(paths ...string) (*AppConfig, error) {
	_ = godotenv.Load()

	if len(paths) == 0 {
		paths = DefaultPaths
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML, applies environment overrides and defaults, and
// validates the result.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)

	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return nil, err
	}
	if cfg.Upstream.BaseURL == "" && len(cfg.Upstreams) == 0 {
		return nil, errors.New("upstream.baseURL is required when no upstreams are listed")
	}
	if cfg.Cache.Backend == "redis" && cfg.Redis.Addr == "" {
		return nil, errors.New("redis.addr is required for the redis cache backend")
	}
	return &cfg, nil
}

func applyEnv(cfg *AppConfig) error {
	if v, ok := os.LookupEnv("ZHBUS_UPSTREAM_URL"); ok && v != "" {
		cfg.Upstream.BaseURL = v
	}
	if v, ok := os.LookupEnv("ZHBUS_PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("ZHBUS_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv("ZHBUS_LOCALE"); ok && v != "" {
		cfg.UI.Locale = v
	}
	if v, ok := os.LookupEnv("ZHBUS_CACHE_BACKEND"); ok && v != "" {
		cfg.Cache.Backend = v
	}
	if v, ok := os.LookupEnv("REDIS_ADDR"); ok && v != "" {
		cfg.Redis.Addr = v
	}
	if v, ok := os.LookupEnv("REDIS_PASSWORD"); ok {
		cfg.Redis.Password = v
	}
	return nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Upstream.TimeoutMS == nil {
		ms := DefaultTimeoutMS
		cfg.Upstream.TimeoutMS = &ms
	}
	if cfg.Upstream.UserAgent == "" {
		cfg.Upstream.UserAgent = defaultUpstreamUserAgent
	}
	if cfg.UI.Locale == "" {
		cfg.UI.Locale = DefaultLocale
	}
	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = DefaultCacheSize
	}
	if cfg.Cache.StationTTLSeconds == 0 {
		cfg.Cache.StationTTLSeconds = DefaultCacheTTLSeconds
	}
	if cfg.Cache.LineTTLSeconds == 0 {
		cfg.Cache.LineTTLSeconds = DefaultCacheTTLSeconds
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Feed.ProducerRef == "" {
		cfg.Feed.ProducerRef = DefaultProducerRef
	}
	if cfg.Feed.ValiditySeconds == 0 {
		cfg.Feed.ValiditySeconds = DefaultValiditySeconds
	}
}

// SelectUpstream chooses an upstream by name; fallback to first; if none, use
// top-level upstream. Unset timeout and user agent inherit the top-level ones.
func (c *AppConfig) SelectUpstream(name string) UpstreamConfig {
	pick := func(u NamedUpstream) UpstreamConfig {
		out := UpstreamConfig{BaseURL: u.BaseURL, TimeoutMS: u.TimeoutMS, UserAgent: u.UserAgent}
		if out.TimeoutMS == nil {
			out.TimeoutMS = c.Upstream.TimeoutMS
		}
		if out.UserAgent == "" {
			out.UserAgent = c.Upstream.UserAgent
		}
		return out
	}
	if name != "" {
		for _, u := range c.Upstreams {
			if u.Name == name {
				return pick(u)
			}
		}
	}
	if len(c.Upstreams) > 0 {
		return pick(c.Upstreams[0])
	}
	return c.Upstream
}
