package config

import "time"

// ServerConfig contains HTTP backend configuration
type ServerConfig struct {
	Port        int      `yaml:"port" validate:"gt=0,lte=65535"`
	StaticDir   string   `yaml:"staticDir"`
	CORSOrigins []string `yaml:"corsOrigins"`
}

// UpstreamConfig points at a transit-data service origin
type UpstreamConfig struct {
	BaseURL   string `yaml:"baseURL" validate:"omitempty,url"`
	// TimeoutMS is the per-call timeout. Unset means the default; an explicit
	// 0 leaves calls bounded only by the caller.
	TimeoutMS *int   `yaml:"timeoutMS" validate:"omitempty,gte=0"`
	UserAgent string `yaml:"userAgent"`
}

// Timeout returns the per-call timeout
func (u UpstreamConfig) Timeout() time.Duration {
	ms := DefaultTimeoutMS
	if u.TimeoutMS != nil {
		ms = *u.TimeoutMS
	}
	return time.Duration(ms) * time.Millisecond
}

// NamedUpstream is an entry of the upstreams list
type NamedUpstream struct {
	Name      string `yaml:"name" validate:"required"`
	BaseURL   string `yaml:"baseURL" validate:"required,url"`
	TimeoutMS *int   `yaml:"timeoutMS" validate:"omitempty,gte=0"`
	UserAgent string `yaml:"userAgent"`
}

// UIConfig contains settings handed to the bus map UI
type UIConfig struct {
	Locale string `yaml:"locale" validate:"omitempty,bcp47_language_tag"`
}

// CacheConfig controls caching of station lists and line lookups.
// Real-time status is never cached.
type CacheConfig struct {
	Backend           string `yaml:"backend" validate:"omitempty,oneof=none memory redis"`
	Size              int    `yaml:"size" validate:"gte=0"`
	StationTTLSeconds int    `yaml:"stationTTLSeconds" validate:"gte=0"`
	LineTTLSeconds    int    `yaml:"lineTTLSeconds" validate:"gte=0"`
}

// StationTTL returns the station list expiry
func (c CacheConfig) StationTTL() time.Duration {
	return time.Duration(c.StationTTLSeconds) * time.Second
}

// LineTTL returns the line lookup expiry
func (c CacheConfig) LineTTL() time.Duration {
	return time.Duration(c.LineTTLSeconds) * time.Second
}

// RedisConfig is used when cache.backend is redis
type RedisConfig struct {
	Addr      string `yaml:"addr" validate:"omitempty,hostname_port"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db" validate:"gte=0"`
	KeyPrefix string `yaml:"keyPrefix"`
}

// FeedConfig contains settings of the SIRI and GTFS-RT exports
type FeedConfig struct {
	ProducerRef     string `yaml:"producerRef"`
	ValiditySeconds int    `yaml:"validitySeconds" validate:"gte=0"`
}

// Validity returns how long an exported real-time snapshot is valid
func (f FeedConfig) Validity() time.Duration {
	return time.Duration(f.ValiditySeconds) * time.Second
}

// AppConfig is the root configuration structure
type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Upstreams []NamedUpstream `yaml:"upstreams" validate:"dive"`
	UI        UIConfig        `yaml:"ui"`
	Cache     CacheConfig     `yaml:"cache"`
	Redis     RedisConfig     `yaml:"redis"`
	Feed      FeedConfig      `yaml:"feed"`
}
