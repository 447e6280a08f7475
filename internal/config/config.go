// Package config provides the application configuration, loaded from a
// userlens.yaml file with USERLENS_* environment overrides on top.
package config

import (
	"time"
)

// Config is the complete application configuration.
type Config struct {
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Cache    CacheConfig    `mapstructure:"cache"`
	Server   ServerConfig   `mapstructure:"server"`
	Flags    FlagsConfig    `mapstructure:"flags"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// UpstreamConfig describes the third-party API and the credential pool.
type UpstreamConfig struct {
	BaseURL string `mapstructure:"base_url"`

	// Tokens is the ordered credential pool. Loaded once at startup; the
	// process refuses to start without at least one token.
	Tokens []string `mapstructure:"tokens"`

	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	RetryAfterFallback time.Duration `mapstructure:"retry_after_fallback"`
}

// CacheConfig selects and tunes the response cache backend.
type CacheConfig struct {
	Backend       string        `mapstructure:"backend"`
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	Redis         RedisConfig   `mapstructure:"redis"`
}

// RedisConfig configures the optional Redis cache backend.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// FlagsConfig locates the verified-flag key-set file.
type FlagsConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig controls log level and encoding.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}
