package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// ValidationError reports an unusable configuration. The process treats it
// as fatal with a usage exit code.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// SetDefaults installs the baseline configuration on the given viper
// instance. Called before reading any config file.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("upstream.base_url", "https://api.github.com")
	v.SetDefault("upstream.tokens", []string{})
	v.SetDefault("upstream.request_timeout", "10s")
	v.SetDefault("upstream.retry_after_fallback", "60s")

	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.ttl", "300s")
	v.SetDefault("cache.sweep_interval", "60s")
	v.SetDefault("cache.redis.addr", "localhost:6379")
	v.SetDefault("cache.redis.db", 0)

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("flags.path", "flags.yaml")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")
}

// Load unmarshals and validates the configuration held by v. Defaults must
// already be installed via SetDefaults.
func Load(v *viper.Viper) (*Config, error) {
	cfg, err := Decode(v)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode unmarshals without validating. Commands that never touch the core
// (flag management) use this so an empty token pool does not block them.
func Decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	decodeHook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, decodeHook); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.Upstream.Tokens = normalizeTokens(cfg.Upstream.Tokens)
	return &cfg, nil
}

// Validate fails fast on configuration the core cannot run with.
func (c *Config) Validate() error {
	if len(c.Upstream.Tokens) == 0 {
		return &ValidationError{Field: "upstream.tokens", Reason: "at least one token is required"}
	}
	if c.Upstream.RequestTimeout <= 0 {
		return &ValidationError{Field: "upstream.request_timeout", Reason: "must be positive"}
	}
	if c.Cache.TTL <= 0 {
		return &ValidationError{Field: "cache.ttl", Reason: "must be positive"}
	}

	parsed, err := url.Parse(c.Upstream.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return &ValidationError{Field: "upstream.base_url", Reason: "must be an absolute URL"}
	}

	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return &ValidationError{Field: "cache.backend", Reason: "must be memory or redis"}
	}

	return nil
}

// normalizeTokens trims entries and splits any comma-joined value, so
// USERLENS_UPSTREAM_TOKENS=a,b,c works the same as a YAML list.
func normalizeTokens(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, token := range tokens {
		for _, part := range strings.Split(token, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
	}
	return out
}
