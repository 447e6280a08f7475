package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func newViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	SetDefaults(v)
	return v
}

func TestLoadDefaults(t *testing.T) {
	v := newViper(t)
	v.Set("upstream.tokens", []string{"tok-a"})

	cfg, err := Load(v)
	require.NoError(t, err)

	require.Equal(t, "https://api.github.com", cfg.Upstream.BaseURL)
	require.Equal(t, []string{"tok-a"}, cfg.Upstream.Tokens)
	require.Equal(t, 10*time.Second, cfg.Upstream.RequestTimeout)
	require.Equal(t, 60*time.Second, cfg.Upstream.RetryAfterFallback)
	require.Equal(t, "memory", cfg.Cache.Backend)
	require.Equal(t, 300*time.Second, cfg.Cache.TTL)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "flags.yaml", cfg.Flags.Path)
	require.True(t, cfg.Metrics.Enabled)
}

func TestLoadRequiresTokens(t *testing.T) {
	v := newViper(t)

	_, err := Load(v)
	require.Error(t, err)

	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	require.Equal(t, "upstream.tokens", validation.Field)
}

func TestLoadSplitsCommaJoinedTokens(t *testing.T) {
	v := newViper(t)
	v.Set("upstream.tokens", []string{"tok-a, tok-b,tok-c"})

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, []string{"tok-a", "tok-b", "tok-c"}, cfg.Upstream.Tokens)
}

func TestLoadEnvOverride(t *testing.T) {
	v := newViper(t)
	v.SetEnvPrefix("USERLENS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	t.Setenv("USERLENS_UPSTREAM_TOKENS", "env-a,env-b")
	t.Setenv("USERLENS_SERVER_PORT", "9090")

	cfg, err := Load(v)
	require.NoError(t, err)
	require.Equal(t, []string{"env-a", "env-b"}, cfg.Upstream.Tokens)
	require.Equal(t, 9090, cfg.Server.Port)
}

func TestValidateRejectsBadValues(t *testing.T) {
	base := func() *Config {
		return &Config{
			Upstream: UpstreamConfig{
				BaseURL:        "https://api.github.com",
				Tokens:         []string{"tok"},
				RequestTimeout: 10 * time.Second,
			},
			Cache: CacheConfig{Backend: "memory", TTL: 300 * time.Second},
		}
	}

	cfg := base()
	cfg.Upstream.RequestTimeout = 0
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.TTL = -time.Second
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Upstream.BaseURL = "not a url"
	require.Error(t, cfg.Validate())

	cfg = base()
	cfg.Cache.Backend = "etcd"
	require.Error(t, cfg.Validate())

	require.NoError(t, base().Validate())
}
