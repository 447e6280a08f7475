package cmd

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"go.uber.org/zap"

	"github.com/userlens/userlens/internal/config"
	"github.com/userlens/userlens/internal/core"
	"github.com/userlens/userlens/internal/core/cache"
	"github.com/userlens/userlens/internal/core/engine"
	"github.com/userlens/userlens/internal/core/pool"
	"github.com/userlens/userlens/internal/core/upstream"
	"github.com/userlens/userlens/internal/observability"
)

// buildClient assembles the core facade from configuration: credential
// pool, executor, retry engine, and the configured cache backend.
func buildClient(ctx context.Context, cfg *config.Config, logger *zap.Logger, metrics *observability.Metrics) (*core.Client, error) {
	p, err := pool.New(cfg.Upstream.Tokens)
	if err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.Upstream.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid upstream base URL: %w", err)
	}

	responseCache, err := buildCache(ctx, cfg.Cache)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.Upstream.RequestTimeout}

	return &core.Client{
		Engine: &engine.Engine{
			Pool: p,
			Executor: &upstream.Executor{
				Client:             httpClient,
				Timeout:            cfg.Upstream.RequestTimeout,
				RetryAfterFallback: cfg.Upstream.RetryAfterFallback,
				UserAgent:          "userlens/" + versionInfo.Version,
			},
			Logger:  logger,
			Metrics: metrics,
		},
		Cache:       responseCache,
		BaseURL:     base,
		HTTPClient:  httpClient,
		Logger:      logger,
		Metrics:     metrics,
		ToolVersion: versionInfo.Version,
	}, nil
}

func buildCache(ctx context.Context, cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Backend {
	case "redis":
		return cache.NewRedis(ctx, cache.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.TTL,
		})
	default:
		return cache.NewMemory(cfg.TTL, cfg.SweepInterval), nil
	}
}
