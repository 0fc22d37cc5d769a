package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/adelabdelgawad/auth-base/internal/cache"
	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/metrics"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	prometheusMetrics := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return prometheusMetrics
}

// initializeDirectoryCache initializes the directory user listing cache
func initializeDirectoryCache(
	ctx context.Context,
	cfg *config.Config,
) (core.Cache[directory.SearchResult], func() error, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.CacheInitTimeout)
	defer cancel()

	switch cfg.DirectoryCacheType {
	case config.DirectoryCacheTypeRedis:
		c, err := cache.NewRueidisCache[directory.SearchResult](
			ctx,
			cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB,
			"auth-base:directory:",
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis directory cache: %w", err)
		}
		log.Printf("Directory cache: redis (addr=%s, db=%d, ttl=%s)",
			cfg.RedisAddr, cfg.RedisDB, cfg.DirectoryCacheTTL)
		return c, c.Close, nil

	default: // memory
		c := cache.NewMemoryCache[directory.SearchResult]()
		log.Printf("Directory cache: memory (single instance only, ttl=%s)", cfg.DirectoryCacheTTL)
		return c, c.Close, nil
	}
}
