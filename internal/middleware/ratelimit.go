package middleware

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	mgin "github.com/ulule/limiter/v3/drivers/middleware/gin"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	limiterRedis "github.com/ulule/limiter/v3/drivers/store/redis"
)

// RateLimitConfig holds the configuration for one rate-limited route group
type RateLimitConfig struct {
	RequestsPerMinute int
	CleanupInterval   time.Duration // only used by the memory store

	// StoreType is config.RateLimitStoreMemory or config.RateLimitStoreRedis
	StoreType string

	// RedisClient is required for the redis store and may be shared
	RedisClient *redis.Client

	// Prefix separates the counters of different routes in a shared store
	Prefix string

	// OnLimitReached runs before the 429 response is written
	OnLimitReached func(c *gin.Context)
}

// NewRateLimiter creates a per-client-IP rate limiter with a memory or Redis store
func NewRateLimiter(cfg RateLimitConfig) (gin.HandlerFunc, error) {
	if cfg.RequestsPerMinute <= 0 {
		return nil, fmt.Errorf("requests per minute must be positive, got %d", cfg.RequestsPerMinute)
	}

	rate := limiter.Rate{
		Period: 1 * time.Minute,
		Limit:  int64(cfg.RequestsPerMinute),
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "ratelimit"
	}
	cleanup := cfg.CleanupInterval
	if cleanup <= 0 {
		cleanup = 5 * time.Minute
	}

	var store limiter.Store
	switch cfg.StoreType {
	case config.RateLimitStoreRedis:
		if cfg.RedisClient == nil {
			return nil, fmt.Errorf("redis rate limit store requires a redis client")
		}
		var err error
		store, err = limiterRedis.NewStoreWithOptions(cfg.RedisClient, limiter.StoreOptions{
			Prefix: prefix,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis store: %w", err)
		}

	case config.RateLimitStoreMemory, "":
		store = memory.NewStoreWithOptions(limiter.StoreOptions{
			Prefix:          prefix,
			CleanUpInterval: cleanup,
		})

	default:
		return nil, fmt.Errorf("unknown rate limit store %q", cfg.StoreType)
	}

	instance := limiter.New(store, rate)

	return mgin.NewMiddleware(instance, mgin.WithLimitReachedHandler(func(c *gin.Context) {
		if cfg.OnLimitReached != nil {
			cfg.OnLimitReached(c)
		}
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error":   "rate_limit_exceeded",
			"message": "Too many requests. Please try again later.",
		})
	})), nil
}

// CreateRedisClient connects to Redis and verifies the connection with a ping
func CreateRedisClient(addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return client, nil
}
