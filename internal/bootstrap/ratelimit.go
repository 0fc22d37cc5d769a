package bootstrap

import (
	"log"

	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/middleware"
	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	login   gin.HandlerFunc
	refresh gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	if !cfg.EnableRateLimit {
		// Return no-op middlewares when rate limiting is disabled
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{
			login:   noOpMiddleware,
			refresh: noOpMiddleware,
		}
	}
	return createRateLimiters(cfg, auditService, redisClient)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) rateLimitMiddlewares {
	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	createLimiter := func(requestsPerMinute int, endpoint, prefix string) gin.HandlerFunc {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			StoreType:         cfg.RateLimitStore,
			RedisClient:       redisClient, // nil for memory store
			Prefix:            prefix,
			OnLimitReached: func(c *gin.Context) {
				auditService.Log(c, services.AuthEventEntry{
					EventType:    models.EventRateLimitExceeded,
					Success:      false,
					ErrorMessage: "rate limit exceeded on " + endpoint,
					Details:      models.EventDetails{"endpoint": endpoint},
				})
			},
		})
		if err != nil {
			log.Fatalf("Failed to create rate limiter for %s: %v", endpoint, err)
		}
		return limiter
	}

	return rateLimitMiddlewares{
		login:   createLimiter(cfg.LoginRateLimit, "/auth/login", "auth-base:ratelimit:login"),
		refresh: createLimiter(cfg.RefreshRateLimit, "/auth/refresh", "auth-base:ratelimit:refresh"),
	}
}
