package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/metrics"
	"github.com/adelabdelgawad/auth-base/internal/middleware"
	"github.com/adelabdelgawad/auth-base/internal/services"
	"github.com/adelabdelgawad/auth-base/internal/store"
	"github.com/adelabdelgawad/auth-base/internal/token"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db *store.Store,
	directoryCache core.Cache[directory.SearchResult],
	h handlerSet,
	tokenProvider *token.LocalTokenProvider,
	prometheusMetrics core.Recorder,
	auditService *services.AuditService,
	rateLimitRedisClient *redis.Client,
) *gin.Engine {
	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()
	// Rate limits key on ClientIP, so forwarded headers count only from known proxies.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Fatalf("Invalid trusted proxies: %v", err)
	}

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db, directoryCache))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting
	rateLimiters := setupRateLimiting(cfg, auditService, rateLimitRedisClient)

	// Setup all routes
	requireToken := middleware.RequireAccessToken(tokenProvider, prometheusMetrics)
	setupAllRoutes(r, h, rateLimiters, requireToken)

	// Log server startup info
	logServerStartup(cfg)

	return r
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
	requireToken gin.HandlerFunc,
) {
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/login", rateLimiters.login, h.auth.Login)
		authGroup.POST("/refresh", rateLimiters.refresh, h.auth.Refresh)
		authGroup.GET("/me", requireToken, h.auth.Me)
	}

	directoryGroup := r.Group("/directory")
	directoryGroup.Use(requireToken)
	{
		directoryGroup.GET("/ous", h.directory.ListOUs)
		directoryGroup.GET("/users", h.directory.ListUsers)
	}
}

// createHealthCheckHandler creates health check endpoint handler. The
// directory cache is reported but does not make the service unhealthy.
func createHealthCheckHandler(
	db *store.Store,
	directoryCache core.Cache[directory.SearchResult],
) gin.HandlerFunc {
	return func(c *gin.Context) {
		cacheStatus := "disabled"
		if directoryCache != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			if err := directoryCache.Health(ctx); err != nil {
				cacheStatus = "unavailable"
			} else {
				cacheStatus = "connected"
			}
			cancel()
		}

		switch err := db.Health(); err {
		case nil:
			c.JSON(http.StatusOK, gin.H{
				"status":   "healthy",
				"database": "connected",
				"cache":    cacheStatus,
			})
		default:
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
				"cache":    cacheStatus,
			})
		}
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction()]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction()])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("auth-base server starting on %s", cfg.ServerAddr)
	log.Printf("Local admin account: %s (check logs for password if first run)", cfg.LocalAdminUsername)
	log.Printf("Access tokens: %s, %s; refresh tokens: %s",
		cfg.Algorithm, cfg.AccessTokenDuration, cfg.RefreshTokenDuration)
}
