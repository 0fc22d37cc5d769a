package bootstrap

import (
	"context"
	"net/http"

	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/services"
	"github.com/adelabdelgawad/auth-base/internal/store"
	"github.com/adelabdelgawad/auth-base/internal/token"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      core.Recorder
	DirectoryCache       core.Cache[directory.SearchResult]
	DirectoryCacheCloser func() error
	RateLimitRedisClient *redis.Client

	// Directory is nil when no directory server is configured
	Directory *directory.Service

	// Services
	TokenProvider    *token.LocalTokenProvider
	AuditService     *services.AuditService
	AuthService      *services.AuthService
	DirectoryService *services.DirectoryService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(ctx context.Context, cfg *config.Config) error {
	app := &Application{Config: cfg}

	// Phase 1: Validate configuration
	validateAllConfiguration(cfg)

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	app.initializeHTTPLayer()

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, cache, Redis and the directory
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)

	// Directory user cache
	app.DirectoryCache, app.DirectoryCacheCloser, err = initializeDirectoryCache(ctx, app.Config)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(app.Config)
	if err != nil {
		return err
	}

	// Directory
	app.Directory = initializeDirectory(app.Config)

	return nil
}

// initializeBusinessLayer sets up services
func (app *Application) initializeBusinessLayer() error {
	// Audit service (required by other services)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	var err error
	app.TokenProvider,
		app.AuthService,
		app.DirectoryService,
		err = initializeServices(
		app.Config,
		app.DB,
		app.Directory,
		app.DirectoryCache,
		app.AuditService,
		app.MetricsRecorder,
	)
	return err
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() {
	app.HandlerSet = initializeHandlers(app.AuthService, app.DirectoryService)

	app.Router = setupRouter(
		app.Config,
		app.DB,
		app.DirectoryCache,
		app.HandlerSet,
		app.TokenProvider,
		app.MetricsRecorder,
		app.AuditService,
		app.RateLimitRedisClient,
	)

	app.Server = createHTTPServer(app.Config, app.Router)
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Shutdown jobs run concurrently; the audit job drains before the database closes
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)
	addAuditAndDatabaseShutdownJob(m, app.Config, app.AuditService, app.DB)
	addCacheCleanupJob(m, app.DirectoryCacheCloser)

	// Wait for graceful shutdown
	<-m.Done()
}
