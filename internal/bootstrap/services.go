package bootstrap

import (
	"fmt"

	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/services"
	"github.com/adelabdelgawad/auth-base/internal/store"
	"github.com/adelabdelgawad/auth-base/internal/token"
)

// initializeServices creates all business logic services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	dir *directory.Service,
	directoryCache core.Cache[directory.SearchResult],
	auditService *services.AuditService,
	prometheusMetrics core.Recorder,
) (*token.LocalTokenProvider, *services.AuthService, *services.DirectoryService, error) {
	tokenProvider, err := token.NewLocalTokenProvider(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize token provider: %w", err)
	}

	localProvider, directoryProvider := initializeAuthProviders(db, dir)

	authService := services.NewAuthService(
		db,
		localProvider,
		directoryProvider,
		tokenProvider,
		auditService,
		prometheusMetrics,
		cfg.LocalAdminUsername,
		cfg.AccessTokenDuration,
	)

	var searcher services.DirectorySearcher
	if dir != nil {
		searcher = dir
	}
	directoryService := services.NewDirectoryService(
		searcher,
		directoryCache,
		cfg.DirectoryCacheTTL,
		prometheusMetrics,
	)

	return tokenProvider, authService, directoryService, nil
}
