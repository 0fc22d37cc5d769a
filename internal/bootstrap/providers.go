package bootstrap

import (
	"log"

	"github.com/adelabdelgawad/auth-base/internal/auth"
	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/store"
)

// directoryCredentials maps configuration onto directory connection settings
func directoryCredentials(cfg *config.Config) directory.Credentials {
	return directory.Credentials{
		Host:              cfg.ADServer,
		Port:              cfg.ADPort,
		UseTLS:            cfg.ADUseTLS,
		BindUsername:      cfg.ADBindUsername,
		BindPassword:      cfg.ADBindPassword,
		BaseDN:            cfg.ADBaseDN,
		OUParentBase:      cfg.OUParentBase,
		SearchConcurrency: cfg.ADSearchConcurrency,
	}
}

// initializeDirectory creates the directory service when a server is configured
func initializeDirectory(cfg *config.Config) *directory.Service {
	if !cfg.DirectoryConfigured() {
		log.Println("[LDAP] Directory not configured, only the local admin can sign in")
		return nil
	}
	log.Printf("[LDAP] Directory configured: %s:%d (tls=%t)", cfg.ADServer, cfg.ADPort, cfg.ADUseTLS)
	return directory.NewService(directoryCredentials(cfg))
}

// initializeAuthProviders creates the local and directory auth providers
func initializeAuthProviders(
	db *store.Store,
	dir *directory.Service,
) (local, directoryProvider core.AuthProvider) {
	local = auth.NewLocalAuthProvider(db)
	if dir == nil {
		// keep the interface nil so the provider reports the directory as unavailable
		return local, auth.NewDirectoryAuthProvider(nil)
	}
	return local, auth.NewDirectoryAuthProvider(dir)
}
