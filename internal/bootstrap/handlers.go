package bootstrap

import (
	"github.com/adelabdelgawad/auth-base/internal/handlers"
	"github.com/adelabdelgawad/auth-base/internal/services"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	auth      *handlers.AuthHandler
	directory *handlers.DirectoryHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	authService *services.AuthService,
	directoryService *services.DirectoryService,
) handlerSet {
	return handlerSet{
		auth:      handlers.NewAuthHandler(authService),
		directory: handlers.NewDirectoryHandler(directoryService),
	}
}
