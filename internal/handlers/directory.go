package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/adelabdelgawad/auth-base/internal/directory"
	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/services"

	"github.com/gin-gonic/gin"
)

type DirectoryHandler struct {
	directoryService *services.DirectoryService
}

func NewDirectoryHandler(ds *services.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directoryService: ds}
}

// ListOUs handles GET /directory/ous
func (h *DirectoryHandler) ListOUs(c *gin.Context) {
	ous, err := h.directoryService.ListOUs(c)
	if err != nil {
		h.respondDirectoryError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ous": ous})
}

// ListUsers handles GET /directory/users. ?refresh=true bypasses the cache.
func (h *DirectoryHandler) ListUsers(c *gin.Context) {
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		log.Printf("[LDAP] User listing refresh requested by %q", models.GetUsernameFromContext(c))
		if err := h.directoryService.InvalidateUsers(c); err != nil {
			respondInternalError(c, "LDAP", err)
			return
		}
	}

	result, err := h.directoryService.ListUsers(c)
	if err != nil {
		h.respondDirectoryError(c, err)
		return
	}

	users := result.Users
	if users == nil {
		users = []directory.User{}
	}
	failed := result.FailedOUs
	if failed == nil {
		failed = []string{}
	}
	c.JSON(http.StatusOK, gin.H{
		"total":     len(users),
		"data":      users,
		"failedOus": failed,
	})
}

func (h *DirectoryHandler) respondDirectoryError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, directory.ErrDirectory), errors.Is(err, directory.ErrAuthentication):
		respondError(c, http.StatusBadGateway, errCodeDirectoryError, "Directory server unavailable")
	default:
		// ErrConfiguration, ErrNoOrganizationalUnits and anything unexpected
		respondInternalError(c, "LDAP", err)
	}
}
