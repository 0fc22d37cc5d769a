package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrDirectoryUnavailable is returned by the directory provider when no
	// directory is configured.
	ErrDirectoryUnavailable = errors.New("directory authentication is not configured")
)
