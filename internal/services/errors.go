package services

import "errors"

var (
	// ErrBadRequest is returned when required login or refresh input is missing.
	ErrBadRequest = errors.New("missing required fields")

	// ErrAccountNotFound is returned when no local account matches.
	ErrAccountNotFound = errors.New("account not found")

	// ErrUnauthorized is returned when credentials are rejected or the account is disabled.
	ErrUnauthorized = errors.New("invalid credentials")

	// ErrConfiguration is returned when the server cannot verify credentials
	// because of missing setup, such as an admin account without a password.
	ErrConfiguration = errors.New("authentication is misconfigured")

	// ErrInternal wraps unexpected storage or signing failures.
	ErrInternal = errors.New("internal error")
)
