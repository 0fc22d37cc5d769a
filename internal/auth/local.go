package auth

import (
	"context"
	"strconv"

	"github.com/adelabdelgawad/auth-base/internal/core"
)

// LocalAuthProvider verifies passwords against the bcrypt hash stored on the account.
type LocalAuthProvider struct {
	store core.AccountStore
}

// NewLocalAuthProvider creates a new local authentication provider
func NewLocalAuthProvider(s core.AccountStore) *LocalAuthProvider {
	return &LocalAuthProvider{store: s}
}

// Authenticate verifies credentials against local database
func (p *LocalAuthProvider) Authenticate(
	ctx context.Context,
	username, password string,
) (*core.AuthResult, error) {
	account, err := p.store.GetAccountByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if !VerifyPassword(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return &core.AuthResult{
		Username:   account.Username,
		ExternalID: strconv.FormatInt(account.ID, 10),
		Email:      account.Email,
		FullName:   account.FullName,
		Title:      account.Title,
		Success:    true,
	}, nil
}

// Name returns provider name for logging
func (p *LocalAuthProvider) Name() string {
	return "local"
}
