package auth

import (
	"context"
	"log"

	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/directory"
)

// DirectoryClient is the part of directory.Service the provider needs.
type DirectoryClient interface {
	Authenticate(ctx context.Context, username, password string) bool
	LookupUser(ctx context.Context, username, password string) (*directory.User, bool)
}

// DirectoryAuthProvider authenticates against Active Directory with a
// strict bind, then reads the user's profile for syncing.
type DirectoryAuthProvider struct {
	client DirectoryClient
}

// NewDirectoryAuthProvider creates a provider backed by the given directory.
func NewDirectoryAuthProvider(client DirectoryClient) *DirectoryAuthProvider {
	return &DirectoryAuthProvider{client: client}
}

// Authenticate binds as username. Only a successful bind authenticates;
// the profile lookup afterwards is best effort.
func (p *DirectoryAuthProvider) Authenticate(
	ctx context.Context,
	username, password string,
) (*core.AuthResult, error) {
	if p.client == nil {
		return nil, ErrDirectoryUnavailable
	}
	if !p.client.Authenticate(ctx, username, password) {
		return nil, ErrInvalidCredentials
	}

	result := &core.AuthResult{
		Username:   username,
		ExternalID: username,
		Success:    true,
	}

	profile, ok := p.client.LookupUser(ctx, username, password)
	if !ok {
		log.Printf("[Auth] No directory profile found for %q, keeping local profile", username)
		return result, nil
	}
	result.FullName = profile.FullName
	result.Title = profile.Title
	result.Email = profile.Email
	return result, nil
}

// Name returns provider name for logging
func (p *DirectoryAuthProvider) Name() string {
	return "directory"
}
