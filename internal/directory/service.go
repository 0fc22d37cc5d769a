package directory

import "context"

// Service hands out clients and searchers for the configured directory.
type Service struct {
	creds Credentials
	opts  []Option
}

// NewService creates a directory service. Options apply to every client it creates.
func NewService(creds Credentials, opts ...Option) *Service {
	return &Service{creds: creds, opts: opts}
}

// Client returns a client for the given instance credentials.
func (s *Service) Client(username, password string) *Client {
	return NewClient(s.creds, username, password, s.opts...)
}

// Searcher returns a searcher that binds as the service account.
func (s *Service) Searcher() *Searcher {
	return NewSearcher(s.Client("", ""))
}

// Authenticate reports whether the directory accepts these exact credentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) bool {
	return s.Client(username, password).Authenticate(ctx, username, password)
}

// LookupUser fetches the profile of username, binding as that user when
// possible and as the service account otherwise.
func (s *Service) LookupUser(ctx context.Context, username, password string) (*User, bool) {
	return NewSearcher(s.Client(username, password)).GetAuthenticatedUserInfo(ctx)
}

// ListChildOUs lists the OUs under the OU parent base as the service account.
func (s *Service) ListChildOUs(ctx context.Context) []string {
	return s.Searcher().ListChildOUs(ctx)
}

// SearchAllUsers searches all child OUs as the service account.
func (s *Service) SearchAllUsers(ctx context.Context) (*SearchResult, error) {
	return s.Searcher().SearchAllUsers(ctx)
}
