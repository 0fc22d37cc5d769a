package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/auth"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/metrics"
	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/store"
	"github.com/adelabdelgawad/auth-base/internal/token"
)

// TokenPair is returned by a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"` // epoch milliseconds
}

// AuthService runs the login and refresh flows. The local admin account
// is verified against its stored hash, every other account against the directory.
type AuthService struct {
	store             core.AccountStore
	localProvider     core.AuthProvider
	directoryProvider core.AuthProvider
	tokenProvider     *token.LocalTokenProvider
	auditService      *AuditService
	metrics           core.Recorder

	adminUsername string
	accessTTL     time.Duration
}

func NewAuthService(
	s core.AccountStore,
	localProvider core.AuthProvider,
	directoryProvider core.AuthProvider,
	tokenProvider *token.LocalTokenProvider,
	auditService *AuditService,
	m core.Recorder,
	adminUsername string,
	accessTTL time.Duration,
) *AuthService {
	if m == nil {
		m = metrics.NewNoopMetrics()
	}
	return &AuthService{
		store:             s,
		localProvider:     localProvider,
		directoryProvider: directoryProvider,
		tokenProvider:     tokenProvider,
		auditService:      auditService,
		metrics:           m,
		adminUsername:     adminUsername,
		accessTTL:         accessTTL,
	}
}

// Login verifies credentials and issues a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	start := time.Now()

	if username == "" || password == "" {
		return nil, ErrBadRequest
	}

	account, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			s.recordLoginFailure(ctx, "", 0, username, "account not found", start)
			return nil, ErrAccountNotFound
		}
		s.metrics.RecordDatabaseQueryError("get_account")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// The stored name decides the branch; lookups may be case-insensitive.
	method := models.AuthMethodDirectory
	provider := s.directoryProvider
	principal := username
	if account.Username == s.adminUsername {
		method = models.AuthMethodLocal
		provider = s.localProvider
		principal = account.Username
		if account.PasswordHash == "" {
			log.Printf("[Auth] Local admin %q has no password hash", account.Username)
			return nil, fmt.Errorf("%w: admin account has no password", ErrConfiguration)
		}
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: no %s provider", ErrConfiguration, method)
	}

	result, err := provider.Authenticate(ctx, principal, password)
	if err != nil {
		if errors.Is(err, auth.ErrDirectoryUnavailable) {
			return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
		}
		s.recordLoginFailure(ctx, method, account.ID, username, err.Error(), start)
		return nil, ErrUnauthorized
	}

	if !account.IsActive {
		s.recordLoginFailure(ctx, method, account.ID, username, "account disabled", start)
		return nil, ErrUnauthorized
	}

	if method == models.AuthMethodDirectory {
		s.syncProfile(ctx, account, result)
	}

	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordLogin(string(method), true, time.Since(start))
	s.auditService.Log(ctx, AuthEventEntry{
		EventType: models.EventLoginSuccess,
		Method:    method,
		AccountID: account.ID,
		Username:  account.Username,
		Success:   true,
	})
	log.Printf("[Auth] %q signed in via %s", username, provider.Name())

	return pair, nil
}

// Refresh exchanges a refresh token for a new token pair. Account data and
// roles are re-read so changes since the last login take effect.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	if refreshToken == "" {
		return nil, ErrBadRequest
	}

	accountID, err := s.tokenProvider.DecodeRefreshToken(refreshToken)
	if err != nil {
		s.recordRefreshFailure(ctx, 0, err.Error())
		return nil, err
	}

	account, err := s.store.GetAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			s.recordRefreshFailure(ctx, accountID, "account not found")
			return nil, ErrAccountNotFound
		}
		s.metrics.RecordDatabaseQueryError("get_account")
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	if !account.IsActive {
		s.recordRefreshFailure(ctx, accountID, "account disabled")
		return nil, ErrUnauthorized
	}

	pair, err := s.issueTokens(ctx, account)
	if err != nil {
		return nil, err
	}

	s.metrics.RecordTokenRefresh(true)
	s.auditService.Log(ctx, AuthEventEntry{
		EventType: models.EventTokenRefreshed,
		Method:    models.AuthMethodRefresh,
		AccountID: account.ID,
		Username:  account.Username,
		Success:   true,
	})

	return pair, nil
}

// issueTokens builds the identity with current roles and signs both tokens.
func (s *AuthService) issueTokens(ctx context.Context, account *models.Account) (*TokenPair, error) {
	roleIDs, err := s.store.GetAccountRoleIDs(ctx, account.ID)
	if err != nil {
		s.metrics.RecordDatabaseQueryError("get_roles")
		return nil, fmt.Errorf("%w: load roles: %v", ErrInternal, err)
	}

	accessToken, expiresAt, err := s.tokenProvider.IssueAccessToken(account.Identity(roleIDs), s.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.metrics.RecordTokenIssued(token.TokenTypeAccess)

	refreshToken, err := s.tokenProvider.CreateRefreshToken(account.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}
	s.metrics.RecordTokenIssued(token.TokenTypeRefresh)

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// syncProfile copies non-empty directory attributes onto the local account.
// Failures are logged and never fail the login.
func (s *AuthService) syncProfile(ctx context.Context, account *models.Account, result *core.AuthResult) {
	fullName := firstNonEmpty(result.FullName, account.FullName)
	title := firstNonEmpty(result.Title, account.Title)
	email := firstNonEmpty(result.Email, account.Email)

	if fullName == account.FullName && title == account.Title && email == account.Email {
		return
	}

	if err := s.store.UpdateAccountProfile(ctx, account.ID, fullName, title, email); err != nil {
		s.metrics.RecordDatabaseQueryError("update_profile")
		log.Printf("[Auth] Failed to sync directory profile for %q: %v", account.Username, err)
		return
	}

	account.FullName = fullName
	account.Title = title
	account.Email = email
}

func (s *AuthService) recordLoginFailure(
	ctx context.Context,
	method models.AuthMethod,
	accountID int64,
	username, reason string,
	start time.Time,
) {
	label := string(method)
	if label == "" {
		label = "unknown"
	}
	s.metrics.RecordLogin(label, false, time.Since(start))
	s.auditService.Log(ctx, AuthEventEntry{
		EventType:    models.EventLoginFailure,
		Method:       method,
		AccountID:    accountID,
		Username:     username,
		Success:      false,
		ErrorMessage: reason,
	})
	log.Printf("[Auth] Login failed for %q: %s", username, reason)
}

func (s *AuthService) recordRefreshFailure(ctx context.Context, accountID int64, reason string) {
	s.metrics.RecordTokenRefresh(false)
	s.auditService.Log(ctx, AuthEventEntry{
		EventType:    models.EventRefreshFailure,
		Method:       models.AuthMethodRefresh,
		AccountID:    accountID,
		Success:      false,
		ErrorMessage: reason,
	})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
