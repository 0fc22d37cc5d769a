package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/auth"
	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/core"
	"github.com/adelabdelgawad/auth-base/internal/mocks"
	"github.com/adelabdelgawad/auth-base/internal/models"
	"github.com/adelabdelgawad/auth-base/internal/store"
	"github.com/adelabdelgawad/auth-base/internal/token"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestTokenProvider(t *testing.T) *token.LocalTokenProvider {
	t.Helper()
	p, err := token.NewLocalTokenProvider(&config.Config{
		SessionSecret:        "services-test-secret",
		Algorithm:            "HS256",
		AccessTokenDuration:  30 * time.Minute,
		RefreshTokenDuration: 7 * 24 * time.Hour,
	})
	require.NoError(t, err)
	return p
}

type authFixture struct {
	store     *mocks.MockAccountStore
	local     *mocks.MockAuthProvider
	directory *mocks.MockAuthProvider
	tokens    *token.LocalTokenProvider
	service   *AuthService
}

func newAuthFixture(t *testing.T, m core.Recorder) *authFixture {
	t.Helper()
	ctrl := gomock.NewController(t)
	f := &authFixture{
		store:     mocks.NewMockAccountStore(ctrl),
		local:     mocks.NewMockAuthProvider(ctrl),
		directory: mocks.NewMockAuthProvider(ctrl),
		tokens:    newTestTokenProvider(t),
	}
	f.local.EXPECT().Name().Return("local").AnyTimes()
	f.directory.EXPECT().Name().Return("directory").AnyTimes()
	f.service = NewAuthService(f.store, f.local, f.directory, f.tokens, nil, m, "admin", 30*time.Minute)
	return f
}

func decodeIdentity(t *testing.T, p *token.LocalTokenProvider, accessToken string) *models.Identity {
	t.Helper()
	claims, err := p.DecodeAccessToken(accessToken)
	require.NoError(t, err)
	identity, err := token.IdentityFromClaims(claims)
	require.NoError(t, err)
	return identity
}

func TestLogin_MissingFields(t *testing.T) {
	f := newAuthFixture(t, nil)
	ctx := context.Background()

	for _, tc := range [][2]string{{"", "pw"}, {"jdoe", ""}, {"", ""}} {
		_, err := f.service.Login(ctx, tc[0], tc[1])
		assert.ErrorIs(t, err, ErrBadRequest)
	}
}

func TestLogin_UnknownAccount(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.store.EXPECT().
		GetAccountByUsername(gomock.Any(), "ghost").
		Return(nil, store.ErrRecordNotFound)

	_, err := f.service.Login(context.Background(), "ghost", "pw")
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestLogin_StoreFailure(t *testing.T) {
	f := newAuthFixture(t, nil)
	f.store.EXPECT().
		GetAccountByUsername(gomock.Any(), "jdoe").
		Return(nil, errors.New("connection reset"))

	_, err := f.service.Login(context.Background(), "jdoe", "pw")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestLogin_LocalAdmin(t *testing.T) {
	f := newAuthFixture(t, nil)
	admin := &models.Account{ID: 1, Username: "admin", PasswordHash: "$2a$12$hash", FullName: "Administrator", IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "admin").Return(admin, nil)
	f.local.EXPECT().
		Authenticate(gomock.Any(), "admin", "admin-pass").
		Return(&core.AuthResult{Username: "admin", Success: true}, nil)
	f.store.EXPECT().GetAccountRoleIDs(gomock.Any(), int64(1)).Return([]int64{1}, nil)

	pair, err := f.service.Login(context.Background(), "admin", "admin-pass")
	require.NoError(t, err)
	assert.Greater(t, pair.ExpiresAt, time.Now().UnixMilli())

	identity := decodeIdentity(t, f.tokens, pair.AccessToken)
	assert.Equal(t, &models.Identity{
		ID:       1,
		Username: "admin",
		FullName: "Administrator",
		Roles:    []int64{1},
	}, identity)

	id, err := f.tokens.DecodeRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestLogin_BranchFollowsStoredUsername(t *testing.T) {
	t.Run("case variant of admin stays local", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		admin := &models.Account{ID: 1, Username: "admin", PasswordHash: "$2a$12$hash", IsActive: true}

		f.store.EXPECT().GetAccountByUsername(gomock.Any(), "Admin").Return(admin, nil)
		f.local.EXPECT().
			Authenticate(gomock.Any(), "admin", "admin-pass").
			Return(&core.AuthResult{Username: "admin", Success: true}, nil)
		f.directory.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)
		f.store.EXPECT().GetAccountRoleIDs(gomock.Any(), int64(1)).Return([]int64{1}, nil)

		pair, err := f.service.Login(context.Background(), "Admin", "admin-pass")
		require.NoError(t, err)
		assert.Equal(t, "admin", decodeIdentity(t, f.tokens, pair.AccessToken).Username)
	})

	t.Run("case variant rejected by local check", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		admin := &models.Account{ID: 1, Username: "admin", PasswordHash: "$2a$12$hash", IsActive: true}

		f.store.EXPECT().GetAccountByUsername(gomock.Any(), "ADMIN").Return(admin, nil)
		f.local.EXPECT().
			Authenticate(gomock.Any(), "admin", "directory-pass").
			Return(nil, auth.ErrInvalidCredentials)
		f.directory.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := f.service.Login(context.Background(), "ADMIN", "directory-pass")
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

func TestLogin_LocalAdminWrongPassword(t *testing.T) {
	f := newAuthFixture(t, nil)
	admin := &models.Account{ID: 1, Username: "admin", PasswordHash: "$2a$12$hash", IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "admin").Return(admin, nil)
	f.local.EXPECT().
		Authenticate(gomock.Any(), "admin", "nope").
		Return(nil, auth.ErrInvalidCredentials)

	_, err := f.service.Login(context.Background(), "admin", "nope")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_LocalAdminWithoutHash(t *testing.T) {
	f := newAuthFixture(t, nil)
	admin := &models.Account{ID: 1, Username: "admin", IsActive: true}
	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "admin").Return(admin, nil)

	_, err := f.service.Login(context.Background(), "admin", "anything")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLogin_DirectoryUserSyncsProfile(t *testing.T) {
	f := newAuthFixture(t, nil)
	account := &models.Account{ID: 7, Username: "jdoe", FullName: "J. Doe", IsDomainUser: true, IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "jdoe").Return(account, nil)
	f.directory.EXPECT().
		Authenticate(gomock.Any(), "jdoe", "right").
		Return(&core.AuthResult{
			Username: "jdoe",
			FullName: "John Doe",
			Title:    "Engineer",
			Email:    "jdoe@example.com",
			Success:  true,
		}, nil)
	f.store.EXPECT().
		UpdateAccountProfile(gomock.Any(), int64(7), "John Doe", "Engineer", "jdoe@example.com").
		Return(nil)
	f.store.EXPECT().GetAccountRoleIDs(gomock.Any(), int64(7)).Return([]int64{2, 3}, nil)

	pair, err := f.service.Login(context.Background(), "jdoe", "right")
	require.NoError(t, err)

	identity := decodeIdentity(t, f.tokens, pair.AccessToken)
	assert.Equal(t, "John Doe", identity.FullName)
	assert.Equal(t, "Engineer", identity.Title)
	assert.Equal(t, "jdoe@example.com", identity.Email)
	assert.Equal(t, []int64{2, 3}, identity.Roles)
}

func TestLogin_DirectoryUserProfileSyncFailureIsIgnored(t *testing.T) {
	f := newAuthFixture(t, nil)
	account := &models.Account{ID: 7, Username: "jdoe", FullName: "J. Doe", IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "jdoe").Return(account, nil)
	f.directory.EXPECT().
		Authenticate(gomock.Any(), "jdoe", "right").
		Return(&core.AuthResult{Username: "jdoe", FullName: "John Doe", Success: true}, nil)
	f.store.EXPECT().
		UpdateAccountProfile(gomock.Any(), int64(7), "John Doe", "", "").
		Return(errors.New("database is locked"))
	f.store.EXPECT().GetAccountRoleIDs(gomock.Any(), int64(7)).Return(nil, nil)

	pair, err := f.service.Login(context.Background(), "jdoe", "right")
	require.NoError(t, err)

	identity := decodeIdentity(t, f.tokens, pair.AccessToken)
	assert.Equal(t, "J. Doe", identity.FullName)
	assert.Equal(t, []int64{}, identity.Roles)
}

func TestLogin_DirectoryUserWrongPassword(t *testing.T) {
	f := newAuthFixture(t, nil)
	account := &models.Account{ID: 7, Username: "jdoe", IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "jdoe").Return(account, nil)
	f.directory.EXPECT().
		Authenticate(gomock.Any(), "jdoe", "wrong").
		Return(nil, auth.ErrInvalidCredentials)
	// the local provider must never be consulted for directory accounts
	f.local.EXPECT().Authenticate(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

	_, err := f.service.Login(context.Background(), "jdoe", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_DirectoryNotConfigured(t *testing.T) {
	f := newAuthFixture(t, nil)
	account := &models.Account{ID: 7, Username: "jdoe", IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "jdoe").Return(account, nil)
	f.directory.EXPECT().
		Authenticate(gomock.Any(), "jdoe", "pw").
		Return(nil, auth.ErrDirectoryUnavailable)

	_, err := f.service.Login(context.Background(), "jdoe", "pw")
	assert.ErrorIs(t, err, ErrConfiguration)
}

func TestLogin_InactiveAccount(t *testing.T) {
	f := newAuthFixture(t, nil)
	account := &models.Account{ID: 7, Username: "jdoe", IsActive: false}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "jdoe").Return(account, nil)
	f.directory.EXPECT().
		Authenticate(gomock.Any(), "jdoe", "right").
		Return(&core.AuthResult{Username: "jdoe", Success: true}, nil)

	_, err := f.service.Login(context.Background(), "jdoe", "right")
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestLogin_RoleLookupFailure(t *testing.T) {
	f := newAuthFixture(t, nil)
	admin := &models.Account{ID: 1, Username: "admin", PasswordHash: "$2a$12$hash", IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "admin").Return(admin, nil)
	f.local.EXPECT().
		Authenticate(gomock.Any(), "admin", "pw").
		Return(&core.AuthResult{Username: "admin", Success: true}, nil)
	f.store.EXPECT().GetAccountRoleIDs(gomock.Any(), int64(1)).Return(nil, errors.New("timeout"))

	_, err := f.service.Login(context.Background(), "admin", "pw")
	assert.ErrorIs(t, err, ErrInternal)
}

func TestLogin_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	recorder := mocks.NewMockRecorder(ctrl)
	f := newAuthFixture(t, recorder)
	admin := &models.Account{ID: 1, Username: "admin", PasswordHash: "$2a$12$hash", IsActive: true}

	f.store.EXPECT().GetAccountByUsername(gomock.Any(), "admin").Return(admin, nil)
	f.local.EXPECT().
		Authenticate(gomock.Any(), "admin", "pw").
		Return(&core.AuthResult{Username: "admin", Success: true}, nil)
	f.store.EXPECT().GetAccountRoleIDs(gomock.Any(), int64(1)).Return([]int64{1}, nil)

	recorder.EXPECT().RecordTokenIssued(token.TokenTypeAccess)
	recorder.EXPECT().RecordTokenIssued(token.TokenTypeRefresh)
	recorder.EXPECT().RecordLogin("local", true, gomock.Any())

	_, err := f.service.Login(context.Background(), "admin", "pw")
	require.NoError(t, err)
}

func TestRefresh(t *testing.T) {
	f := newAuthFixture(t, nil)
	account := &models.Account{ID: 7, Username: "jdoe", FullName: "John Doe", IsActive: true}

	refreshToken, err := f.tokens.CreateRefreshToken(7)
	require.NoError(t, err)

	f.store.EXPECT().GetAccountByID(gomock.Any(), int64(7)).Return(account, nil)
	f.store.EXPECT().GetAccountRoleIDs(gomock.Any(), int64(7)).Return([]int64{4}, nil)

	pair, err := f.service.Refresh(context.Background(), refreshToken)
	require.NoError(t, err)

	identity := decodeIdentity(t, f.tokens, pair.AccessToken)
	assert.Equal(t, int64(7), identity.ID)
	assert.Equal(t, []int64{4}, identity.Roles)

	id, err := f.tokens.DecodeRefreshToken(pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}

func TestRefresh_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		_, err := f.service.Refresh(ctx, "")
		assert.ErrorIs(t, err, ErrBadRequest)
	})

	t.Run("access token used as refresh token", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		access, _, err := f.tokens.IssueAccessToken(&models.Identity{ID: 7, Username: "jdoe"}, 0)
		require.NoError(t, err)

		_, err = f.service.Refresh(ctx, access)
		assert.ErrorIs(t, err, token.ErrInvalidToken)
	})

	t.Run("garbage token", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		_, err := f.service.Refresh(ctx, "garbage")
		assert.ErrorIs(t, err, token.ErrExpiredOrInvalid)
	})

	t.Run("deleted account", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		refreshToken, err := f.tokens.CreateRefreshToken(99)
		require.NoError(t, err)
		f.store.EXPECT().GetAccountByID(gomock.Any(), int64(99)).Return(nil, store.ErrRecordNotFound)

		_, err = f.service.Refresh(ctx, refreshToken)
		assert.ErrorIs(t, err, ErrAccountNotFound)
	})

	t.Run("disabled account", func(t *testing.T) {
		f := newAuthFixture(t, nil)
		refreshToken, err := f.tokens.CreateRefreshToken(7)
		require.NoError(t, err)
		f.store.EXPECT().
			GetAccountByID(gomock.Any(), int64(7)).
			Return(&models.Account{ID: 7, Username: "jdoe", IsActive: false}, nil)

		_, err = f.service.Refresh(ctx, refreshToken)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}

// TestLogin_WithSQLiteStore runs the admin flow against a real store and audit log.
func TestLogin_WithSQLiteStore(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DefaultAdminPassword: "admin-pass", LocalAdminUsername: "admin"}
	db, err := store.New(ctx, "sqlite", ":memory:", cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	audit := NewAuditService(db, true, 10)
	tokens := newTestTokenProvider(t)
	svc := NewAuthService(
		db,
		auth.NewLocalAuthProvider(db),
		auth.NewDirectoryAuthProvider(nil),
		tokens,
		audit,
		nil,
		"admin",
		30*time.Minute,
	)

	pair, err := svc.Login(ctx, "admin", "admin-pass")
	require.NoError(t, err)
	identity := decodeIdentity(t, tokens, pair.AccessToken)
	assert.Equal(t, "admin", identity.Username)
	assert.Len(t, identity.Roles, 1)

	_, err = svc.Login(ctx, "admin", "wrong")
	assert.ErrorIs(t, err, ErrUnauthorized)

	refreshed, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	require.NoError(t, audit.Shutdown(ctx))

	successes, err := db.CountAuthEvents(ctx, models.EventLoginSuccess)
	require.NoError(t, err)
	assert.Equal(t, int64(1), successes)

	failures, err := db.CountAuthEvents(ctx, models.EventLoginFailure)
	require.NoError(t, err)
	assert.Equal(t, int64(1), failures)

	refreshes, err := db.CountAuthEvents(ctx, models.EventTokenRefreshed)
	require.NoError(t, err)
	assert.Equal(t, int64(1), refreshes)
}
