package token

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"strconv"
	"strings"
	"time"

	"github.com/adelabdelgawad/auth-base/internal/config"
	"github.com/adelabdelgawad/auth-base/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// LocalTokenProvider signs and verifies access and refresh tokens with the
// shared session secret.
type LocalTokenProvider struct {
	config *config.Config
	method jwt.SigningMethod
	now    func() time.Time
}

// NewLocalTokenProvider creates a new local token provider. The configured
// algorithm must be an HMAC algorithm.
func NewLocalTokenProvider(cfg *config.Config) (*LocalTokenProvider, error) {
	method := jwt.GetSigningMethod(cfg.Algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("%w: unsupported algorithm %q", ErrTokenGeneration, cfg.Algorithm)
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("%w: empty signing secret", ErrTokenGeneration)
	}
	return &LocalTokenProvider{config: cfg, method: method, now: time.Now}, nil
}

// CreateAccessToken signs claims with iat and exp added. A non-positive ttl
// uses the configured access token lifetime. It returns the token and its
// expiry in epoch milliseconds.
func (p *LocalTokenProvider) CreateAccessToken(
	claims map[string]any,
	ttl time.Duration,
) (string, int64, error) {
	if ttl <= 0 {
		ttl = p.config.AccessTokenDuration
	}
	now := p.now()
	expiresAt := now.Add(ttl)

	mc := jwt.MapClaims{}
	maps.Copy(mc, claims)
	mc[ClaimIssuedAt] = now.Unix()
	mc[ClaimExpiresAt] = expiresAt.Unix()

	signed, err := p.sign(mc)
	if err != nil {
		return "", 0, err
	}
	return signed, expiresAt.UnixMilli(), nil
}

// IssueAccessToken embeds identity under the "account" claim.
func (p *LocalTokenProvider) IssueAccessToken(
	identity *models.Identity,
	ttl time.Duration,
) (string, int64, error) {
	return p.CreateAccessToken(map[string]any{ClaimAccount: identity}, ttl)
}

// CreateRefreshToken issues a refresh token for accountID.
func (p *LocalTokenProvider) CreateRefreshToken(accountID int64) (string, error) {
	now := p.now()
	return p.sign(jwt.MapClaims{
		ClaimSubject:   refreshSubjectPrefix + strconv.FormatInt(accountID, 10),
		ClaimType:      TokenTypeRefresh,
		ClaimIssuedAt:  now.Unix(),
		ClaimExpiresAt: now.Add(p.config.RefreshTokenDuration).Unix(),
	})
}

// DecodeRefreshToken verifies a refresh token and returns the account id it carries.
func (p *LocalTokenProvider) DecodeRefreshToken(tokenString string) (int64, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrExpiredOrInvalid, err)
	}

	if tokenType, _ := claims[ClaimType].(string); tokenType != TokenTypeRefresh {
		return 0, ErrInvalidToken
	}

	sub, _ := claims[ClaimSubject].(string)
	raw, ok := strings.CutPrefix(sub, refreshSubjectPrefix)
	if !ok {
		return 0, ErrMalformedToken
	}
	accountID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || accountID < 0 {
		return 0, ErrMalformedToken
	}
	return accountID, nil
}

// DecodeAccessToken verifies an access token and returns its claims.
// Refresh tokens are rejected.
func (p *LocalTokenProvider) DecodeAccessToken(tokenString string) (jwt.MapClaims, error) {
	claims, err := p.parse(tokenString)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if tokenType, _ := claims[ClaimType].(string); tokenType == TokenTypeRefresh {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IdentityFromClaims extracts the "account" claim of an access token.
func IdentityFromClaims(claims jwt.MapClaims) (*models.Identity, error) {
	raw, ok := claims[ClaimAccount]
	if !ok {
		return nil, fmt.Errorf("%w: missing account claim", ErrInvalidToken)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	var identity models.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if identity.Username == "" {
		return nil, fmt.Errorf("%w: account claim has no username", ErrInvalidToken)
	}
	return &identity, nil
}

func (p *LocalTokenProvider) sign(claims jwt.MapClaims) (string, error) {
	signed, err := jwt.NewWithClaims(p.method, claims).SignedString([]byte(p.config.SessionSecret))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenGeneration, err)
	}
	return signed, nil
}

func (p *LocalTokenProvider) parse(tokenString string) (jwt.MapClaims, error) {
	if tokenString == "" {
		return nil, errors.New("empty token")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{p.method.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(p.now),
	)
	claims := jwt.MapClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return []byte(p.config.SessionSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("token not valid")
	}
	if _, ok := claims[ClaimIssuedAt]; !ok {
		return nil, errors.New("missing iat claim")
	}
	return claims, nil
}

// Name returns provider name for logging
func (p *LocalTokenProvider) Name() string {
	return "local"
}
