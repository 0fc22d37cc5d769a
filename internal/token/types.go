package token

// Token type constants
const (
	TokenTypeBearer  = "Bearer"
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// Claim names
const (
	ClaimAccount   = "account"
	ClaimType      = "type"
	ClaimSubject   = "sub"
	ClaimIssuedAt  = "iat"
	ClaimExpiresAt = "exp"
)

// refreshSubjectPrefix prefixes the account id in a refresh token's subject.
const refreshSubjectPrefix = "refresh_"
