package token

import "errors"

var (
	// ErrTokenGeneration indicates token generation failed
	ErrTokenGeneration = errors.New("failed to generate token")

	// ErrInvalidToken indicates the token is invalid or of the wrong kind
	ErrInvalidToken = errors.New("invalid token")

	// ErrMalformedToken indicates a refresh token whose subject does not carry an account id
	ErrMalformedToken = errors.New("malformed token")

	// ErrExpiredOrInvalid indicates a refresh token that failed signature or expiry checks
	ErrExpiredOrInvalid = errors.New("token expired or invalid")
)
