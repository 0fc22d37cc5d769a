package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)

	assert.NotEqual(t, "s3cret!", hash)
	assert.True(t, VerifyPassword("s3cret!", hash))
	assert.False(t, VerifyPassword("S3cret!", hash))
	assert.False(t, VerifyPassword("", hash))
}

func TestHashPassword_RandomSalt(t *testing.T) {
	h1, err := HashPassword("same")
	require.NoError(t, err)
	h2, err := HashPassword("same")
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.True(t, VerifyPassword("same", h1))
	assert.True(t, VerifyPassword("same", h2))
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"plaintext", "password"},
		{"truncated", "$2a$12$abc"},
		{"wrong prefix", "$1$saltsalt$hashhashhashhash"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, VerifyPassword("password", tt.hash))
			})
		})
	}
}
