package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testBcryptCost = 4 // Minimum cost keeps the suite fast

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", testBcryptCost)

	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEqual(t, "correct horse battery", hash)
}

func TestHashPassword_TooShort(t *testing.T) {
	_, err := HashPassword("short", testBcryptCost)

	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestHashPassword_TooLong(t *testing.T) {
	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	_, err := HashPassword(string(long), testBcryptCost)

	assert.ErrorIs(t, err, ErrPasswordTooLong)
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery", testBcryptCost)
	require.NoError(t, err)

	assert.NoError(t, CheckPassword("correct horse battery", hash))
	assert.ErrorIs(t, CheckPassword("wrong password!", hash), ErrInvalidCredentials)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	// A corrupted stored hash must look like a plain credential failure
	err := CheckPassword("correct horse battery", "not-a-bcrypt-hash")

	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestGenerateSessionSecret(t *testing.T) {
	first, err := GenerateSessionSecret()
	require.NoError(t, err)
	assert.Len(t, first, 64) // 32 bytes hex-encoded

	second, err := GenerateSessionSecret()
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
