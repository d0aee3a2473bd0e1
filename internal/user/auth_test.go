package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("sup3r-secret")
	require.NoError(t, err)
	assert.NotEqual(t, "sup3r-secret", hash)

	assert.True(t, CheckPasswordHash("sup3r-secret", hash))
	assert.False(t, CheckPasswordHash("wrong-password", hash))
}

func TestGenerateAndParseJWT(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	token, err := GenerateJWT(7, "admin", "dana@example.com", "Dana")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := ParseJWT(token)
	require.NoError(t, err)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "dana@example.com", claims.Email)
	assert.Equal(t, "Dana", claims.Name)
}

func TestGenerateJWT_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := GenerateJWT(7, "user", "dana@example.com", "Dana")
	assert.Error(t, err)
}

func TestParseJWT_WrongSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "first-secret")
	token, err := GenerateJWT(7, "user", "dana@example.com", "Dana")
	require.NoError(t, err)

	t.Setenv("JWT_SECRET", "second-secret")
	_, err = ParseJWT(token)
	assert.Error(t, err)
}

func TestParseJWT_Garbage(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	_, err := ParseJWT("not.a.token")
	assert.Error(t, err)
}
