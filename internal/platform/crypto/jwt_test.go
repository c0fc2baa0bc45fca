package crypto

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	token, jti, err := GenerateToken("secret", "user-1", "USER", time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := ParseToken("secret", token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.Sub)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, jti, claims.ID)
}

func TestParseToken_Rejects(t *testing.T) {
	token, _, err := GenerateToken("secret", "user-1", "USER", time.Minute)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := ParseToken("other", token)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired, _, err := GenerateToken("secret", "user-1", "USER", -time.Minute)
		require.NoError(t, err)
		_, err = ParseToken("secret", expired)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("foreign issuer", func(t *testing.T) {
		c := Claims{Sub: "user-1", RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		}}
		foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte("secret"))
		require.NoError(t, err)
		_, err = ParseToken("secret", foreign)
		assert.Error(t, err)
	})

	t.Run("empty secret", func(t *testing.T) {
		_, _, err := GenerateToken("", "user-1", "USER", time.Minute)
		assert.ErrorIs(t, err, ErrEmptySecret)
	})
}

func TestHashAndVerifyPasswordBasic(t *testing.T) {
	hash, err := HashPassword("Test123!@#")
	require.NoError(t, err)
	assert.True(t, VerifyPassword(hash, "Test123!@#"))
	assert.False(t, VerifyPassword(hash, "wrong"))
}
