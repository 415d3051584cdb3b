package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("u-1", "admin", "secret", time.Now())
	require.NoError(t, err)

	claims, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
}

func TestJWTRejectsWrongSecretAndExpired(t *testing.T) {
	token, err := GenerateJWT("u-1", "user", "secret", time.Now())
	require.NoError(t, err)
	_, err = ParseJWT(token, "other")
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)

	old, err := GenerateJWT("u-1", "user", "secret", time.Now().Add(-2*TokenTTL))
	require.NoError(t, err)
	_, err = ParseJWT(old, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	_, err = GenerateJWT("u-1", "user", "", time.Now())
	assert.Error(t, err)
}
