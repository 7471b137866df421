package auth_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/qrmenu/config"
	"github.com/shashiranjanraj/qrmenu/pkg/auth"
)

func TestTokenRoundTrip(t *testing.T) {
	config.Set("APP_KEY", "test-key")
	t.Cleanup(func() { config.Unset("APP_KEY") })

	tok, err := auth.GenerateToken("u-1", "owner@example.com")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
}

func TestTokenSignedWithOtherKeyIsRejected(t *testing.T) {
	config.Set("APP_KEY", "key-a")
	tok, err := auth.GenerateToken("u-1", "owner@example.com")
	require.NoError(t, err)

	config.Set("APP_KEY", "key-b")
	t.Cleanup(func() { config.Unset("APP_KEY") })

	_, err = auth.ValidateToken(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestUnsignedTokenIsRejected(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, auth.Claims{UserID: "u-1"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = auth.ValidateToken(tok)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("secret1")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, auth.CheckPassword(hash, "secret1"))
	assert.False(t, auth.CheckPassword(hash, "secret2"))
}

func TestPrincipalContext(t *testing.T) {
	_, ok := auth.UserID(context.Background())
	assert.False(t, ok)

	id, ok := auth.UserID(auth.WithUser(context.Background(), "u-9"))
	assert.True(t, ok)
	assert.Equal(t, "u-9", id)
}
