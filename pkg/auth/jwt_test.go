package auth_test

import (
	"testing"

	"github.com/shashiranjanraj/dukaan/pkg/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	token, err := auth.GenerateToken(42, "worker", "66f0a1b2c3d4e5f601020304")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "worker", claims.Role)
	assert.Equal(t, "66f0a1b2c3d4e5f601020304", claims.ShopID)
}

func TestCustomerTokenHasNoShop(t *testing.T) {
	token, err := auth.GenerateToken(7, "customer", "")
	require.NoError(t, err)

	claims, err := auth.ValidateToken(token)
	require.NoError(t, err)
	assert.Empty(t, claims.ShopID)
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := auth.ValidateToken("not.a.token")
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := auth.HashPassword("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)
	assert.True(t, auth.CheckPassword(hash, "s3cret-pass"))
	assert.False(t, auth.CheckPassword(hash, "wrong"))
}
