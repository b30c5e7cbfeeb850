package auth

import (
	"testing"

	"github.com/anzhiyu-c/ibbs/pkg/idgen"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	require.NoError(t, idgen.InitSqidsEncoderWithSeed("jwt-test"))
	secret := []byte("test-secret")

	access, err := GenerateToken(3, 2, secret)
	require.NoError(t, err)

	claims, err := ParseToken(access, secret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAccess, claims.TokenType)
	assert.Equal(t, Issuer, claims.Issuer)

	userID, err := idgen.DecodeEntityID(claims.UserID, idgen.EntityTypeUser)
	require.NoError(t, err)
	assert.Equal(t, uint(3), userID)

	groupID, err := idgen.DecodeEntityID(claims.UserGroupID, idgen.EntityTypeUserGroup)
	require.NoError(t, err)
	assert.Equal(t, uint(2), groupID)

	refresh, err := GenerateRefreshToken(3, secret)
	require.NoError(t, err)
	refreshClaims, err := ParseToken(refresh, secret)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeRefresh, refreshClaims.TokenType)
	assert.Empty(t, refreshClaims.UserGroupID)
}

func TestParseToken_Rejects(t *testing.T) {
	require.NoError(t, idgen.InitSqidsEncoderWithSeed("jwt-test"))

	token, err := GenerateToken(1, 1, []byte("secret-a"))
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("secret-b"))
	assert.Error(t, err)

	_, err = ParseToken(token, nil)
	assert.Error(t, err)

	_, err = GenerateToken(1, 1, nil)
	assert.Error(t, err)
}
