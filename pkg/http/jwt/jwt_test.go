package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenAndParseToken(t *testing.T) {
	secret := "bf284d03-ba65-42d4-a9fe-0d2fbfe61060"

	token, claims, err := GenToken("admin", "", []byte(secret), time.Hour)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)

	parsed, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "admin", parsed.Operator)
	assert.Equal(t, "oneupdate", parsed.Issuer)
	assert.Equal(t, claims.ID, parsed.ID)
}

func TestParseToken_Expired(t *testing.T) {
	secret := "secret"
	token, _, err := GenToken("admin", "", []byte(secret), -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseToken_WrongSecret(t *testing.T) {
	token, _, err := GenToken("admin", "", []byte("one"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, "two")
	assert.Error(t, err)
}

func TestGenToken_EmptySecret(t *testing.T) {
	_, _, err := GenToken("admin", "", nil, time.Hour)
	assert.Error(t, err)
}
