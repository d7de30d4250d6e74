package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenManager_RoundTrip(t *testing.T) {
	m, err := NewTokenManager("secret", time.Minute)
	require.NoError(t, err)

	token, err := m.CreateToken("C100", "C100", RoleClient)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "C100", claims.NuvamaCode)
	assert.Equal(t, RoleClient, claims.Role)
	assert.Equal(t, "C100", claims.Subject)
}

func TestTokenManager_RejectsOtherKey(t *testing.T) {
	a, _ := NewTokenManager("secret-a", time.Minute)
	b, _ := NewTokenManager("secret-b", time.Minute)

	token, err := a.CreateToken("admin", "", RoleAdmin)
	require.NoError(t, err)

	_, err = b.ValidateToken(token)
	assert.Error(t, err)
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	_, err := NewTokenManager("", time.Minute)
	assert.Error(t, err)
}

func TestParseGatewayTime(t *testing.T) {
	ts, ok := ParseGatewayTime("2025-01-05T10:00:00+05:30")
	require.True(t, ok)
	assert.Equal(t, "2025-01-05", FormatDateIST(ts))

	ts, ok = ParseGatewayTime("2025-02-01 09:30:00")
	require.True(t, ok)
	assert.Equal(t, 9, ts.In(IST()).Hour())

	ts, ok = ParseGatewayTime("2025-03-01")
	require.True(t, ok)
	assert.Equal(t, "2025-03-01", FormatDateIST(ts))

	_, ok = ParseGatewayTime("")
	assert.False(t, ok)
	_, ok = ParseGatewayTime("yesterday")
	assert.False(t, ok)
}

func TestGenerateOtpCode(t *testing.T) {
	code, err := GenerateOtpCode(6)
	require.NoError(t, err)
	assert.Len(t, code, 6)
	for _, r := range code {
		assert.True(t, r >= '0' && r <= '9')
	}

	_, err = GenerateOtpCode(0)
	assert.Error(t, err)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret")
	require.NoError(t, err)
	assert.NoError(t, ComparePasswords(hash, "s3cret"))
	assert.Error(t, ComparePasswords(hash, "wrong"))
}
