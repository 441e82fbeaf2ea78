package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/teamdesk/teamdesk/internal/models"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("test-secret", 2, 168)

	access, refresh, err := tm.CreateTokens(Principal{UserID: 42, Role: models.RoleProjectManager})
	require.NoError(t, err)
	require.NotEmpty(t, access)
	require.NotEmpty(t, refresh)
	assert.NotEqual(t, access, refresh)

	p, err := tm.CheckToken(access)
	require.NoError(t, err)
	assert.EqualValues(t, 42, p.UserID)
	assert.Equal(t, models.RoleProjectManager, p.Role)

	p, err = tm.CheckToken(refresh)
	require.NoError(t, err)
	assert.EqualValues(t, 42, p.UserID)
}

func TestCheckTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret-a", 2, 168)
	access, _, err := tm.CreateTokens(Principal{UserID: 1, Role: models.RoleClient})
	require.NoError(t, err)

	other := NewTokenManager("secret-b", 2, 168)
	_, err = other.CheckToken(access)
	assert.Error(t, err)
}

func TestCheckTokenRejectsExpired(t *testing.T) {
	tm := NewTokenManager("test-secret", -1, -1)
	access, _, err := tm.CreateTokens(Principal{UserID: 1, Role: models.RoleClient})
	require.NoError(t, err)

	_, err = tm.CheckToken(access)
	assert.Error(t, err)
}

func TestCheckTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("test-secret", 2, 168)
	_, err := tm.CheckToken("not-a-token")
	assert.Error(t, err)
	_, err = tm.CheckToken("")
	assert.Error(t, err)
}
