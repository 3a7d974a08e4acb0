package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService_AccessTokenRoundTrip(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute, 720*time.Hour)

	token, expiresIn, err := svc.GenerateAccessToken("user-1", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(900), expiresIn)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
}

func TestService_RejectsExpiredToken(t *testing.T) {
	svc := NewService("test-secret", -time.Minute, 720*time.Hour)

	token, _, err := svc.GenerateAccessToken("user-1", "alice")
	require.NoError(t, err)

	_, err = svc.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RejectsWrongSecret(t *testing.T) {
	issuer := NewService("secret-a", 15*time.Minute, 720*time.Hour)
	verifier := NewService("secret-b", 15*time.Minute, 720*time.Hour)

	token, _, err := issuer.GenerateAccessToken("user-1", "alice")
	require.NoError(t, err)

	_, err = verifier.ValidateAccessToken(token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RejectsGarbage(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute, 720*time.Hour)

	_, err := svc.ValidateAccessToken("not.a.token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestService_RefreshTokensAreUnique(t *testing.T) {
	svc := NewService("test-secret", 15*time.Minute, 720*time.Hour)

	first, expiry, err := svc.GenerateRefreshToken()
	require.NoError(t, err)
	second, _, err := svc.GenerateRefreshToken()
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, expiry.After(time.Now().Add(719*time.Hour)))
}
