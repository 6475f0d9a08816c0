package security_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"parley/internal/security"
)

func TestTokenRoundTrip(t *testing.T) {
	svc := security.NewTokenService("test-secret", time.Hour)

	token, err := svc.CreateForUser(42, "alice@example.com")
	require.NoError(t, err)

	claims, err := svc.Parse(token)
	require.NoError(t, err)

	id, err := svc.Subject(claims)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
	assert.Equal(t, "alice@example.com", claims["email"])
}

func TestTokenWrongSecret(t *testing.T) {
	token, err := security.NewTokenService("secret-a", time.Hour).CreateForUser(42, "alice@example.com")
	require.NoError(t, err)

	_, err = security.NewTokenService("secret-b", time.Hour).Parse(token)
	assert.Error(t, err)
}

func TestTokenExpired(t *testing.T) {
	svc := security.NewTokenService("test-secret", -time.Minute)

	token, err := svc.CreateForUser(42, "alice@example.com")
	require.NoError(t, err)

	_, err = svc.Parse(token)
	assert.Error(t, err)
}
