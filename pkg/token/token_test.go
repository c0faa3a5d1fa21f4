package token_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/work-near-me/client/pkg/token"
)

func mint(t *testing.T, exp time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)}
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return raw
}

func TestExpiresAt(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	got, err := token.ExpiresAt(mint(t, exp))
	require.NoError(t, err)
	assert.True(t, got.Equal(exp))
}

func TestExpiresAt_Garbage(t *testing.T) {
	_, err := token.ExpiresAt("not-a-jwt")
	assert.Error(t, err)
}

func TestIsExpired(t *testing.T) {
	assert.False(t, token.IsExpired(mint(t, time.Now().Add(time.Hour)), 0))
	assert.True(t, token.IsExpired(mint(t, time.Now().Add(-time.Minute)), 0))
	// Within skew counts as expired.
	assert.True(t, token.IsExpired(mint(t, time.Now().Add(10*time.Second)), 30*time.Second))
	// Unparseable tokens are treated as expired.
	assert.True(t, token.IsExpired("garbage", 0))
}
