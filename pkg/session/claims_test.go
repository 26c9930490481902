package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect_JWT(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	token := signedToken(t, jwt.RegisteredClaims{
		Subject:   "alice",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	})

	info := Inspect(token)
	assert.False(t, info.Opaque)
	assert.Equal(t, "alice", info.Subject)
	assert.True(t, info.ExpiresAt.Equal(now.Add(time.Hour)))
	assert.True(t, info.IssuedAt.Equal(now))
	assert.False(t, info.Expired(now))
	assert.True(t, info.Expired(now.Add(2*time.Hour)))
}

func TestInspect_Opaque(t *testing.T) {
	for _, token := range []string{"", "plain-session-id", "a.b"} {
		info := Inspect(token)
		assert.True(t, info.Opaque, "token %q", token)
		assert.False(t, info.Expired(time.Now()), "opaque tokens never report expiry")
	}
}

func TestInspect_NoExpiry(t *testing.T) {
	token := signedToken(t, jwt.RegisteredClaims{Subject: "bob"})

	info := Inspect(token)
	assert.False(t, info.Opaque)
	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired(time.Now()))
}

func TestCheck(t *testing.T) {
	now := time.Now()
	expired := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))})
	valid := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute))})

	assert.ErrorIs(t, Check(expired, now), ErrTokenExpired)
	assert.NoError(t, Check(valid, now))
	assert.NoError(t, Check("opaque", now))
}
