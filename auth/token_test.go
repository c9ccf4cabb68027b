package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTokenVerify(t *testing.T) {
	token, err := NewToken("s3cret", "alice", time.Hour)
	require.NoError(t, err)

	claims, err := Verify("s3cret", token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.True(t, claims.ExpiresAt > time.Now().Unix())

	_, err = Verify("other", token)
	assert.Equal(t, ErrUnauthorized, errors.Cause(err))
}

func TestNoSecret(t *testing.T) {
	_, err := NewToken("", "x", 0)
	assert.Error(t, err)
}

func TestExpired(t *testing.T) {
	claims := jwt.StandardClaims{Issuer: issuer, ExpiresAt: time.Now().Add(-time.Minute).Unix()}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = Verify("k", token)
	assert.Error(t, err)
}

func TestForeignIssuer(t *testing.T) {
	claims := jwt.StandardClaims{Issuer: "someone"}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("k"))
	require.NoError(t, err)

	_, err = Verify("k", token)
	assert.Equal(t, ErrUnauthorized, err)
}

func TestFromHeader(t *testing.T) {
	tok, ok := FromHeader("Bearer abc")
	assert.True(t, ok)
	assert.Equal(t, "abc", tok)

	_, ok = FromHeader("Basic abc")
	assert.False(t, ok)
	_, ok = FromHeader("bearer   ")
	assert.False(t, ok)
}
