// Package auth issues and checks the bearer tokens of the HTTP API.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/pkg/errors"
)

const issuer = "inkocr"

var ErrUnauthorized = errors.New("unauthorized")

// NewToken signs an HS256 token for subject, valid for ttl. A zero ttl never
// expires.
func NewToken(secret, subject string, ttl time.Duration) (string, error) {
	if secret == "" {
		return "", errors.New("no token secret configured")
	}
	now := time.Now()
	claims := jwt.StandardClaims{
		Issuer:   issuer,
		Subject:  subject,
		IssuedAt: now.Unix(),
	}
	if ttl > 0 {
		claims.ExpiresAt = now.Add(ttl).Unix()
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}

// Verify parses tokenString and returns its claims.
func Verify(secret, tokenString string) (*jwt.StandardClaims, error) {
	claims := &jwt.StandardClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, errors.Wrap(ErrUnauthorized, err.Error())
	}
	if !token.Valid || claims.Issuer != issuer {
		return nil, ErrUnauthorized
	}
	return claims, nil
}

// FromHeader extracts the token of an "Authorization: Bearer" header.
func FromHeader(header string) (string, bool) {
	const prefix = "bearer "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}
