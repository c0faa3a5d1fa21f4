// Package token inspects access tokens issued by the work-near-me API.
// The client never verifies signatures, that is the server's job; it only
// reads the registered claims to report expiry.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNoExpiry = errors.New("token carries no expiry claim")

// ExpiresAt returns the exp claim of a JWT without verifying its signature.
func ExpiresAt(raw string) (time.Time, error) {
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(raw, &claims); err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

// IsExpired reports whether the token expires within skew from now. Tokens
// that cannot be parsed count as expired so callers fall through to the
// refresh path rather than sending a request doomed to 401.
func IsExpired(raw string, skew time.Duration) bool {
	exp, err := ExpiresAt(raw)
	if err != nil {
		return true
	}
	return time.Now().Add(skew).After(exp)
}
