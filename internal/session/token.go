package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Expired peeks at the token's exp claim without verifying the signature, so
// a stale token is dropped before the backend answers 401 to it. Opaque
// tokens (anything that doesn't parse as a JWT) are left for the server to
// judge.
func Expired(token string) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
