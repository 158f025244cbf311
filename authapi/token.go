package authapi

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryFromToken extracts the exp claim from a JWT access token without
// verifying its signature. Used as a fallback when the exchange response
// omits expires_in; the client never needs authenticity here, only the
// deadline the server encoded. Returns false for opaque or claimless
// tokens.
func ExpiryFromToken(token string) (time.Time, bool) {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
