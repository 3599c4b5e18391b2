// authenticationhandler/jwt_claims.go
package authenticationhandler

import (
	"github.com/golang-jwt/jwt/v5"
)

// tokenExpiry extracts the exp claim from a JWT access token without
// verifying the signature. The appliance's token format is not contractually
// guaranteed, so any malformed input degrades to 0 ("unknown expiry"), which
// disables the freshness fast path for that token instead of failing token
// management.
func tokenExpiry(accessToken string) int64 {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return 0
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return 0
	}
	return exp.Unix()
}
