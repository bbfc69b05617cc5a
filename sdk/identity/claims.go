package identity

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
)

type accessTokenClaims struct {
	Subject string
	Email   string
	Role    string
	Expires time.Time
}

// parseAccessTokenClaims decodes the claims of a gateway-issued access token
// WITHOUT verifying its signature. The result is a hint only-- every decision
// that matters is made by asking the gateway or the API server directly.
func parseAccessTokenClaims(accessToken string) (accessTokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err :=
		jwt.NewParser().ParseUnverified(accessToken, claims); err != nil {
		return accessTokenClaims{}, errors.Wrap(
			err,
			"error parsing gateway access token",
		)
	}
	parsed := accessTokenClaims{}
	if sub, err := claims.GetSubject(); err == nil {
		parsed.Subject = sub
	}
	if email, ok := claims["email"].(string); ok {
		parsed.Email = email
	}
	if role, ok := claims["role"].(string); ok {
		parsed.Role = role
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		parsed.Expires = exp.Time
	}
	return parsed, nil
}
