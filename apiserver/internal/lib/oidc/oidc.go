package oidc

import (
	"context"

	oidc "github.com/coreos/go-oidc"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
)

// TokenVerifier is an interface for components that can verify a raw bearer
// token against the identity gateway's published signing keys.
type TokenVerifier interface {
	// Verify checks the specified raw token's signature, issuer, and expiry and
	// returns the parsed token.
	Verify(ctx context.Context, rawToken string) (*oidc.IDToken, error)
}

type config struct {
	IssuerURL string `envconfig:"GATEWAY_ISSUER_URL" required:"true"`
	ClientID  string `envconfig:"GATEWAY_CLIENT_ID"`
}

// GetTokenVerifierFromEnvironment returns a TokenVerifier backed by the
// identity gateway's OIDC discovery document, per configuration obtained from
// the environment.
func GetTokenVerifierFromEnvironment(
	ctx context.Context,
) (TokenVerifier, error) {
	c := config{}
	if err := envconfig.Process("", &c); err != nil {
		return nil, errors.Wrap(
			err,
			"error getting gateway configuration from environment",
		)
	}
	provider, err := oidc.NewProvider(ctx, c.IssuerURL)
	if err != nil {
		return nil, errors.Wrapf(
			err,
			"error initializing OIDC provider for issuer %q",
			c.IssuerURL,
		)
	}
	oidcConfig := &oidc.Config{
		ClientID: c.ClientID,
	}
	if c.ClientID == "" {
		oidcConfig.SkipClientIDCheck = true
	}
	return provider.Verifier(oidcConfig), nil
}
