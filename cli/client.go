package main

import (
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/greenorbit/phaseout/sdk/authx"
	"github.com/greenorbit/phaseout/sdk/core"
	"github.com/greenorbit/phaseout/sdk/identity"
	"github.com/greenorbit/phaseout/sdk/session"
)

// getSessionManager assembles a session manager from saved configuration. The
// returned config is the one the manager was built from; callers that change
// session state should persist the gateway client's token back into it.
func getSessionManager(
	c *cli.Context,
) (*session.Manager, identity.Gateway, *config, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "error retrieving configuration")
	}
	return newSessionManager(c, cfg)
}

func newSessionManager(
	c *cli.Context,
	cfg *config,
) (*session.Manager, identity.Gateway, *config, error) {
	gateway := identity.NewGateway(
		cfg.GatewayAddress,
		"phaseout-cli",
		c.Bool(flagInsecure),
	)
	if cfg.Token != nil {
		gateway.SetToken(cfg.Token)
	}
	profilesClient := authx.NewProfilesClient(
		cfg.APIAddress,
		func() string {
			if token := gateway.Token(); token != nil {
				return token.AccessToken
			}
			return ""
		},
		c.Bool(flagInsecure),
	)
	mirrorPath, err := getMirrorPath()
	if err != nil {
		return nil, nil, nil, err
	}
	mirror, err := session.OpenMirror(mirrorPath, 0)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "error opening session mirror")
	}
	manager := session.NewManager(gateway, profilesClient, mirror, nil)
	return manager, gateway, cfg, nil
}

func getAPIClient(c *cli.Context) (core.APIClient, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving configuration")
	}
	return core.NewAPIClient(
		cfg.APIAddress,
		func() string {
			if cfg.Token != nil {
				return cfg.Token.AccessToken
			}
			return ""
		},
		c.Bool(flagInsecure),
	), nil
}

func getProfilesClient(c *cli.Context) (authx.ProfilesClient, error) {
	cfg, err := getConfig()
	if err != nil {
		return nil, errors.Wrap(err, "error retrieving configuration")
	}
	return authx.NewProfilesClient(
		cfg.APIAddress,
		func() string {
			if cfg.Token != nil {
				return cfg.Token.AccessToken
			}
			return ""
		},
		c.Bool(flagInsecure),
	), nil
}
