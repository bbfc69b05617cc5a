package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func refresh(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("refresh requires no arguments")
	}

	manager, gateway, cfg, err := getSessionManager(c)
	if err != nil {
		return err
	}

	result := manager.RefreshSession(c.Context)
	if !result.Success {
		if result.Message != "" {
			return errors.New(result.Message)
		}
		return errors.New(
			"no live session was found; please use `phaseout login` to continue",
		)
	}

	// The gateway may have handed us a fresh token.
	cfg.Token = gateway.Token()
	if err := saveConfig(cfg); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	current := manager.Current()
	fmt.Printf(
		"Your session is live. You are signed in as %s (%s).\n",
		current.Name,
		current.Email,
	)

	return nil
}
