package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func logout(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("logout requires no arguments")
	}

	manager, gateway, cfg, err := getSessionManager(c)
	if err != nil {
		return err
	}

	result := manager.Logout(c.Context)

	// Local state is cleared even when the gateway couldn't be reached, so the
	// saved token goes away regardless.
	cfg.Token = gateway.Token()
	if err := saveConfig(cfg); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	if result.Message != "" {
		fmt.Println(result.Message)
	} else {
		fmt.Println("Logout was successful.")
	}

	return nil
}
