package main

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func profileLock(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New(
			"profile lock requires one argument-- a user ID",
		)
	}
	id := c.Args().Get(0)

	client, err := getProfilesClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting phaseout client")
	}

	if err := client.Lock(c.Context, id); err != nil {
		return err
	}

	fmt.Printf("Profile %q locked.\n", id)

	return nil
}
