package main

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/greenorbit/phaseout/sdk/session"
)

func login(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("login requires no arguments")
	}

	// Command-specific flags
	email := c.String(flagEmail)
	password := c.String(flagPassword)
	returnTo := c.String(flagReturnTo)

	cfg := &config{
		GatewayAddress: c.String(flagServer),
		APIAddress:     c.String(flagAPI),
	}

	manager, gateway, _, err := newSessionManager(c, cfg)
	if err != nil {
		return err
	}

	for email == "" {
		prompt := &survey.Input{
			Message: "Email",
		}
		if err := survey.AskOne(prompt, &email); err != nil {
			return err
		}
	}
	for password == "" {
		prompt := &survey.Password{
			Message: "Password",
		}
		if err := survey.AskOne(prompt, &password); err != nil {
			return err
		}
	}

	result := manager.Login(
		c.Context,
		email,
		password,
		&session.LoginOptions{
			ReturnTo: returnTo,
		},
	)
	if !result.Success {
		return errors.New(result.Message)
	}

	cfg.Token = gateway.Token()
	if err := saveConfig(cfg); err != nil {
		return errors.Wrap(err, "error persisting configuration")
	}

	current := manager.Current()
	fmt.Printf(
		"Login was successful. You are signed in as %s (%s).\n",
		current.Name,
		current.Email,
	)
	if result.RedirectTo != "" {
		fmt.Printf("Continue to %s.\n", result.RedirectTo)
	}

	return nil
}
