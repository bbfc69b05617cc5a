package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/greenorbit/phaseout/sdk/meta"
)

func profileList(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("profile list requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getProfilesClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting phaseout client")
	}

	profiles, err := client.List(c.Context, meta.ListOptions{})
	if err != nil {
		return err
	}

	if len(profiles.Items) == 0 {
		fmt.Println("No profiles found.")
		return nil
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("ID", "NAME", "EMAIL", "ROLE", "VERIFIED", "LOCKED")
		for _, profile := range profiles.Items {
			table.AddRow(
				profile.ID,
				profile.Name,
				profile.Email,
				profile.Role,
				profile.Verified,
				profile.Locked != nil,
			)
		}
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(profiles)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from list profiles operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(profiles, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from list profiles operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
