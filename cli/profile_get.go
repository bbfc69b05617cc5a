package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

func profileGet(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New(
			"profile get requires one argument-- a user ID",
		)
	}
	id := c.Args().Get(0)

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getProfilesClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting phaseout client")
	}

	profile, err := client.Get(c.Context, id)
	if err != nil {
		return err
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("ID", "NAME", "EMAIL", "ROLE", "VERIFIED", "LOCKED")
		table.AddRow(
			profile.ID,
			profile.Name,
			profile.Email,
			profile.Role,
			profile.Verified,
			profile.Locked != nil,
		)
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(profile)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get profile operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(profile, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get profile operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
