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

func whoami(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("whoami requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	manager, _, _, err := getSessionManager(c)
	if err != nil {
		return err
	}

	result := manager.Initialize(c.Context)
	if !result.Success {
		if result.Message != "" {
			return errors.New(result.Message)
		}
		return errors.New(
			"you are not signed in; please use `phaseout login` to continue",
		)
	}
	current := manager.Current()

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow("ID", "NAME", "EMAIL", "ROLE")
		table.AddRow(
			current.UserID,
			current.Name,
			current.Email,
			current.Role,
		)
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(current)
		if err != nil {
			return errors.Wrap(err, "error formatting output from whoami operation")
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(current, "", "  ")
		if err != nil {
			return errors.Wrap(err, "error formatting output from whoami operation")
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
