package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/gosuri/uitable"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"github.com/greenorbit/phaseout/sdk/core"
)

func alignmentGet(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New(
			"alignment get requires one argument-- a country code",
		)
	}
	code := c.Args().Get(0)

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getAPIClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting phaseout client")
	}

	alignment, err := client.Alignment().Get(
		c.Context,
		code,
		&core.YearRangeOptions{
			From: c.Int(flagFrom),
			To:   c.Int(flagTo),
		},
	)
	if err != nil {
		return err
	}

	if len(alignment.Items) == 0 {
		fmt.Println("No alignment data found.")
		return nil
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow(
			"COUNTRY",
			"YEAR",
			"SCENARIO",
			"CAPACITY (MW)",
			"COMPATIBLE (MW)",
		)
		for _, item := range alignment.Items {
			table.AddRow(
				item.Country,
				item.Year,
				item.Scenario,
				item.CapacityMW,
				item.CompatibleCapacityMW,
			)
		}
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(alignment)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get alignment operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(alignment, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get alignment operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
