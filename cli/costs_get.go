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

func costsGet(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New(
			"costs get requires one argument-- a country code",
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

	costs, err := client.Costs().Get(
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

	if len(costs.Items) == 0 {
		fmt.Println("No cost estimates found.")
		return nil
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow(
			"COUNTRY",
			"YEAR",
			"OPPORTUNITY (USD)",
			"DECOMMISSION (USD)",
			"WORKERS (USD)",
			"TOTAL (USD)",
		)
		for _, item := range costs.Items {
			table.AddRow(
				item.Country,
				item.Year,
				item.OpportunityCostUSD,
				item.DecommissionUSD,
				item.WorkerTransitionUSD,
				item.TotalUSD,
			)
		}
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(costs)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get costs operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(costs, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get costs operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
