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

func benefitsGet(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New(
			"benefits get requires one argument-- a country code",
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

	benefits, err := client.Benefits().Get(
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

	if len(benefits.Items) == 0 {
		fmt.Println("No benefit estimates found.")
		return nil
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow(
			"COUNTRY",
			"YEAR",
			"AVOIDED EMISSIONS (MT CO2)",
			"AVOIDED DAMAGES (USD)",
			"HEALTH (USD)",
			"TOTAL (USD)",
		)
		for _, item := range benefits.Items {
			table.AddRow(
				item.Country,
				item.Year,
				item.AvoidedEmissionsMtCO2,
				item.AvoidedDamagesUSD,
				item.HealthBenefitUSD,
				item.TotalUSD,
			)
		}
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(benefits)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get benefits operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(benefits, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get benefits operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
