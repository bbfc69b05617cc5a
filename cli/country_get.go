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

func countryGet(c *cli.Context) error {
	// Args
	if c.Args().Len() != 1 {
		return errors.New(
			"country get requires one argument-- a country code",
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

	country, err := client.Countries().Get(c.Context, code)
	if err != nil {
		return err
	}

	switch strings.ToLower(output) {
	case "table":
		table := uitable.New()
		table.AddRow(
			"CODE",
			"NAME",
			"REGION",
			"COAL CAPACITY (MW)",
			"EMISSIONS (MT CO2/YR)",
		)
		table.AddRow(
			country.Code,
			country.Name,
			country.Region,
			country.CoalCapacityMW,
			country.AnnualEmissionsMtCO2,
		)
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(country)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get country operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(country, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from get country operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
