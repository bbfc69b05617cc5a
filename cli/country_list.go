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

func countryList(c *cli.Context) error {
	// Args
	if c.Args().Len() != 0 {
		return errors.New("country list requires no arguments")
	}

	// Command-specific flags
	output := c.String(flagOutput)

	if err := validateOutputFormat(output); err != nil {
		return err
	}

	client, err := getAPIClient(c)
	if err != nil {
		return errors.Wrap(err, "error getting phaseout client")
	}

	countries, err := client.Countries().List(c.Context, meta.ListOptions{})
	if err != nil {
		return err
	}

	if len(countries.Items) == 0 {
		fmt.Println("No countries found.")
		return nil
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
		for _, country := range countries.Items {
			table.AddRow(
				country.Code,
				country.Name,
				country.Region,
				country.CoalCapacityMW,
				country.AnnualEmissionsMtCO2,
			)
		}
		fmt.Println(table)

	case "yaml":
		yamlBytes, err := yaml.Marshal(countries)
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from list countries operation",
			)
		}
		fmt.Println(string(yamlBytes))

	case "json":
		prettyJSON, err := json.MarshalIndent(countries, "", "  ")
		if err != nil {
			return errors.Wrap(
				err,
				"error formatting output from list countries operation",
			)
		}
		fmt.Println(string(prettyJSON))
	}

	return nil
}
