package main

import "github.com/urfave/cli/v2"

const (
	flagAPI      = "api"
	flagEmail    = "email"
	flagFrom     = "from"
	flagInsecure = "insecure"
	flagOutput   = "output"
	flagPassword = "password"
	flagReturnTo = "return-to"
	flagServer   = "server"
	flagTo       = "to"
)

var (
	cliFlagOutput = &cli.StringFlag{
		Name:    flagOutput,
		Aliases: []string{"o"},
		Usage: "Return output in another format. Supported formats: table, " +
			"yaml, json",
		Value: "table",
	}

	cliFlagFrom = &cli.IntFlag{
		Name:  flagFrom,
		Usage: "Return records from the specified year onward",
	}

	cliFlagTo = &cli.IntFlag{
		Name:  flagTo,
		Usage: "Return records up to and including the specified year",
	}
)
