package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/greenorbit/phaseout/internal/version"
)

func main() {
	app := cli.NewApp()
	app.Name = "phaseout"
	app.Usage = "Explore the costs and benefits of phasing out coal power"
	app.Version = version.Version()
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:    flagInsecure,
			Aliases: []string{"k"},
			Usage:   "Allow insecure connections when using TLS",
		},
	}
	app.Commands = []*cli.Command{
		{
			Name:  "alignment",
			Usage: "Explore temperature-target alignment data",
			Subcommands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Get a country's alignment data",
					ArgsUsage: "COUNTRY_CODE",
					Flags: []cli.Flag{
						cliFlagOutput,
						cliFlagFrom,
						cliFlagTo,
					},
					Action: alignmentGet,
				},
			},
		},
		{
			Name:  "benefits",
			Usage: "Explore phase-out benefit estimates",
			Subcommands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Get a country's benefit estimates",
					ArgsUsage: "COUNTRY_CODE",
					Flags: []cli.Flag{
						cliFlagOutput,
						cliFlagFrom,
						cliFlagTo,
					},
					Action: benefitsGet,
				},
			},
		},
		{
			Name:  "costs",
			Usage: "Explore phase-out cost estimates",
			Subcommands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Get a country's cost estimates",
					ArgsUsage: "COUNTRY_CODE",
					Flags: []cli.Flag{
						cliFlagOutput,
						cliFlagFrom,
						cliFlagTo,
					},
					Action: costsGet,
				},
			},
		},
		{
			Name:  "country",
			Usage: "Explore country information",
			Subcommands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Get a country's record",
					ArgsUsage: "COUNTRY_CODE",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: countryGet,
				},
				{
					Name:  "list",
					Usage: "List countries",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: countryList,
				},
			},
		},
		{
			Name:  "finance",
			Usage: "Explore climate finance flows",
			Subcommands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Get a country's climate finance flows",
					ArgsUsage: "COUNTRY_CODE",
					Flags: []cli.Flag{
						cliFlagOutput,
						cliFlagFrom,
						cliFlagTo,
					},
					Action: financeGet,
				},
			},
		},
		{
			Name:  "login",
			Usage: "Sign in through the identity gateway",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    flagServer,
					Aliases: []string{"s"},
					Usage: "Sign in through the identity gateway at the specified " +
						"address (required)",
					Required: true,
				},
				&cli.StringFlag{
					Name:    flagAPI,
					Aliases: []string{"a"},
					Usage: "Use the phaseout API server at the specified address " +
						"(required)",
					Required: true,
				},
				&cli.StringFlag{
					Name:    flagEmail,
					Aliases: []string{"e"},
					Usage:   "Specify the email address to sign in with",
				},
				&cli.StringFlag{
					Name:    flagPassword,
					Aliases: []string{"p"},
					Usage:   "Specify the password non-interactively",
				},
				&cli.StringFlag{
					Name:  flagReturnTo,
					Usage: "Specify where to continue after a successful sign-in",
				},
			},
			Action: login,
		},
		{
			Name:   "logout",
			Usage:  "Sign out and clear the local session",
			Action: logout,
		},
		{
			Name:  "profile",
			Usage: "Manage user profiles",
			Subcommands: []*cli.Command{
				{
					Name:      "get",
					Usage:     "Get a user's profile",
					ArgsUsage: "USER_ID",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: profileGet,
				},
				{
					Name:  "list",
					Usage: "List user profiles",
					Flags: []cli.Flag{
						cliFlagOutput,
					},
					Action: profileList,
				},
				{
					Name:      "lock",
					Usage:     "Revoke a user's dashboard access",
					ArgsUsage: "USER_ID",
					Action:    profileLock,
				},
				{
					Name:      "unlock",
					Usage:     "Restore a user's dashboard access",
					ArgsUsage: "USER_ID",
					Action:    profileUnlock,
				},
				{
					Name:      "verify",
					Usage:     "Approve a user for access",
					ArgsUsage: "USER_ID",
					Action:    profileVerify,
				},
			},
		},
		{
			Name:   "refresh",
			Usage:  "Re-validate the current session against the gateway",
			Action: refresh,
		},
		{
			Name:  "whoami",
			Usage: "Show the signed-in user",
			Flags: []cli.Flag{
				cliFlagOutput,
			},
			Action: whoami,
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
