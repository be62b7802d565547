package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	cli "gopkg.in/urfave/cli.v1"
)

func main() {
	app := newApp()
	if err := app.Run(os.Args); err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Name = "electionctl"
	app.Usage = "Inspect and administer tenant elections on the ledger"
	app.Version = "0.1.0"
	app.Writer = os.Stdout
	app.Flags = globalFlags()
	app.Commands = []cli.Command{
		{
			Name:   "tally",
			Usage:  "Print the total vote count, or one candidate's count with --candidate",
			Flags:  []cli.Flag{candidateFlag},
			Action: runTally,
		},
		{
			Name:   "audit",
			Usage:  "Print the audit trail and Merkle root for a candidate",
			Flags:  []cli.Flag{candidateFlag},
			Action: runAudit,
		},
		{
			Name:   "statistics",
			Usage:  "Print per-candidate counts and percentages",
			Action: runStatistics,
		},
		{
			Name:   "end",
			Usage:  "End the tenant's election",
			Action: runEnd,
		},
		{
			Name:   "has-voted",
			Usage:  "Check whether a voter pseudonym has voted",
			Flags:  []cli.Flag{pseudonymFlag},
			Action: runHasVoted,
		},
	}
	return app
}

func requireFlag(c *cli.Context, name string) error {
	if !c.IsSet(name) && !c.GlobalIsSet(name) {
		return fmt.Errorf("--%s is required", name)
	}
	return nil
}
