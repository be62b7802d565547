package main

import (
	"gopkg.in/urfave/cli.v1"
)

var (
	tenantFlag = cli.StringFlag{
		Name:  "tenant",
		Usage: "Tenant id whose election is addressed",
	}
	logLevelFlag = cli.StringFlag{
		Name:   "log.level",
		Usage:  "Log level (panic|fatal|error|warn|info|debug|trace)",
		Value:  "warn",
		EnvVar: "LOG_LEVEL",
	}
	rpcFlag = cli.StringFlag{
		Name:   "ledger.rpc",
		Usage:  "Ledger JSON-RPC endpoint, overrides LEDGER_RPC_URL",
		EnvVar: "LEDGER_RPC_URL",
	}
	timeoutFlag = cli.DurationFlag{
		Name:  "ledger.timeout",
		Usage: "Per-call ledger timeout, overrides LEDGER_TIMEOUT",
	}
	candidateFlag = cli.Int64Flag{
		Name:  "candidate",
		Usage: "Candidate id",
		Value: -1,
	}
	pseudonymFlag = cli.StringFlag{
		Name:  "pseudonym",
		Usage: "0x-prefixed voter pseudonym",
	}
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		tenantFlag,
		logLevelFlag,
		rpcFlag,
		timeoutFlag,
	}
}
