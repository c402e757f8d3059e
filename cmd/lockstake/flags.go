// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Value: defaultDataDir(),
		Usage: "directory for the ledger database",
	}
	memFlag = cli.BoolFlag{
		Name:  "mem",
		Usage: "keep the ledger in memory (dev mode, seeds a dev token supply)",
	}
	adminFlag = cli.StringFlag{
		Name:  "admin",
		Usage: "address holding the admin role",
	}
	apiAddrFlag = cli.StringFlag{
		Name:  "api-addr",
		Value: "localhost:8669",
		Usage: "API service listening address",
	}
	apiCorsFlag = cli.StringFlag{
		Name:  "api-cors",
		Value: "",
		Usage: "comma separated list of domains from which to accept cross origin requests to API",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-9)",
	}
	enableAPILogsFlag = cli.BoolFlag{
		Name:  "enable-api-logs",
		Usage: "enables API requests logging",
	}
	enableMetricsFlag = cli.BoolFlag{
		Name:  "enable-metrics",
		Usage: "enables metrics collection and the /metrics endpoint",
	}
	onDemandFlag = cli.BoolFlag{
		Name:  "on-demand",
		Usage: "disable the automatic cycle ticker; drive cycles via POST /stakes/tick",
	}
	workBudgetFlag = cli.Uint64Flag{
		Name:  "work-budget",
		Value: 10_000,
		Usage: "work units one engine tick may spend",
	}
)
