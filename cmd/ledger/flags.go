// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	genesisFlag = cli.StringFlag{
		Name:  "genesis",
		Usage: "path to a genesis file, the dev network is used if omitted",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "data-dir",
		Usage: "directory for the state database, state is kept in memory if omitted",
	}
	blockFlag = cli.StringFlag{
		Name:  "block",
		Usage: "path to a YAML file describing the block to process",
	}
	cacheFlag = cli.IntFlag{
		Name:  "cache",
		Value: 16,
		Usage: "number of finalized states kept decoded in memory",
	}
	verbosityFlag = cli.IntFlag{
		Name:  "verbosity",
		Value: 3,
		Usage: "log verbosity (0-5)",
	}
	jsonLogsFlag = cli.BoolFlag{
		Name:  "json-logs",
		Usage: "output logs in JSON format",
	}
	metricsFlag = cli.BoolFlag{
		Name:  "metrics",
		Usage: "print collected metrics in the prometheus text format on exit",
	}
	traceChangesFlag = cli.BoolFlag{
		Name:  "trace-changes",
		Usage: "log every durable state change at trace level",
	}
)
