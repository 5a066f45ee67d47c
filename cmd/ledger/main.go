// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"os"

	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/ledgerd/ledgerd/genesis"
	"github.com/ledgerd/ledgerd/log"
)

var (
	version   string
	gitCommit string
	gitTag    string
	logger    = log.WithContext("pkg", "ledger")
)

func fullVersion() string {
	versionMeta := "release"
	if gitTag == "" {
		versionMeta = "dev"
	}
	return fmt.Sprintf("%s-%s-%s", version, gitCommit, versionMeta)
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "ledger",
		Usage:   "Transaction execution core of a permissioned ledger",
		Flags: []cli.Flag{
			genesisFlag,
			dataDirFlag,
			cacheFlag,
			verbosityFlag,
			jsonLogsFlag,
		},
		Action: headAction,
		Commands: []cli.Command{
			{
				Name:  "replay",
				Usage: "apply a block to the head state, validate it and persist the result",
				Flags: []cli.Flag{
					genesisFlag,
					dataDirFlag,
					blockFlag,
					cacheFlag,
					verbosityFlag,
					jsonLogsFlag,
					metricsFlag,
					traceChangesFlag,
				},
				Action: replayAction,
			},
			{
				Name:   "devnet",
				Usage:  "print the dev network genesis document",
				Action: devnetAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func headAction(ctx *cli.Context) error {
	initLogger(ctx)
	gene := selectGenesis(ctx)

	db := openStateDB(ctx)
	defer db.Close()

	_, head := initHead(ctx, gene, db)
	printHead(head)
	return nil
}

func devnetAction(*cli.Context) error {
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(genesis.NewDevnet())
}
