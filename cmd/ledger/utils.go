// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"fmt"
	"io"
	"os"
	"runtime"

	"github.com/mattn/go-isatty"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/ledgerd/ledgerd/genesis"
	"github.com/ledgerd/ledgerd/log"
	"github.com/ledgerd/ledgerd/lvldb"
	"github.com/ledgerd/ledgerd/state"
)

func fatal(args ...any) {
	var w io.Writer
	if runtime.GOOS == "windows" {
		// The SameFile check below doesn't work on Windows.
		// stdout is unlikely to get redirected though, so just print there.
		w = os.Stdout
	} else {
		outf, _ := os.Stdout.Stat()
		errf, _ := os.Stderr.Stat()
		if outf != nil && errf != nil && os.SameFile(outf, errf) {
			w = os.Stderr
		} else {
			w = io.MultiWriter(os.Stdout, os.Stderr)
		}
	}
	fmt.Fprint(w, "Fatal: ")
	fmt.Fprintln(w, args...)
	os.Exit(1)
}

func fatalf(format string, args ...any) {
	fatal(fmt.Sprintf(format, args...))
}

func initLogger(ctx *cli.Context) {
	level := log.FromVerbosity(ctx.Int(verbosityFlag.Name))
	if ctx.Bool(jsonLogsFlag.Name) {
		log.SetDefault(log.JSONHandler(os.Stderr, level))
		return
	}
	useColor := (isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())) && os.Getenv("TERM") != "dumb"
	log.SetDefault(log.TerminalHandler(os.Stderr, level, useColor))
}

func selectGenesis(ctx *cli.Context) *genesis.Genesis {
	path := ctx.String(genesisFlag.Name)
	if path == "" {
		return genesis.NewDevnet()
	}
	gene, err := genesis.LoadFile(path)
	if err != nil {
		fatalf("load genesis file '%v': %v", path, err)
	}
	return gene
}

func openStateDB(ctx *cli.Context) *lvldb.LevelDB {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		db, err := lvldb.NewMem()
		if err != nil {
			fatalf("open memory database: %v", err)
		}
		return db
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		fatalf("create data dir at '%v': %v", dir, err)
	}
	db, err := lvldb.New(dir, lvldb.Options{CacheSize: 16, OpenFilesCacheCapacity: 64})
	if err != nil {
		fatalf("open state database at '%v': %v", dir, err)
	}
	return db
}

// initHead loads the head state of db, building and saving the genesis state
// into an empty database first.
func initHead(ctx *cli.Context, gene *genesis.Genesis, db *lvldb.LevelDB) (*state.Stater, *state.State) {
	stater, err := state.NewStater(db, ctx.Int(cacheFlag.Name))
	if err != nil {
		fatal(err)
	}

	hash, err := stater.Head()
	if err != nil {
		if !stater.IsNotFound(err) {
			fatal("read head:", err)
		}
		st, blk, err := gene.Build()
		if err != nil {
			fatal("build genesis:", err)
		}
		if err := stater.Save(st); err != nil {
			fatal("save genesis state:", err)
		}
		logger.Info("initialized genesis state", "chain", st.ChainID(), "block", blk.Hash().AbbrevString(), "state", st.Hash().AbbrevString())
		return stater, st
	}

	st, err := stater.Load(hash)
	if err != nil {
		fatal("load head:", err)
	}
	if st.ChainID() != gene.ChainID {
		fatalf("database holds chain %d, genesis describes chain %d", st.ChainID(), gene.ChainID)
	}
	return stater, st
}

func printHead(st *state.State) {
	fmt.Printf(`Chain:     %d
Height:    %d
Timestamp: %d
Block:     %v
State:     %v
`, st.ChainID(), st.Height(), st.Timestamp(), st.BlockHash(), st.Hash())
}
