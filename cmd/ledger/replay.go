// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"os"

	"github.com/pkg/errors"
	cli "gopkg.in/urfave/cli.v1"
	"gopkg.in/yaml.v3"

	"github.com/ledgerd/ledgerd/block"
	"github.com/ledgerd/ledgerd/builtin"
	"github.com/ledgerd/ledgerd/metrics"
	"github.com/ledgerd/ledgerd/overlay"
	"github.com/ledgerd/ledgerd/processor"
	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

func replayAction(ctx *cli.Context) error {
	initLogger(ctx)
	if ctx.Bool(metricsFlag.Name) {
		metrics.InitializePrometheusMetrics()
	}

	path := ctx.String(blockFlag.Name)
	if path == "" {
		fatalf("missing -%s", blockFlag.Name)
	}
	bf, err := loadBlockFile(path)
	if err != nil {
		fatal(err)
	}

	gene := selectGenesis(ctx)
	db := openStateDB(ctx)
	defer db.Close()
	stater, head := initHead(ctx, gene, db)

	txs, err := bf.transactions(head.ChainID())
	if err != nil {
		fatal(err)
	}

	var listeners []overlay.ChangeListener
	if ctx.Bool(traceChangesFlag.Name) {
		listeners = append(listeners, overlay.ListenerFunc(func(category string, kind overlay.ChangeKind, key string, version int, height uint64) {
			logger.Trace("state change", "category", category, "kind", kind, "key", key, "version", version, "height", height)
		}))
	}

	proc := newProcessor()
	applied, err := replayBlock(proc, head, bf.Timestamp, bf.TimeEvents, txs, false, listeners...)
	if err != nil {
		fatal("apply:", err)
	}

	// a fresh processor over the same head must reach the same state from the recorded verdicts
	validated, err := replayBlock(newProcessor(), head, bf.Timestamp, applied.block.TimeEvents(), applied.block.Transactions(), true)
	if err != nil {
		fatal("validate:", err)
	}
	if validated.state.Hash() != applied.state.Hash() {
		fatalf("validated state %v differs from applied state %v", validated.state.Hash(), applied.state.Hash())
	}

	if err := stater.Save(applied.state); err != nil {
		fatal("save state:", err)
	}
	logger.Info("block replayed",
		"height", applied.state.Height(),
		"block", applied.block.Hash().AbbrevString(),
		"state", applied.state.Hash().AbbrevString(),
		"txs", len(applied.block.Transactions()),
		"dropped", len(txs)-len(applied.block.Transactions()),
	)

	if err := printReport(applied); err != nil {
		return err
	}
	if ctx.Bool(metricsFlag.Name) {
		return metrics.WriteText(os.Stdout)
	}
	return nil
}

func newProcessor() *processor.Processor {
	reg := runtime.NewRegistry()
	builtin.Register(reg, nil)
	return processor.New(runtime.New(reg, nil))
}

type replayed struct {
	state   *state.State
	block   *block.Block
	results []processor.TxResult
}

// replayBlock processes one block on top of head. A nil timeEvents declares
// the time events due at timestamp.
func replayBlock(
	proc *processor.Processor,
	head *state.State,
	timestamp uint64,
	timeEvents []string,
	txs tx.Transactions,
	validateMode bool,
	listeners ...overlay.ChangeListener,
) (*replayed, error) {
	next := head.Next()
	snap := state.NewSnapshot(next, listeners...)
	if timeEvents == nil {
		timeEvents = proc.DueTimeEvents(snap, timestamp)
	}

	ok, results := proc.ProcessTransactionsWithResults(snap, txs, timestamp, validateMode)
	if !ok {
		return nil, errors.New("transactions rejected")
	}

	// transactions dropped for their nonce are left out of the block
	processed := make(map[*tx.Transaction]bool, len(results))
	for _, r := range results {
		processed[r.Tx] = true
	}
	builder := new(block.Builder).
		ChainID(head.ChainID()).
		Height(head.Height()).
		ParentHash(head.BlockHash()).
		Timestamp(timestamp)
	for _, t := range txs {
		if processed[t] {
			builder.Transaction(t)
		}
	}
	for _, ev := range timeEvents {
		builder.TimeEvent(ev)
	}
	blk := builder.Build()

	if !proc.PostProcessTransactions(snap, blk, timestamp) {
		return nil, errors.New("post processing failed")
	}
	proc.RemoveProcessedTimeEvents(snap, blk, timestamp)
	if err := snap.FinalizeBlock(blk); err != nil {
		return nil, errors.Wrap(err, "finalize block")
	}
	return &replayed{next, blk, results}, nil
}

type txReport struct {
	Hash    string  `yaml:"hash"`
	Type    tx.Type `yaml:"type"`
	From    string  `yaml:"from,omitempty"`
	Nonce   uint64  `yaml:"nonce"`
	Status  string  `yaml:"status"`
	Message string  `yaml:"message,omitempty"`
}

type blockReport struct {
	Height       uint64     `yaml:"height"`
	Block        string     `yaml:"block"`
	State        string     `yaml:"state"`
	TimeEvents   []string   `yaml:"timeEvents,omitempty"`
	Transactions []txReport `yaml:"transactions"`
	EffectiveTxs []string   `yaml:"effectiveTxs,omitempty"`
}

func printReport(r *replayed) error {
	report := blockReport{
		Height:     r.state.Height(),
		Block:      r.block.Hash().String(),
		State:      r.state.Hash().String(),
		TimeEvents: r.block.TimeEvents(),
	}
	for _, res := range r.results {
		report.Transactions = append(report.Transactions, txReport{
			Hash:    res.Tx.Hash().String(),
			Type:    res.Tx.Type(),
			From:    res.Tx.FromAddress(),
			Nonce:   res.Tx.Nonce(),
			Status:  res.Result.Status.String(),
			Message: res.Result.Message,
		})
	}
	for _, t := range r.block.EffectiveTxs() {
		report.EffectiveTxs = append(report.EffectiveTxs, t.Hash().String())
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(&report)
}
