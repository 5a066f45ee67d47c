// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"github.com/pkg/errors"

	"github.com/ledgerd/ledgerd/block"
	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/state"
)

// Builder helper to build the genesis block and state.
type Builder struct {
	chainID    uint32
	timestamp  uint64
	stateProcs []func(snap *state.Snapshot) error
}

// ChainID set chain id.
func (b *Builder) ChainID(id uint32) *Builder {
	b.chainID = id
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(t uint64) *Builder {
	b.timestamp = t
	return b
}

// State add a state process
func (b *Builder) State(proc func(snap *state.Snapshot) error) *Builder {
	b.stateProcs = append(b.stateProcs, proc)
	return b
}

// Build runs the state processes on an empty state and finalizes it as block 0.
func (b *Builder) Build() (*state.State, *block.Block, error) {
	st := state.New(b.chainID, ledger.StateVersion)
	snap := state.NewSnapshot(st)
	for _, proc := range b.stateProcs {
		if err := proc(snap); err != nil {
			return nil, nil, errors.Wrap(err, "state process")
		}
	}

	blk := new(block.Builder).
		ChainID(b.chainID).
		Height(0).
		Timestamp(b.timestamp).
		Build()
	if err := snap.FinalizeBlock(blk); err != nil {
		return nil, nil, errors.Wrap(err, "finalize")
	}
	return st, blk, nil
}
