// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/tx"
)

// Builder to make it easy to build a block object.
type Builder struct {
	body       headerBody
	txs        tx.Transactions
	timeEvents []string
}

// ChainID set chain id.
func (b *Builder) ChainID(id uint32) *Builder {
	b.body.ChainID = id
	return b
}

// Height set the height of the state the block applies to.
func (b *Builder) Height(h uint64) *Builder {
	b.body.Height = h
	return b
}

// ParentHash set parent hash.
func (b *Builder) ParentHash(hash ledger.Bytes32) *Builder {
	b.body.ParentHash = hash
	return b
}

// Timestamp set timestamp.
func (b *Builder) Timestamp(ts uint64) *Builder {
	b.body.Timestamp = ts
	return b
}

// Transaction add a transaction.
func (b *Builder) Transaction(tx *tx.Transaction) *Builder {
	b.txs = append(b.txs, tx)
	return b
}

// TimeEvent adds a contract whose time event the block runs.
func (b *Builder) TimeEvent(contract string) *Builder {
	b.timeEvents = append(b.timeEvents, contract)
	return b
}

// Build build a block object.
func (b *Builder) Build() *Block {
	body := b.body
	body.TxsRoot = txsRoot(b.txs)
	body.TimeEventsRoot = timeEventsRoot(b.timeEvents)
	return Compose(&Header{body: body}, b.txs, b.timeEvents)
}
