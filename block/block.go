// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/tx"
)

// Block is a block type. Everything but the effective transactions,
// attached once the block is processed, is immutable.
type Block struct {
	header     *Header
	txs        tx.Transactions
	timeEvents []string

	mu           sync.Mutex
	effectiveTxs tx.Transactions
}

// Compose compose a block with all needed components.
// Note: This method is usually to recover a block by its portions, and the roots are not verified.
// To build up a block, use a Builder.
func Compose(header *Header, txs tx.Transactions, timeEvents []string) *Block {
	return &Block{
		header:     header,
		txs:        txs.Copy(),
		timeEvents: slices.Clone(timeEvents),
	}
}

// Header returns the block header.
func (b *Block) Header() *Header {
	return b.header
}

// Hash returns the header hash.
func (b *Block) Hash() ledger.Bytes32 {
	return b.header.Hash()
}

// Height returns the height of the state the block is applied to.
func (b *Block) Height() uint64 {
	return b.header.Height()
}

// Timestamp returns the block time.
func (b *Block) Timestamp() uint64 {
	return b.header.Timestamp()
}

// Transactions returns a copy of transactions.
func (b *Block) Transactions() tx.Transactions {
	return b.txs.Copy()
}

// TimeEvents returns the contract addresses whose time events the block runs.
func (b *Block) TimeEvents() []string {
	return slices.Clone(b.timeEvents)
}

// SetEffectiveTxs attaches the transactions synthesized while processing the block.
func (b *Block) SetEffectiveTxs(txs tx.Transactions) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.effectiveTxs = txs.Copy()
}

// EffectiveTxs returns the transactions synthesized while processing the block.
func (b *Block) EffectiveTxs() tx.Transactions {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.effectiveTxs.Copy()
}

// EncodeRLP implements rlp.Encoder.
func (b *Block) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, []any{
		b.header,
		b.txs,
		b.timeEvents,
	})
}

// Decoder to decode block from bytes.
// Since Block is immutable, it's not suitable to implement rlp.Decoder.
type Decoder struct {
	Result *Block
}

// DecodeRLP implements rlp.Decoder.
func (d *Decoder) DecodeRLP(s *rlp.Stream) error {
	payload := struct {
		Header     *Header
		Txs        tx.Transactions
		TimeEvents []string
	}{}

	if err := s.Decode(&payload); err != nil {
		return err
	}
	d.Result = &Block{
		header:     payload.Header,
		txs:        payload.Txs,
		timeEvents: payload.TimeEvents,
	}
	return nil
}

func (b *Block) String() string {
	return fmt.Sprintf(`Block(%v)
%v
Transactions: %v
TimeEvents: %v`, b.Hash().AbbrevString(), b.header, len(b.txs), b.timeEvents)
}

func txsRoot(txs tx.Transactions) ledger.Bytes32 {
	hashes := make([][]byte, len(txs))
	for i, t := range txs {
		h := t.Hash()
		hashes[i] = h[:]
	}
	return ledger.Blake2b(hashes...)
}

func timeEventsRoot(events []string) ledger.Bytes32 {
	return ledger.RLPHash(events)
}
