// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ledgerd/ledgerd/ledger"
)

// Header contains almost all information about a block, except block body.
// It's immutable.
type Header struct {
	body headerBody

	cache struct {
		hash atomic.Pointer[ledger.Bytes32]
	}
}

// headerBody body of header
type headerBody struct {
	ChainID    uint32
	Height     uint64
	ParentHash ledger.Bytes32
	Timestamp  uint64

	TxsRoot        ledger.Bytes32
	TimeEventsRoot ledger.Bytes32
}

// ChainID returns the chain the block belongs to.
func (h *Header) ChainID() uint32 {
	return h.body.ChainID
}

// Height returns the height of the state the block is applied to.
func (h *Header) Height() uint64 {
	return h.body.Height
}

// ParentHash returns hash of parent block.
func (h *Header) ParentHash() ledger.Bytes32 {
	return h.body.ParentHash
}

// Timestamp returns timestamp of this block, which is also the update time
// transactions are applied with.
func (h *Header) Timestamp() uint64 {
	return h.body.Timestamp
}

// TxsRoot returns the hash of the txs contained in this block.
func (h *Header) TxsRoot() ledger.Bytes32 {
	return h.body.TxsRoot
}

// TimeEventsRoot returns the hash of the block's time events.
func (h *Header) TimeEventsRoot() ledger.Bytes32 {
	return h.body.TimeEventsRoot
}

// Hash computes hash of header.
func (h *Header) Hash() ledger.Bytes32 {
	if cached := h.cache.hash.Load(); cached != nil {
		return *cached
	}
	hash := ledger.RLPHash(&h.body)
	h.cache.hash.Store(&hash)
	return hash
}

// EncodeRLP implements rlp.Encoder
func (h *Header) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &h.body)
}

// DecodeRLP implements rlp.Decoder.
func (h *Header) DecodeRLP(s *rlp.Stream) error {
	var body headerBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*h = Header{body: body}
	return nil
}

func (h *Header) String() string {
	return fmt.Sprintf(`Header(%v):
	ChainID:        %v
	Height:         %v
	ParentHash:     %v
	Timestamp:      %v
	TxsRoot:        %v
	TimeEventsRoot: %v`, h.Hash(), h.body.ChainID, h.body.Height, h.body.ParentHash,
		h.body.Timestamp, h.body.TxsRoot, h.body.TimeEventsRoot)
}
