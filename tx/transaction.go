// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"fmt"
	"io"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ledgerd/ledgerd/ledger"
)

// Transaction is a transaction with an immutable body and two mutable markers:
// flawed, set when the transaction failed structural checks upstream, and good,
// the proposer's claim (or the computed verdict) about whether it applies.
type Transaction struct {
	body body

	flawed atomic.Bool
	good   atomic.Bool

	cache struct {
		hash atomic.Pointer[ledger.Bytes32]
	}
}

// body describes details of a tx.
type body struct {
	ChainID       uint32
	Type          Type
	NonceAddress  string
	Nonce         uint64
	FromAddress   string
	FromPublicKey []byte
	PoaAddress    string
	FromChainID   uint32 // origin chain of a cross-chain package
	Timestamp     uint64 // unix seconds, 0 means unset
	Payload       []byte // type specific, rlp encoded
}

// Hash returns hash of tx.
func (t *Transaction) Hash() ledger.Bytes32 {
	if cached := t.cache.hash.Load(); cached != nil {
		return *cached
	}
	h := ledger.RLPHash(&t.body)
	t.cache.hash.Store(&h)
	return h
}

// ChainID returns the id of the chain the transaction targets.
func (t *Transaction) ChainID() uint32 { return t.body.ChainID }

// Type returns the transaction type.
func (t *Transaction) Type() Type { return t.body.Type }

// Priority returns the processing priority, derived from the type.
func (t *Transaction) Priority() int { return t.body.Type.Priority() }

// NonceAddress returns the address whose nonce sequence the transaction consumes.
func (t *Transaction) NonceAddress() string { return t.body.NonceAddress }

// Nonce returns the nonce. For cross-chain packages it is the origin chain block height.
func (t *Transaction) Nonce() uint64 { return t.body.Nonce }

// FromAddress returns the sender address.
func (t *Transaction) FromAddress() string { return t.body.FromAddress }

// FromPublicKey returns the sender public key.
func (t *Transaction) FromPublicKey() []byte { return t.body.FromPublicKey }

// PoaAddress returns the address granting authority to a delegated-authority transaction.
func (t *Transaction) PoaAddress() string { return t.body.PoaAddress }

// FromChainID returns the origin chain of a cross-chain package.
func (t *Transaction) FromChainID() uint32 { return t.body.FromChainID }

// Timestamp returns the creation time in unix seconds, 0 if unset.
func (t *Transaction) Timestamp() uint64 { return t.body.Timestamp }

// Payload returns the type specific payload.
func (t *Transaction) Payload() []byte { return t.body.Payload }

// IsPoA reports whether the transaction acts on delegated authority.
func (t *Transaction) IsPoA() bool { return t.body.Type.IsPoA() }

// IsFlawed reports whether the transaction was marked as structurally bad.
func (t *Transaction) IsFlawed() bool { return t.flawed.Load() }

// SetFlawed marks the transaction as structurally bad.
func (t *Transaction) SetFlawed(v bool) { t.flawed.Store(v) }

// IsGood returns the recorded verdict.
func (t *Transaction) IsGood() bool { return t.good.Load() }

// SetGood records the verdict.
func (t *Transaction) SetGood(v bool) { t.good.Store(v) }

// DecodePayload decodes the payload into v.
func (t *Transaction) DecodePayload(v any) error {
	return rlp.DecodeBytes(t.body.Payload, v)
}

func (t *Transaction) String() string {
	return fmt.Sprintf("Tx(%v %v %s#%d)", t.Hash().AbbrevString(), t.body.Type, t.body.NonceAddress, t.body.Nonce)
}

// EncodeRLP implements rlp.Encoder. The markers are not encoded.
func (t *Transaction) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &t.body)
}

// DecodeRLP implements rlp.Decoder
func (t *Transaction) DecodeRLP(s *rlp.Stream) error {
	var b body
	if err := s.Decode(&b); err != nil {
		return err
	}
	t.body = b
	t.cache.hash.Store(nil)
	return nil
}
