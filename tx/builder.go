// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/ledgerd/ledgerd/ledger"
)

// Builder to make it easy to build transaction.
type Builder struct {
	body body
	good bool
	err  error
}

// NewBuilder creates a builder for a transaction of type t.
func NewBuilder(t Type) *Builder {
	return &Builder{body: body{Type: t}}
}

// ChainID set chain id.
func (b *Builder) ChainID(id uint32) *Builder {
	b.body.ChainID = id
	return b
}

// From sets the sender public key. Sender and nonce address are derived from it.
func (b *Builder) From(pub []byte) *Builder {
	addr := ledger.PublicKeyToAddress(pub)
	b.body.FromPublicKey = append([]byte(nil), pub...)
	b.body.FromAddress = addr
	b.body.NonceAddress = addr
	return b
}

// FromAddress overrides the sender address.
func (b *Builder) FromAddress(addr string) *Builder {
	b.body.FromAddress = addr
	return b
}

// NonceAddress overrides the nonce address.
func (b *Builder) NonceAddress(addr string) *Builder {
	b.body.NonceAddress = addr
	return b
}

// Nonce set nonce.
func (b *Builder) Nonce(nonce uint64) *Builder {
	b.body.Nonce = nonce
	return b
}

// PoaAddress sets the granting address of a delegated-authority transaction.
func (b *Builder) PoaAddress(addr string) *Builder {
	b.body.PoaAddress = addr
	return b
}

// FromChainID sets the origin chain of a cross-chain package.
func (b *Builder) FromChainID(id uint32) *Builder {
	b.body.FromChainID = id
	return b
}

// Timestamp sets creation time in unix seconds.
func (b *Builder) Timestamp(ts uint64) *Builder {
	b.body.Timestamp = ts
	return b
}

// Payload rlp encodes v as the payload.
func (b *Builder) Payload(v any) *Builder {
	data, err := rlp.EncodeToBytes(v)
	if err != nil {
		b.err = err
		return b
	}
	b.body.Payload = data
	return b
}

// Good presets the good marker.
func (b *Builder) Good(v bool) *Builder {
	b.good = v
	return b
}

// Build build tx object.
func (b *Builder) Build() (*Transaction, error) {
	if b.err != nil {
		return nil, b.err
	}
	t := &Transaction{body: b.body}
	t.body.Payload = append([]byte(nil), b.body.Payload...)
	t.good.Store(b.good)
	return t, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Transaction {
	t, err := b.Build()
	if err != nil {
		panic(err)
	}
	return t
}
