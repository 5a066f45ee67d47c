// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/ledger"
)

func TestTypePriority(t *testing.T) {
	tests := []struct {
		typ      Type
		priority int
		poa      bool
	}{
		{DoPrivilegedOperation, -22, false},
		{RegisterAddress, -21, false},
		{XChainTxPackage, -16, false},
		{IssueAsset, -15, false},
		{TransferAsset, 0, false},
		{PoaTransferAsset, 0, true},
		{PoaIssueAsset, -15, true},
		{DeleteAddress, 20, false},
		{Type(0x7777), 0, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.priority, tt.typ.Priority(), tt.typ.String())
		assert.Equal(t, tt.poa, tt.typ.IsPoA(), tt.typ.String())
	}
}

func TestParseType(t *testing.T) {
	typ, err := ParseType("register_address")
	assert.NoError(t, err)
	assert.Equal(t, RegisterAddress, typ)

	_, err = ParseType("nope")
	assert.Error(t, err)

	var u Type
	assert.NoError(t, u.UnmarshalText([]byte("X_CHAIN_TX_PACKAGE")))
	assert.Equal(t, XChainTxPackage, u)
	assert.Equal(t, "UNKNOWN(0x7777)", Type(0x7777).String())
}

type transferPayload struct {
	To     string
	Amount uint64
}

func TestBuilderAndHash(t *testing.T) {
	pub := []byte("alice")
	trx := NewBuilder(TransferAsset).
		ChainID(20).
		From(pub).
		Nonce(3).
		Timestamp(1000).
		Payload(&transferPayload{To: "bob", Amount: 5}).
		Good(true).
		MustBuild()

	assert.Equal(t, ledger.PublicKeyToAddress(pub), trx.FromAddress())
	assert.Equal(t, trx.FromAddress(), trx.NonceAddress())
	assert.Equal(t, uint32(20), trx.ChainID())
	assert.True(t, trx.IsGood())
	assert.False(t, trx.IsFlawed())

	var p transferPayload
	require.NoError(t, trx.DecodePayload(&p))
	assert.Equal(t, transferPayload{"bob", 5}, p)

	// markers are not part of the hash
	h := trx.Hash()
	trx.SetGood(false)
	trx.SetFlawed(true)
	assert.Equal(t, h, trx.Hash())

	data, err := rlp.EncodeToBytes(trx)
	require.NoError(t, err)
	var decoded Transaction
	require.NoError(t, rlp.DecodeBytes(data, &decoded))
	assert.Equal(t, h, decoded.Hash())

	other := NewBuilder(TransferAsset).ChainID(20).From(pub).Nonce(4).MustBuild()
	assert.NotEqual(t, h, other.Hash())
}

func TestSortOrders(t *testing.T) {
	a, b := []byte("a-key"), []byte("b-key")
	aAddr, bAddr := ledger.PublicKeyToAddress(a), ledger.PublicKeyToAddress(b)
	if aAddr > bAddr {
		a, b = b, a
		aAddr, bAddr = bAddr, aAddr
	}

	a1 := NewBuilder(TransferAsset).From(a).Nonce(1).MustBuild()
	a0 := NewBuilder(TransferAsset).From(a).Nonce(0).MustBuild()
	b0 := NewBuilder(RegisterAddress).From(b).Nonce(0).MustBuild()
	x7 := NewBuilder(XChainTxPackage).FromChainID(7).NonceAddress("").Nonce(3).MustBuild()
	x2 := NewBuilder(XChainTxPackage).FromChainID(2).NonceAddress("").Nonce(9).MustBuild()

	txs := Transactions{x7, a1, b0, x2, a0}
	txs.SortNonceOrder()
	assert.Equal(t, Transactions{a0, a1, b0, x2, x7}, txs)

	txs.SortProcessingOrder()
	// register address (-21) before packages (-16) before transfers (0)
	assert.Equal(t, Transactions{b0, x7, x2, a0, a1}, txs)

	txs = Transactions{a1, b0, a0}
	txs.SortBlockOrder()
	assert.Equal(t, Transactions{a0, a1, b0}, txs)
}
