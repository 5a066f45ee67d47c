// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/builtin"
	"github.com/ledgerd/ledgerd/genesis"
	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/tx"
)

func devBlock(t *testing.T) *blockFile {
	to := genesis.DevAccounts()[2].Address
	bf, err := decodeBlockFile(strings.NewReader(`
timestamp: 1526400100
transactions:
  - type: TRANSFER_ASSET
    from: dev1
    nonce: 0
    payload: {asset: "dev|coin", to: "` + to + `", amount: 10}
  - type: transfer_asset
    from: dev1
    nonce: 5
    payload: {asset: "dev|coin", to: "` + to + `", amount: 10}
  - type: CREATE_MEMO
    from: dev2
    payload: {text: hello}
`))
	require.NoError(t, err)
	return bf
}

func TestDecodeBlockFile(t *testing.T) {
	bf := devBlock(t)
	assert.Equal(t, uint64(1526400100), bf.Timestamp)
	require.Len(t, bf.Transactions, 3)
	assert.Equal(t, tx.TransferAsset, bf.Transactions[1].Type)

	txs, err := bf.transactions(1)
	require.NoError(t, err)
	require.Len(t, txs, 3)

	dev1 := genesis.DevAccounts()[1]
	assert.Equal(t, dev1.Address, txs[0].FromAddress())
	assert.Equal(t, dev1.Address, txs[0].NonceAddress())
	assert.Equal(t, uint64(1526400100), txs[0].Timestamp())

	var p builtin.TransferAssetPayload
	require.NoError(t, txs[0].DecodePayload(&p))
	assert.Equal(t, "dev|coin", p.Asset)
	assert.Equal(t, int64(10), p.Amount.Int64())
}

func TestDecodeBlockFileErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown field", "timestamp: 1\nheight: 2\n"},
		{"unknown type", "transactions:\n  - type: NOPE\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeBlockFile(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	build := []struct {
		name string
		tx   txFile
	}{
		{"missing type", txFile{From: "dev0"}},
		{"bad dev account", txFile{Type: tx.CreateMemo, From: "dev9"}},
		{"bad key", txFile{Type: tx.CreateMemo, From: "0xzz"}},
		{"no payload format", txFile{Type: tx.DeleteAddress, From: "dev0"}},
		{"unknown payload field", txFile{Type: tx.CreateMemo, From: "dev0", Payload: map[string]any{"subject": "x"}}},
	}
	for _, tt := range build {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.tx.build(1, 100)
			assert.Error(t, err)
		})
	}
}

func TestReplayBlock(t *testing.T) {
	head, _, err := genesis.NewDevnet().Build()
	require.NoError(t, err)

	bf := devBlock(t)
	txs, err := bf.transactions(head.ChainID())
	require.NoError(t, err)

	applied, err := replayBlock(newProcessor(), head, bf.Timestamp, nil, txs, false)
	require.NoError(t, err)
	assert.Equal(t, uint64(2), applied.state.Height())
	// the future nonce is dropped from the block
	assert.Len(t, applied.block.Transactions(), 2)
	for _, r := range applied.results {
		assert.Equal(t, runtime.Pass, r.Result.Status, r.Result.Message)
	}

	validated, err := replayBlock(newProcessor(), head, bf.Timestamp, applied.block.TimeEvents(), applied.block.Transactions(), true)
	require.NoError(t, err)
	assert.Equal(t, applied.block.Hash(), validated.block.Hash())
	assert.Equal(t, applied.state.Hash(), validated.state.Hash())

	to, ok := applied.state.Balances().Find(genesis.DevAccounts()[2].Address)
	require.True(t, ok)
	assert.Equal(t, "1000000010", to.Balance(genesis.DevAsset).String())
	assert.Equal(t, uint64(1), to.Nonce)

	// the head is untouched
	from, ok := head.Balances().Find(genesis.DevAccounts()[1].Address)
	require.True(t, ok)
	assert.Equal(t, "1000000000", from.Balance(genesis.DevAsset).String())
}

func TestReplayRejectsTamperedVerdict(t *testing.T) {
	head, _, err := genesis.NewDevnet().Build()
	require.NoError(t, err)

	bf := devBlock(t)
	txs, err := bf.transactions(head.ChainID())
	require.NoError(t, err)

	applied, err := replayBlock(newProcessor(), head, bf.Timestamp, nil, txs, false)
	require.NoError(t, err)

	accepted := applied.block.Transactions()
	accepted[0].SetGood(false)
	_, err = replayBlock(newProcessor(), head, bf.Timestamp, nil, accepted, true)
	assert.Error(t, err)
}
