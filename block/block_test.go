// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package block_test

import (
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/block"
	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/tx"
)

func TestBlock(t *testing.T) {
	tx1 := tx.NewBuilder(tx.TransferAsset).FromAddress("a").NonceAddress("a").Nonce(1).MustBuild()
	tx2 := tx.NewBuilder(tx.CreateMemo).FromAddress("b").NonceAddress("b").MustBuild()
	parent := ledger.BytesToBytes32([]byte("parent"))

	blk := new(block.Builder).
		ChainID(20).
		Height(7).
		ParentHash(parent).
		Timestamp(1700000000).
		Transaction(tx1).
		Transaction(tx2).
		TimeEvent("contract1").
		Build()

	h := blk.Header()
	assert.Equal(t, uint32(20), h.ChainID())
	assert.Equal(t, uint64(7), blk.Height())
	assert.Equal(t, parent, h.ParentHash())
	assert.Equal(t, uint64(1700000000), blk.Timestamp())
	assert.Equal(t, tx.Transactions{tx1, tx2}, blk.Transactions())
	assert.Equal(t, []string{"contract1"}, blk.TimeEvents())
	assert.Equal(t, h.Hash(), blk.Hash())

	data, err := rlp.EncodeToBytes(blk)
	require.NoError(t, err)
	var dec block.Decoder
	require.NoError(t, rlp.DecodeBytes(data, &dec))
	assert.Equal(t, blk.Hash(), dec.Result.Hash())
	assert.Equal(t, tx1.Hash(), dec.Result.Transactions()[0].Hash())
	assert.Equal(t, []string{"contract1"}, dec.Result.TimeEvents())
}

func TestBlockHashCoversContent(t *testing.T) {
	base := func() *block.Builder {
		return new(block.Builder).ChainID(1).Height(1).Timestamp(10)
	}
	t1 := tx.NewBuilder(tx.TransferAsset).FromAddress("a").NonceAddress("a").MustBuild()

	h0 := base().Build().Hash()
	assert.Equal(t, h0, base().Build().Hash())
	assert.NotEqual(t, h0, base().Transaction(t1).Build().Hash())
	assert.NotEqual(t, h0, base().TimeEvent("c").Build().Hash())
	assert.NotEqual(t, h0, base().Timestamp(11).Build().Hash())
}

func TestEffectiveTxs(t *testing.T) {
	blk := new(block.Builder).Build()
	assert.Empty(t, blk.EffectiveTxs())

	memo := tx.NewBuilder(tx.CreateMemo).MustBuild()
	effective := tx.Transactions{memo}
	blk.SetEffectiveTxs(effective)
	effective[0] = nil
	assert.Equal(t, tx.Transactions{memo}, blk.EffectiveTxs())
}
