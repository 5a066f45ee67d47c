// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package tx

import (
	"cmp"
	"slices"
	"strings"
)

// Transactions a slice of transactions.
type Transactions []*Transaction

// Copy returns a shallow copy.
func (txs Transactions) Copy() Transactions {
	return append(Transactions(nil), txs...)
}

// CompareBlockOrder orders by sender address, then nonce, then hash.
func CompareBlockOrder(a, b *Transaction) int {
	return cmp.Or(
		strings.Compare(a.body.FromAddress, b.body.FromAddress),
		cmp.Compare(a.body.Nonce, b.body.Nonce),
		a.Hash().Compare(b.Hash()),
	)
}

// CompareNonceOrder groups by nonce address with ascending nonces.
// Cross-chain packages come last, grouped by origin chain instead.
func CompareNonceOrder(a, b *Transaction) int {
	if c := cmp.Compare(a.nonceGroup(), b.nonceGroup()); c != 0 {
		return c
	}
	key := strings.Compare(a.body.NonceAddress, b.body.NonceAddress)
	if a.nonceGroup() == 1 {
		key = cmp.Compare(a.body.FromChainID, b.body.FromChainID)
	}
	return cmp.Or(
		key,
		cmp.Compare(a.body.Nonce, b.body.Nonce),
		a.Hash().Compare(b.Hash()),
	)
}

// CompareProcessingOrder orders by type priority, then block order.
func CompareProcessingOrder(a, b *Transaction) int {
	return cmp.Or(
		cmp.Compare(a.Priority(), b.Priority()),
		strings.Compare(a.body.NonceAddress, b.body.NonceAddress),
		cmp.Compare(a.body.Nonce, b.body.Nonce),
		a.Hash().Compare(b.Hash()),
	)
}

func (t *Transaction) nonceGroup() int {
	if t.body.Type == XChainTxPackage {
		return 1
	}
	return 0
}

// SortBlockOrder sorts txs in place by CompareBlockOrder.
func (txs Transactions) SortBlockOrder() { slices.SortStableFunc(txs, CompareBlockOrder) }

// SortNonceOrder sorts txs in place by CompareNonceOrder.
func (txs Transactions) SortNonceOrder() { slices.SortStableFunc(txs, CompareNonceOrder) }

// SortProcessingOrder sorts txs in place by CompareProcessingOrder.
func (txs Transactions) SortProcessingOrder() { slices.SortStableFunc(txs, CompareProcessingOrder) }
