// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

// NonceRejection is why a transaction failed the nonce check.
type NonceRejection string

const (
	NonceReplay NonceRejection = "replay"
	NonceFuture NonceRejection = "future"
)

// nonceTracker holds the expected next nonce of one address or origin chain.
// An unknown chain expects nothing: every package nonce is in its future.
type nonceTracker struct {
	expected uint64
	unknown  bool
}

// check compares nonce with the expected one, advancing it on a match.
func (n *nonceTracker) check(nonce uint64) (NonceRejection, bool) {
	switch {
	case n.unknown:
		return NonceFuture, false
	case nonce < n.expected:
		return NonceReplay, false
	case nonce > n.expected:
		return NonceFuture, false
	}
	n.expected++
	return "", true
}

// checkNonces returns the transactions whose nonces are in sequence.
// In validate mode any out of sequence nonce fails the whole batch.
func checkNonces(snap *state.Snapshot, txs tx.Transactions, validateMode bool) (tx.Transactions, bool) {
	ordered := txs.Copy()
	ordered.SortNonceOrder()

	var (
		accepted  = make(tx.Transactions, 0, len(ordered))
		addresses = make(map[string]*nonceTracker)
		chains    = make(map[uint32]*nonceTracker)
	)
	for _, t := range ordered {
		var tracker *nonceTracker
		if t.Type() == tx.XChainTxPackage {
			tracker = chains[t.FromChainID()]
			if tracker == nil {
				tracker = &nonceTracker{unknown: true}
				if d, ok := snap.XChain(t.FromChainID()); ok {
					tracker = &nonceTracker{expected: d.BlockHeight + 1}
				}
				chains[t.FromChainID()] = tracker
			}
		} else {
			tracker = addresses[t.NonceAddress()]
			if tracker == nil {
				tracker = &nonceTracker{}
				if e, ok := snap.Balances().Find(t.NonceAddress()); ok && !e.NonceUnset {
					tracker.expected = e.Nonce
				}
				addresses[t.NonceAddress()] = tracker
			}
		}

		expected := tracker.expected
		if reason, ok := tracker.check(t.Nonce()); !ok {
			metricNonceRejections().AddWithLabel(1, map[string]string{"reason": string(reason), "mode": modeLabel(validateMode)})
			if validateMode {
				logger.Error("Failed to process transaction", "reason", reason, "tx", t.Hash(), "nonce", t.Nonce(), "expected", expected)
				return nil, false
			}
			logger.Debug("dropping transaction", "reason", reason, "tx", t.Hash(), "nonce", t.Nonce(), "expected", expected)
			continue
		}
		accepted = append(accepted, t)
	}
	return accepted, true
}
