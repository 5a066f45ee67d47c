// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package processor applies batches of transactions to state snapshots.
package processor

import (
	"time"

	"github.com/ledgerd/ledgerd/log"
	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

var logger = log.WithContext("pkg", "processor")

// Processor applies transactions through a runtime.
//
// In apply mode it records on every transaction whether it applied. In validate
// mode it re-derives that verdict and fails the batch on any disagreement with
// the recorded one.
type Processor struct {
	rt *runtime.Runtime
}

// New creates a processor dispatching through rt.
func New(rt *runtime.Runtime) *Processor {
	return &Processor{rt: rt}
}

// TxResult is the outcome of one processed transaction.
type TxResult struct {
	Tx     *tx.Transaction
	Result runtime.Result
}

// ProcessTransactions applies txs to snap. It returns false when the batch must be abandoned.
func (p *Processor) ProcessTransactions(snap *state.Snapshot, txs tx.Transactions, updateTime uint64, validateMode bool) bool {
	ok, _ := p.ProcessTransactionsWithResults(snap, txs, updateTime, validateMode)
	return ok
}

// ProcessTransactionsWithResults is ProcessTransactions also returning the result
// of every transaction processed, in processing order.
func (p *Processor) ProcessTransactionsWithResults(snap *state.Snapshot, txs tx.Transactions, updateTime uint64, validateMode bool) (bool, []TxResult) {
	start := time.Now()
	mode := modeLabel(validateMode)
	logger.Debug("processing transactions", "count", len(txs), "mode", mode)

	ordered := txs.Copy()
	ordered.SortBlockOrder()

	accepted, ok := checkNonces(snap, ordered, validateMode)
	if !ok {
		metricBatchAborts().AddWithLabel(1, map[string]string{"reason": "nonce"})
		return false, nil
	}
	accepted.SortProcessingOrder()

	results := make([]TxResult, 0, len(accepted))
	for _, t := range accepted {
		res, ok := p.processTransaction(snap, t, updateTime, validateMode)
		results = append(results, TxResult{t, res})
		if !ok {
			return false, results
		}
	}

	metricBatchSize().Observe(int64(len(accepted)))
	metricBatchDuration().Observe(time.Since(start).Milliseconds())
	return true, results
}

// processTransaction applies one transaction, returning false when the batch must abort.
func (p *Processor) processTransaction(snap *state.Snapshot, t *tx.Transaction, updateTime uint64, validateMode bool) (runtime.Result, bool) {
	var (
		res   runtime.Result
		valid bool
	)
	if t.IsFlawed() {
		logger.Warn("Rejecting flawed transaction", "address", t.NonceAddress(), "nonce", t.Nonce(), "tx", t.Hash(), "type", t.Type())
		res = runtime.Failed("Flawed transaction %s:%d/%s of type %s", t.NonceAddress(), t.Nonce(), t.Hash(), t.Type())
	} else {
		child := snap.CreateSnapshot()
		res = p.dispatch(child, t, updateTime)
		valid = res.OK()
		if valid {
			if msg := child.CommitIfNotCorrupt(); msg != "" {
				valid = false
				res = runtime.Failed("%s", msg)
			}
		} else if child.IsCorrupted() {
			snap.SetCorrupted("%s", child.CorruptedMessage())
		} else {
			keepSender(snap, child, t)
		}
	}

	if validateMode {
		if t.IsGood() != valid {
			metricBatchAborts().AddWithLabel(1, map[string]string{"reason": "disagreement"})
			if valid {
				logger.Error("Transaction marked as invalid, but has been determined to be good", "tx", t.Hash(), "nonce", t.Nonce())
				return runtime.Failed("Transaction marked as invalid, but has been determined to be good"), false
			}
			logger.Error("Transaction marked as valid, but has been determined to be bad", "tx", t.Hash(), "nonce", t.Nonce(), "result", res)
			return runtime.Failed("Transaction marked as valid, but has been determined to be bad"), false
		}
	} else {
		t.SetGood(valid)
	}

	result := "good"
	if !valid {
		result = "bad"
	}
	metricTxCounter().AddWithLabel(1, map[string]string{"mode": modeLabel(validateMode), "result": result})
	logger.Trace("transaction processed", "tx", t.Hash(), "nonce", t.Nonce(), "result", result)

	if !t.IsFlawed() {
		if t.Type() == tx.XChainTxPackage {
			advanceXChainHeight(snap, t)
		} else {
			updateNonce(snap, t, updateTime)
		}
	}

	if snap.IsCorrupted() {
		metricBatchAborts().AddWithLabel(1, map[string]string{"reason": "corrupted"})
		logger.Error("state corrupted", "tx", t.Hash(), "reason", snap.CorruptedMessage())
		return res, false
	}
	return res, true
}

// dispatch runs the handler of t, turning a handler panic into a failure.
// A dispatch miss is not recoverable and keeps panicking.
func (p *Processor) dispatch(child *state.Snapshot, t *tx.Transaction, updateTime uint64) (res runtime.Result) {
	defer func() {
		if r := recover(); r != nil {
			if runtime.IsNotImplemented(r) {
				panic(r)
			}
			logger.Error("Internal error processing transaction",
				"address", t.NonceAddress(), "nonce", t.Nonce(), "tx", t.Hash(), "type", t.Type(), "panic", r)
			res = runtime.Failed("%v", r)
		}
	}()
	return p.rt.Execute(t, child, updateTime, t.Priority())
}

// keepSender carries over the sender entry the standard checks created in a
// discarded child, so a failed transaction still consumes its nonce.
func keepSender(snap, child *state.Snapshot, t *tx.Transaction) {
	if t.Type() == tx.XChainTxPackage {
		return
	}
	addr := t.NonceAddress()
	if snap.Balances().ItemExists(addr) || !child.Balances().ItemExists(addr) {
		return
	}
	snap.Balances().Add(state.NewAddressEntry(addr))
}

// updateNonce consumes the nonce of t, whatever the outcome of its handler.
func updateNonce(snap *state.Snapshot, t *tx.Transaction, updateTime uint64) {
	e, ok := snap.Balances().FindAndMarkUpdated(t.NonceAddress())
	if !ok {
		return
	}
	next := t.Nonce() + 1
	e.SetNonce(next)
	switch prio := t.Priority(); {
	case prio < 0:
		e.HighPriorityNonce = max(e.HighPriorityNonce, next)
	case prio > 0:
		e.LowPriorityNonce = max(e.LowPriorityNonce, next)
	}
	e.UpdateTime = updateTime
}

// advanceXChainHeight records the package nonce as the origin chain height.
func advanceXChainHeight(snap *state.Snapshot, t *tx.Transaction) {
	d, ok := snap.XChain(t.FromChainID())
	if !ok || t.Nonce() != d.BlockHeight+1 {
		return
	}
	d = d.Copy()
	d.BlockHeight = t.Nonce()
	snap.SetXChain(d)
}

// CheckValidatedTransactionForPool reports whether t may enter the pool: its
// nonce must not be below the stored nonce of its address.
func (p *Processor) CheckValidatedTransactionForPool(t *tx.Transaction, st *state.State) bool {
	balances := st.Balances()
	if balances == nil {
		return true
	}
	e, ok := balances.Find(t.NonceAddress())
	if !ok {
		return true
	}
	return t.Nonce() >= e.Nonce
}
