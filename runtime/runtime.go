// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/pkg/errors"

	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/log"
	"github.com/ledgerd/ledgerd/metrics"
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

var logger = log.WithContext("pkg", "runtime")

var (
	metricTxResults    = metrics.LazyLoadCounterVec("runtime_tx_results_count", []string{"type", "status", "mode"})
	metricEventResults = metrics.LazyLoadCounterVec("runtime_event_results_count", []string{"function", "status"})
)

// AddressVerifier validates addresses and their binding to public keys.
type AddressVerifier interface {
	IsAddress(address string) bool
	Verify(address string, pub []byte) bool
}

type ledgerVerifier struct{}

func (ledgerVerifier) IsAddress(address string) bool { return ledger.IsAddress(address) }
func (ledgerVerifier) Verify(address string, pub []byte) bool {
	return ledger.VerifyAddress(address, pub)
}

// DefaultVerifier checks addresses with the ledger address scheme.
var DefaultVerifier AddressVerifier = ledgerVerifier{}

// Runtime dispatches transactions and contract events to their handlers.
type Runtime struct {
	registry *Registry
	verifier AddressVerifier
}

// New creates a runtime over reg. A nil verifier selects DefaultVerifier.
func New(reg *Registry, verifier AddressVerifier) *Runtime {
	if verifier == nil {
		verifier = DefaultVerifier
	}
	return &Runtime{registry: reg, verifier: verifier}
}

// Registry returns the registry the runtime dispatches to.
func (rt *Runtime) Registry() *Registry { return rt.registry }

// Execute applies t to snap.
func (rt *Runtime) Execute(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, priority int) Result {
	return rt.Update(t, snap, updateTime, priority, false)
}

// CheckUpdate evaluates t against snap without intending to keep the changes.
// Failures are reported as warnings.
func (rt *Runtime) CheckUpdate(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, priority int) Result {
	return rt.Update(t, snap, updateTime, priority, true)
}

// Update runs the standard checks then the type's handler.
// A type without a handler panics with ErrNotImplemented.
func (rt *Runtime) Update(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, priority int, checkOnly bool) Result {
	res := rt.update(t, snap, updateTime, priority, checkOnly)

	mode := "apply"
	if checkOnly {
		mode = "check"
	}
	metricTxResults().AddWithLabel(1, map[string]string{"type": t.Type().String(), "status": res.Status.String(), "mode": mode})
	if !res.OK() {
		if checkOnly {
			logger.Debug("Failed Tx", "tx", t.Hash(), "type", t.Type(), "result", res)
		} else {
			logger.Warn("Failed Tx", "tx", t.Hash(), "type", t.Type(), "result", res)
		}
	}
	return res
}

func (rt *Runtime) update(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, priority int, checkOnly bool) Result {
	if priority == t.Priority() && t.ChainID() == snap.ChainID() {
		if err := rt.standardChecks(t, snap, updateTime); err != nil {
			return ResultOf(err, checkOnly)
		}
	}

	h, ok := rt.registry.Lookup(t.Type())
	if !ok {
		panic(errors.Wrapf(ErrNotImplemented, "no handler for transaction type %v", t.Type()))
	}
	return h.Update(t, snap, updateTime, priority, checkOnly)
}

// DeliverEvent hands ev to the event handler of its contract function.
func (rt *Runtime) DeliverEvent(ev state.ContractEvent, snap *state.Snapshot, updateTime uint64) Result {
	res := Failed("No event handler for contract function %q", ev.Function)
	if h, ok := rt.registry.LookupEvent(ev.Function); ok {
		res = h.OnEvent(ev, snap, updateTime)
	}
	metricEventResults().AddWithLabel(1, map[string]string{"function": ev.Function, "status": res.Status.String()})
	return res
}

func (rt *Runtime) standardChecks(t *tx.Transaction, snap *state.Snapshot, updateTime uint64) error {
	// packages carry the origin chain's timestamps and signatures
	if t.Type() == tx.XChainTxPackage {
		return nil
	}
	cfg := snap.Config()
	if ts := t.Timestamp(); ts > 0 && absDiff(ts, updateTime) > uint64(cfg.MaxTxAge) {
		return Reject("Tx Timestamp invalid.")
	}
	if !rt.verifier.Verify(t.FromAddress(), t.FromPublicKey()) {
		return Reject("`From` Address and Public key do not match.")
	}
	if t.Type() != tx.RegisterAddress {
		if err := CheckAndCreateAddresses(snap, rt.verifier, cfg.MustRegister, t.FromAddress()); err != nil {
			return err
		}
	}
	if t.IsPoA() {
		poa := t.PoaAddress()
		if !rt.verifier.IsAddress(poa) {
			return Reject("Invalid POA address %q", poa)
		}
		if !snap.Balances().ItemExists(poa) {
			return Reject("POA Address %q does not exist", poa)
		}
	}
	return nil
}

// CheckAndCreateAddresses verifies every address is well formed. A missing
// address is rejected when registration is required, otherwise created empty.
func CheckAndCreateAddresses(snap *state.Snapshot, v AddressVerifier, mustRegister bool, addresses ...string) error {
	balances := snap.Balances()
	for _, addr := range addresses {
		if !v.IsAddress(addr) {
			return Reject("Invalid address %q", addr)
		}
		if balances.ItemExists(addr) {
			continue
		}
		if mustRegister {
			return Reject("Address %q does not exist", addr)
		}
		balances.Add(state.NewAddressEntry(addr))
	}
	return nil
}

// ResultOf converts an error raised by a check into its result.
func ResultOf(err error, checkOnly bool) Result {
	var r *Rejection
	if errors.As(err, &r) {
		return r.Result(checkOnly)
	}
	if checkOnly {
		return Result{Warning, err.Error()}
	}
	return Result{Fail, err.Error()}
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
