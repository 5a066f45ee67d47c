// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

// Handler applies one kind of transaction to a snapshot.
// With checkOnly set it only evaluates whether the transaction could apply.
type Handler interface {
	Update(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, priority int, checkOnly bool) Result
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, priority int, checkOnly bool) Result

func (f HandlerFunc) Update(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, priority int, checkOnly bool) Result {
	return f(t, snap, updateTime, priority, checkOnly)
}

// Provider is an externally registered handler, consulted for the types
// missing from the static table.
type Provider interface {
	Handler
	Handles(t tx.Type) bool
}

// EventHandler delivers contract events to the contracts of one function.
type EventHandler interface {
	OnEvent(ev state.ContractEvent, snap *state.Snapshot, updateTime uint64) Result
}

// EventHandlerFunc adapts a function to EventHandler.
type EventHandlerFunc func(ev state.ContractEvent, snap *state.Snapshot, updateTime uint64) Result

func (f EventHandlerFunc) OnEvent(ev state.ContractEvent, snap *state.Snapshot, updateTime uint64) Result {
	return f(ev, snap, updateTime)
}
