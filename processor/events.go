// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"maps"
	"slices"

	"github.com/ledgerd/ledgerd/block"
	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

// ContractMemoVersion is the version of the contract memo payload.
const ContractMemoVersion = 1

// ContractMemo is the payload of the memo summarising the contract activity of a block.
type ContractMemo struct {
	Version uint
	Events  []MemoEvent
	Users   []MemoUsers
}

// MemoEvent lists the contracts a lifecycle event fired for.
type MemoEvent struct {
	Event     string
	Contracts []string
}

// MemoUsers lists the addresses a contract affected.
type MemoUsers struct {
	Contract string
	Users    []string
}

// PostProcessTransactions delivers the contract events of the block: first the
// time events it declares, then the events raised by its transactions. It then
// appends the contract memo and attaches the effective transactions to blk.
//
// Any event not passing fails the block. That never happens on consistent state.
func (p *Processor) PostProcessTransactions(snap *state.Snapshot, blk *block.Block, updateTime uint64) bool {
	for _, addr := range blk.TimeEvents() {
		contract, ok := snap.Contracts().Find(addr)
		if !ok {
			continue
		}
		ev := state.ContractEvent{Address: addr, Function: contract.Function, Name: ledger.TimeEventName}
		if !p.deliver(snap, ev, updateTime) {
			logger.Warn("Post processing of time event failed", "contract", ev.Address, "function", ev.Function, "name", ev.Name)
			return false
		}
	}

	for _, ev := range snap.ContractEvents() {
		if !p.deliver(snap, ev, updateTime) {
			logger.Warn("Post processing of event failed", "contract", ev.Address, "function", ev.Function, "name", ev.Name, "data", ev.Data)
			return false
		}
	}

	createContractMemo(snap)
	blk.SetEffectiveTxs(snap.EffectiveTxs())
	return true
}

// deliver runs one event in its own child snapshot.
func (p *Processor) deliver(snap *state.Snapshot, ev state.ContractEvent, updateTime uint64) (ok bool) {
	child := snap.CreateSnapshot()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Internal error processing event", "contract", ev.Address, "function", ev.Function, "panic", r)
			ok = false
		}
	}()
	res := p.rt.DeliverEvent(ev, child, updateTime)
	if !res.OK() {
		logger.Debug("event failed", "contract", ev.Address, "result", res)
		return false
	}
	if msg := child.CommitIfNotCorrupt(); msg != "" {
		logger.Error("event commit failed", "contract", ev.Address, "reason", msg)
		return false
	}
	return true
}

// createContractMemo records the lifecycle events and affected users as an effective memo.
func createContractMemo(snap *state.Snapshot) {
	events := snap.LifecycleEvents()
	users := snap.ContractUsers()
	if len(events) == 0 && len(users) == 0 {
		return
	}

	memo := ContractMemo{Version: ContractMemoVersion}
	for _, ev := range slices.Sorted(maps.Keys(events)) {
		memo.Events = append(memo.Events, MemoEvent{string(ev), events[ev]})
	}
	for _, c := range slices.Sorted(maps.Keys(users)) {
		memo.Users = append(memo.Users, MemoUsers{c, users[c]})
	}

	t := tx.NewBuilder(tx.CreateMemo).
		ChainID(snap.ChainID()).
		Nonce(0).
		Timestamp(snap.Timestamp()).
		Payload(&memo).
		Good(true).
		MustBuild()
	snap.AddEffectiveTx(t)
}

// RemoveProcessedTimeEvents drops the time events the block delivered from the pending set.
func (p *Processor) RemoveProcessedTimeEvents(snap *state.Snapshot, blk *block.Block, updateTime uint64) {
	if events := blk.TimeEvents(); len(events) > 0 {
		snap.RemovePendingTimeEvents(updateTime, events)
	}
}

// DueTimeEvents returns the contracts whose time events a block proposed at
// updateTime should declare, capped by the configured timers per block.
func (p *Processor) DueTimeEvents(snap *state.Snapshot, updateTime uint64) []string {
	return snap.DueTimeEvents(updateTime, int(snap.Config().MaxTimersPerBlock))
}
