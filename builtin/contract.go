// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"gopkg.in/yaml.v3"

	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/log"
	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

// TimerFunction is a contract that completes when its time event fires.
const TimerFunction = "timer"

// ContractAddress derives the address of the contract created by t.
func ContractAddress(t *tx.Transaction) string {
	h := t.Hash()
	return ledger.PublicKeyToAddress(h[:])
}

func newContract(c *call) error {
	var p NewContractPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	if p.Function != TimerFunction {
		return runtime.Reject("Unknown contract function %q", p.Function)
	}
	if p.Start != 0 && p.Start < c.updateTime {
		return runtime.Reject("Contract start %d is in the past", p.Start)
	}
	if err := c.ensure(p.Parties...); err != nil {
		return err
	}
	addr := ContractAddress(c.tx)
	contracts := c.snap.Contracts()
	if contracts.ItemExists(addr) {
		return runtime.Reject("Contract %q already exists", addr)
	}
	contracts.Add(&state.ContractEntry{
		Address:       addr,
		Function:      p.Function,
		Owner:         actor,
		Parties:       p.Parties,
		NextTimeEvent: p.Start,
		Status:        string(state.LifecycleNew),
		Data:          p.Data,
	})
	if p.Start != 0 {
		c.snap.AddTimeEvent(addr, p.Start)
	}
	c.snap.AddLifecycleEvent(state.LifecycleNew, addr, append([]string{actor}, p.Parties...)...)
	return nil
}

func cancelContract(c *call) error {
	var p CancelContractPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	contracts := c.snap.Contracts()
	e, ok := contracts.Find(p.Contract)
	if !ok {
		return runtime.Reject("Contract %q not found", p.Contract)
	}
	if e.Owner != actor {
		return runtime.Reject("Contract %q is not owned by %q", p.Contract, actor)
	}
	if e.NextTimeEvent != 0 {
		c.snap.RemoveTimeEvent(e.Address, e.NextTimeEvent)
	}
	contracts.Delete(e.Address)
	c.snap.AddLifecycleEvent(state.LifecycleCancel, e.Address, append([]string{e.Owner}, e.Parties...)...)
	return nil
}

// onTimer completes a timer contract on its time event.
func onTimer(ev state.ContractEvent, snap *state.Snapshot, _ uint64) runtime.Result {
	if ev.Name != ledger.TimeEventName {
		return runtime.Failed("Unexpected event %q for contract %q", ev.Name, ev.Address)
	}
	contracts := snap.Contracts()
	e, ok := contracts.Find(ev.Address)
	if !ok {
		return runtime.Failed("Contract %q not found", ev.Address)
	}
	if logger.Enabled(log.LevelDebug) {
		out, _ := yaml.Marshal(struct {
			Address  string   `yaml:"address"`
			Function string   `yaml:"function"`
			Owner    string   `yaml:"owner"`
			Parties  []string `yaml:"parties,omitempty"`
			Due      uint64   `yaml:"due"`
		}{e.Address, e.Function, e.Owner, e.Parties, e.NextTimeEvent})
		logger.Debug("contract completed", "contract", string(out))
	}
	contracts.Delete(e.Address)
	snap.AddLifecycleEvent(state.LifecycleComplete, e.Address, append([]string{e.Owner}, e.Parties...)...)
	return runtime.Passed(false)
}
