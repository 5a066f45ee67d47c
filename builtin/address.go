// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
)

func registerAddress(c *call) error {
	var p RegisterAddressPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	addr := c.tx.FromAddress()
	if !c.verifier.IsAddress(addr) {
		return runtime.Reject("Invalid address %q", addr)
	}
	balances := c.snap.Balances()
	if balances.ItemExists(addr) {
		return runtime.Reject("Address %q already exists", addr)
	}
	e := state.NewAddressEntry(addr)
	e.Metadata = p.Metadata
	e.UpdateTime = c.updateTime
	balances.Add(e)
	return nil
}

func createMemo(c *call) error {
	if len(c.tx.Payload()) == 0 {
		return nil
	}
	var p MemoPayload
	return c.decode(&p)
}
