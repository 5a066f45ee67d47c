// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
)

// PermissionXChain allows a privileged key to connect and disconnect chains.
const PermissionXChain = "xchain"

// privileged requires the sender key to hold perm.
func (c *call) privileged(perm string) error {
	key := common.Bytes2Hex(c.tx.FromPublicKey())
	k, ok := c.snap.PrivilegedKey(key)
	if !ok {
		return runtime.Reject("Sender key is not privileged")
	}
	if k.Expiry != 0 && k.Expiry < c.updateTime {
		return runtime.Reject("Privileged key %q has expired", k.Name)
	}
	if !slices.Contains(k.Permissions, perm) {
		return runtime.Reject("Privileged key %q lacks permission %q", k.Name, perm)
	}
	return nil
}

func addXChain(c *call) error {
	var p AddXChainPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	if err := c.privileged(PermissionXChain); err != nil {
		return err
	}
	if p.ChainID == c.snap.ChainID() {
		return runtime.Reject("Chain %d can not connect to itself", p.ChainID)
	}
	if _, ok := c.snap.XChain(p.ChainID); ok {
		return runtime.Reject("Chain %d already connected", p.ChainID)
	}
	d := &state.XChainDetails{ChainID: p.ChainID, Parameters: p.Parameters}
	for _, n := range p.SignNodes {
		d.SignNodes = append(d.SignNodes, state.XChainSignNode{PublicKey: n.PublicKey, Amount: n.Amount})
	}
	c.snap.SetXChain(d)
	return nil
}

func removeXChain(c *call) error {
	var p RemoveXChainPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	if err := c.privileged(PermissionXChain); err != nil {
		return err
	}
	if _, ok := c.snap.XChain(p.ChainID); !ok {
		return runtime.Reject("Chain %d not connected", p.ChainID)
	}
	c.snap.RemoveXChain(p.ChainID)
	return nil
}

// xchainPackage credits the transfers a connected chain packaged for this one.
// The package nonce, which is the origin block height, is tracked by the processor.
func xchainPackage(c *call) error {
	var p XChainPackagePayload
	if err := c.decode(&p); err != nil {
		return err
	}
	if _, ok := c.snap.XChain(c.tx.FromChainID()); !ok {
		return runtime.Reject("Chain %d not connected", c.tx.FromChainID())
	}
	balances := c.snap.Balances()
	for _, credit := range p.Credits {
		if err := positive(credit.Amount); err != nil {
			return err
		}
		if err := c.ensure(credit.To); err != nil {
			return err
		}
		e, _ := balances.FindAndMarkUpdated(credit.To)
		e.AddBalance(credit.Asset, credit.Amount)
	}
	return nil
}
