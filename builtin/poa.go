// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"slices"

	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

// actor returns the address a transaction acts for. That is the sender, or
// for delegated types the granting address once a covering grant is found.
func (c *call) actor() (string, error) {
	if !c.tx.IsPoA() {
		return c.tx.FromAddress(), nil
	}
	poa, attorney := c.tx.PoaAddress(), c.tx.FromAddress()
	e, ok := c.snap.Poas().Find(poa)
	if !ok {
		return "", runtime.Reject("No POA granted by %q", poa)
	}
	if _, ok := e.Grant(attorney, uint16(c.tx.Type()), c.updateTime); !ok {
		return "", runtime.Reject("No POA from %q to %q covers %v", poa, attorney, c.tx.Type())
	}
	return poa, nil
}

func grantPoa(c *call) error {
	var p GrantPoaPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	if p.Reference == "" {
		return runtime.Reject("POA reference missing")
	}
	if len(p.Types) == 0 {
		return runtime.Reject("POA grants no transaction types")
	}
	for _, t := range p.Types {
		if !tx.Type(t).IsPoA() {
			return runtime.Reject("Transaction type %v can not be delegated", tx.Type(t))
		}
	}
	if p.Expiry != 0 && p.Expiry <= c.updateTime {
		return runtime.Reject("POA expiry %d is in the past", p.Expiry)
	}
	if err := c.ensure(p.Attorney); err != nil {
		return err
	}

	from := c.tx.FromAddress()
	poas := c.snap.Poas()
	e, ok := poas.FindAndMarkUpdated(from)
	if !ok {
		e = &state.PoaEntry{Address: from}
		poas.Add(e)
	}
	grant := state.PoaGrant{Reference: p.Reference, Attorney: p.Attorney, Types: p.Types, Expiry: p.Expiry}
	if i := slices.IndexFunc(e.Grants, func(g state.PoaGrant) bool { return g.Reference == p.Reference }); i >= 0 {
		e.Grants[i] = grant
	} else {
		e.Grants = append(e.Grants, grant)
	}
	return nil
}

func revokePoa(c *call) error {
	var p RevokePoaPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	from := c.tx.FromAddress()
	poas := c.snap.Poas()
	e, ok := poas.Find(from)
	if !ok || !slices.ContainsFunc(e.Grants, func(g state.PoaGrant) bool { return g.Reference == p.Reference }) {
		return runtime.Reject("POA reference %q not found", p.Reference)
	}
	e, _ = poas.FindAndMarkUpdated(from)
	e.Grants = slices.DeleteFunc(e.Grants, func(g state.PoaGrant) bool { return g.Reference == p.Reference })
	if len(e.Grants) == 0 {
		poas.Delete(from)
	}
	return nil
}
