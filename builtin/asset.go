// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package builtin

import (
	"math/big"
	"strings"

	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
)

func registerNamespace(c *call) error {
	var p RegisterNamespacePayload
	if err := c.decode(&p); err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	if p.Namespace == "" || strings.Contains(p.Namespace, "|") {
		return runtime.Reject("Invalid namespace %q", p.Namespace)
	}
	namespaces := c.snap.Namespaces()
	if namespaces.ItemExists(p.Namespace) {
		return runtime.Reject("Namespace %q already exists", p.Namespace)
	}
	namespaces.Add(&state.NamespaceEntry{Namespace: p.Namespace, Owner: actor, Metadata: p.Metadata})
	return nil
}

func issueAsset(c *call) error {
	var p IssueAssetPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}
	if p.Namespace == "" || p.Class == "" {
		return runtime.Reject("Invalid asset %q", AssetID(p.Namespace, p.Class))
	}
	asset := AssetID(p.Namespace, p.Class)
	if ns, ok := c.snap.Namespaces().Find(p.Namespace); ok {
		if ns.Owner != actor {
			return runtime.Reject("Namespace %q is not owned by %q", p.Namespace, actor)
		}
		if !ns.HasClass(p.Class) {
			ns, _ = c.snap.Namespaces().FindAndMarkUpdated(p.Namespace)
			ns.SetClass(state.AssetClass{ID: p.Class, Metadata: p.Metadata})
		}
	}
	if err := c.checkUnlocked(asset); err != nil {
		return err
	}
	to := p.To
	if to == "" {
		to = actor
	}
	if err := c.ensure(to); err != nil {
		return err
	}
	recipient, _ := c.snap.Balances().FindAndMarkUpdated(to)
	recipient.AddBalance(asset, p.Amount)
	return nil
}

func transferAsset(c *call) error {
	var p TransferAssetPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}
	if err := c.checkUnlocked(p.Asset); err != nil {
		return err
	}
	if err := c.ensure(actor, p.To); err != nil {
		return err
	}
	balances := c.snap.Balances()
	sender, _ := balances.FindAndMarkUpdated(actor)
	if !c.isIssuer(actor, p.Asset) && sender.Balance(p.Asset).Cmp(p.Amount) < 0 {
		return runtime.Reject("Insufficient balance of %q", p.Asset)
	}
	sender.AddBalance(p.Asset, new(big.Int).Neg(p.Amount))
	recipient, _ := balances.FindAndMarkUpdated(p.To)
	recipient.AddBalance(p.Asset, p.Amount)
	return nil
}

func lockAsset(c *call) error {
	var p LockAssetPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	if err := c.checkOwner(p.Asset); err != nil {
		return err
	}
	locked := c.snap.LockedAssets()
	if locked.ItemExists(p.Asset) {
		return runtime.Reject("Asset %q is already locked", p.Asset)
	}
	locked.Add(&state.LockedAssetEntry{Asset: p.Asset, Reason: p.Reason})
	return nil
}

func unlockAsset(c *call) error {
	var p LockAssetPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	if err := c.checkOwner(p.Asset); err != nil {
		return err
	}
	if !c.snap.LockedAssets().Delete(p.Asset) {
		return runtime.Reject("Asset %q is not locked", p.Asset)
	}
	return nil
}

// encumberAsset moves part of a holding into escrow for a beneficiary.
func encumberAsset(c *call) error {
	var p EncumberAssetPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	if err := positive(p.Amount); err != nil {
		return err
	}
	if err := c.checkUnlocked(p.Asset); err != nil {
		return err
	}
	if err := c.ensure(actor, p.Beneficiary); err != nil {
		return err
	}
	encumbrances := c.snap.Encumbrances()
	if encumbrances.ItemExists(state.EncumbranceKey(actor, p.Reference)) {
		return runtime.Reject("Encumbrance %q already exists", p.Reference)
	}
	holder, _ := c.snap.Balances().FindAndMarkUpdated(actor)
	if holder.Balance(p.Asset).Cmp(p.Amount) < 0 {
		return runtime.Reject("Insufficient balance of %q", p.Asset)
	}
	holder.AddBalance(p.Asset, new(big.Int).Neg(p.Amount))
	encumbrances.Add(&state.EncumbranceEntry{
		Address:     actor,
		Reference:   p.Reference,
		Asset:       p.Asset,
		Beneficiary: p.Beneficiary,
		Amount:      new(big.Int).Set(p.Amount),
		Expiry:      p.Expiry,
	})
	return nil
}

// unencumberAsset releases an escrow back to its holder. Holder or beneficiary may release.
func unencumberAsset(c *call) error {
	var p UnencumberAssetPayload
	if err := c.decode(&p); err != nil {
		return err
	}
	actor, err := c.actor()
	if err != nil {
		return err
	}
	key := state.EncumbranceKey(p.Address, p.Reference)
	encumbrances := c.snap.Encumbrances()
	e, ok := encumbrances.Find(key)
	if !ok {
		return runtime.Reject("Encumbrance %q not found", p.Reference)
	}
	if actor != e.Address && actor != e.Beneficiary {
		return runtime.Reject("Encumbrance %q can not be released by %q", p.Reference, actor)
	}
	holder, ok := c.snap.Balances().FindAndMarkUpdated(e.Address)
	if !ok {
		return runtime.Reject("Address %q does not exist", e.Address)
	}
	holder.AddBalance(e.Asset, e.Amount)
	encumbrances.Delete(key)
	return nil
}

func (c *call) checkUnlocked(asset string) error {
	locked := c.snap.LockedAssets()
	if locked.ItemExists(asset) || locked.ItemExists(namespaceOf(asset)) {
		return runtime.Reject("Asset %q is locked", asset)
	}
	return nil
}

// checkOwner requires the actor to own the namespace of asset.
func (c *call) checkOwner(asset string) error {
	actor, err := c.actor()
	if err != nil {
		return err
	}
	if !c.isIssuer(actor, asset) {
		return runtime.Reject("Namespace %q is not owned by %q", namespaceOf(asset), actor)
	}
	return nil
}

// isIssuer reports whether address owns the namespace of asset. Issuers may overdraw.
func (c *call) isIssuer(address, asset string) bool {
	ns, ok := c.snap.Namespaces().Find(namespaceOf(asset))
	return ok && ns.Owner == address
}

func positive(amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return runtime.Reject("Amount must be positive")
	}
	return nil
}
