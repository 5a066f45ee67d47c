// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package builtin provides the reference transaction and contract event handlers.
package builtin

import (
	"strings"

	"github.com/ledgerd/ledgerd/log"
	"github.com/ledgerd/ledgerd/runtime"
	"github.com/ledgerd/ledgerd/state"
	"github.com/ledgerd/ledgerd/tx"
)

var logger = log.WithContext("pkg", "builtin")

// call is the environment a handler runs in.
type call struct {
	tx         *tx.Transaction
	snap       *state.Snapshot
	updateTime uint64
	checkOnly  bool
	verifier   runtime.AddressVerifier
	config     state.Config
}

func (c *call) decode(v any) error {
	if err := c.tx.DecodePayload(v); err != nil {
		return runtime.Reject("Invalid payload: %v", err)
	}
	return nil
}

// ensure checks addresses exist, creating them when registration is optional.
func (c *call) ensure(addresses ...string) error {
	return runtime.CheckAndCreateAddresses(c.snap, c.verifier, c.config.MustRegister, addresses...)
}

type handler func(c *call) error

// Register installs the builtin handlers into reg.
func Register(reg *runtime.Registry, verifier runtime.AddressVerifier) {
	if verifier == nil {
		verifier = runtime.DefaultVerifier
	}
	defines := []struct {
		types []tx.Type
		run   handler
	}{
		{[]tx.Type{tx.RegisterAddress}, registerAddress},
		{[]tx.Type{tx.RegisterNamespace, tx.PoaRegisterNamespace}, registerNamespace},
		{[]tx.Type{tx.IssueAsset, tx.PoaIssueAsset}, issueAsset},
		{[]tx.Type{tx.TransferAsset, tx.PoaTransferAsset}, transferAsset},
		{[]tx.Type{tx.LockAsset, tx.PoaLockAsset}, lockAsset},
		{[]tx.Type{tx.UnlockAsset, tx.PoaUnlockAsset}, unlockAsset},
		{[]tx.Type{tx.EncumberAsset, tx.PoaEncumberAsset}, encumberAsset},
		{[]tx.Type{tx.UnencumberAsset, tx.PoaUnencumberAsset}, unencumberAsset},
		{[]tx.Type{tx.CreateMemo, tx.DoNothing}, createMemo},
		{[]tx.Type{tx.GrantPoa}, grantPoa},
		{[]tx.Type{tx.RevokePoa}, revokePoa},
		{[]tx.Type{tx.AddXChain}, addXChain},
		{[]tx.Type{tx.RemoveXChain}, removeXChain},
		{[]tx.Type{tx.XChainTxPackage}, xchainPackage},
		{[]tx.Type{tx.NewContract, tx.PoaNewContract}, newContract},
		{[]tx.Type{tx.CancelContract, tx.PoaCancelContract}, cancelContract},
	}
	for _, d := range defines {
		reg.Register(wrap(d.run, verifier), d.types...)
	}
	reg.RegisterEvent(TimerFunction, runtime.EventHandlerFunc(onTimer))
}

func wrap(run handler, verifier runtime.AddressVerifier) runtime.Handler {
	return runtime.HandlerFunc(func(t *tx.Transaction, snap *state.Snapshot, updateTime uint64, _ int, checkOnly bool) runtime.Result {
		c := &call{
			tx:         t,
			snap:       snap,
			updateTime: updateTime,
			checkOnly:  checkOnly,
			verifier:   verifier,
			config:     snap.Config(),
		}
		if err := run(c); err != nil {
			return runtime.ResultOf(err, checkOnly)
		}
		return runtime.Passed(checkOnly)
	})
}

// AssetID joins a namespace and a class into an asset id.
func AssetID(namespace, class string) string {
	return namespace + "|" + class
}

func namespaceOf(asset string) string {
	ns, _, _ := strings.Cut(asset, "|")
	return ns
}
