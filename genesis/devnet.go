// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package genesis

import (
	"crypto/ecdsa"
	"math/big"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/ledgerd/ledgerd/ledger"
)

// DevAccount account for development.
type DevAccount struct {
	Address    string
	PublicKey  []byte
	PrivateKey *ecdsa.PrivateKey
}

var devAccounts atomic.Value

// DevAccounts returns pre-alloced accounts for the dev network.
func DevAccounts() []DevAccount {
	if accs := devAccounts.Load(); accs != nil {
		return accs.([]DevAccount)
	}

	var accs []DevAccount
	privKeys := []string{
		"dce1443bd2ef0c2631adc1c67e5c93f13dc23a41c18b536effbbdcbcdb96fb65",
		"321d6443bc6177273b5abf54210fe806d451d6b7973bccc2384ef78bbcd0bf51",
		"2d7c882bad2a01105e36dda3646693bc1aaaa45b0ed63fb0ce23c060294f3af2",
		"593537225b037191d322c3b1df585fb1e5100811b71a6f7fc7e29cca1333483e",
	}
	for _, str := range privKeys {
		pk, err := crypto.HexToECDSA(str)
		if err != nil {
			panic(err)
		}
		pub := crypto.FromECDSAPub(&pk.PublicKey)[1:]
		accs = append(accs, DevAccount{ledger.PublicKeyToAddress(pub), pub, pk})
	}
	devAccounts.Store(accs)
	return accs
}

// DevAsset is the asset every dev account starts with.
const DevAsset = "dev|coin"

// NewDevnet creates the genesis document of the dev network. The first
// account owns the dev namespace and may connect chains.
func NewDevnet() *Genesis {
	accs := DevAccounts()
	g := &Genesis{
		ChainID:   1,
		Timestamp: 1526400000, // Default Devnet Genesis @ 2018-05-16T00:00:00+00:00
		Config: map[string]string{
			ledger.ConfigMaxTxAge: "86400",
		},
		Namespaces: []Namespace{{Namespace: "dev", Owner: accs[0].Address, Classes: []string{"coin"}}},
		PrivilegedKeys: []PrivilegedKey{{
			Key:         common.Bytes2Hex(accs[0].PublicKey),
			Name:        "dev",
			Permissions: []string{"xchain"},
		}},
	}
	for _, a := range accs {
		amount := Amount(*new(big.Int).SetUint64(1_000_000_000))
		g.Accounts = append(g.Accounts, Account{Address: a.Address, Balances: map[string]*Amount{DevAsset: &amount}})
	}
	return g
}
