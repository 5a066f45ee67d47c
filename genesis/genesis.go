// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package genesis builds the initial state of a chain.
package genesis

import (
	"io"
	"math/big"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/ledgerd/ledgerd/block"
	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/state"
)

// Genesis is a genesis document.
type Genesis struct {
	ChainID        uint32            `yaml:"chainId"`
	Timestamp      uint64            `yaml:"timestamp"`
	Config         map[string]string `yaml:"config"`
	Accounts       []Account         `yaml:"accounts"`
	Namespaces     []Namespace       `yaml:"namespaces"`
	SignNodes      []SignNode        `yaml:"signNodes"`
	XChains        []XChain          `yaml:"xchains"`
	PrivilegedKeys []PrivilegedKey   `yaml:"privilegedKeys"`
}

// Account is an address present at genesis.
type Account struct {
	Address  string             `yaml:"address"`
	Nonce    uint64             `yaml:"nonce"`
	Metadata string             `yaml:"metadata"`
	Balances map[string]*Amount `yaml:"balances"`
}

// Namespace is a namespace registered at genesis.
type Namespace struct {
	Namespace string   `yaml:"namespace"`
	Owner     string   `yaml:"owner"`
	Classes   []string `yaml:"classes"`
	Metadata  string   `yaml:"metadata"`
}

// SignNode is a validator signing node.
type SignNode struct {
	PublicKey     string  `yaml:"publicKey"`
	ReturnAddress string  `yaml:"returnAddress"`
	Balance       *Amount `yaml:"balance"`
}

// XChain is a connected chain.
type XChain struct {
	ChainID     uint32 `yaml:"chainId"`
	BlockHeight uint64 `yaml:"blockHeight"`
	Parameters  uint64 `yaml:"parameters"`
}

// PrivilegedKey is a key allowed to run privileged operations.
type PrivilegedKey struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
	Expiry      uint64   `yaml:"expiry"`
}

// Amount is a big integer written in decimal or 0x prefixed hex, optionally negative.
type Amount big.Int

// UnmarshalYAML implements yaml.Unmarshaler.
func (a *Amount) UnmarshalYAML(value *yaml.Node) error {
	s := strings.TrimSpace(value.Value)
	neg := strings.HasPrefix(s, "-")
	v, ok := math.ParseBig256(strings.TrimPrefix(s, "-"))
	if !ok {
		return errors.Errorf("invalid amount %q", value.Value)
	}
	if neg {
		v.Neg(v)
	}
	*a = Amount(*v)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (a *Amount) MarshalYAML() (any, error) {
	return a.Int().String(), nil
}

// Int returns the amount as a big.Int.
func (a *Amount) Int() *big.Int {
	if a == nil {
		return new(big.Int)
	}
	return new(big.Int).Set((*big.Int)(a))
}

// Load decodes a genesis document.
func Load(r io.Reader) (*Genesis, error) {
	var g Genesis
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&g); err != nil {
		return nil, errors.Wrap(err, "decode genesis")
	}
	return &g, nil
}

// LoadFile decodes the genesis document at path.
func LoadFile(path string) (*Genesis, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Builder converts the document into a genesis builder.
func (g *Genesis) Builder() *Builder {
	return new(Builder).
		ChainID(g.ChainID).
		Timestamp(g.Timestamp).
		State(g.apply)
}

// Build builds the genesis state and block.
func (g *Genesis) Build() (*state.State, *block.Block, error) {
	return g.Builder().Build()
}

func (g *Genesis) apply(snap *state.Snapshot) error {
	for k, v := range g.Config {
		snap.SetConfigValue(strings.ToLower(k), v)
	}

	balances := snap.Balances()
	for _, acc := range g.Accounts {
		if !ledger.IsAddress(acc.Address) {
			return errors.Errorf("invalid account address %q", acc.Address)
		}
		e := state.NewAddressEntry(acc.Address)
		e.SetNonce(acc.Nonce)
		e.Metadata = acc.Metadata
		for asset, amount := range acc.Balances {
			e.AddBalance(asset, amount.Int())
		}
		if !balances.Add(e) {
			return errors.Errorf("duplicate account %q", acc.Address)
		}
	}

	namespaces := snap.Namespaces()
	for _, ns := range g.Namespaces {
		if !balances.ItemExists(ns.Owner) {
			return errors.Errorf("namespace %q: unknown owner %q", ns.Namespace, ns.Owner)
		}
		e := &state.NamespaceEntry{Namespace: ns.Namespace, Owner: ns.Owner, Metadata: ns.Metadata}
		for _, class := range ns.Classes {
			e.SetClass(state.AssetClass{ID: class})
		}
		if !namespaces.Add(e) {
			return errors.Errorf("duplicate namespace %q", ns.Namespace)
		}
	}

	signNodes := snap.SignNodes()
	for _, n := range g.SignNodes {
		if !signNodes.Add(&state.SignNodeEntry{PublicKey: n.PublicKey, ReturnAddress: n.ReturnAddress, Balance: n.Balance.Int()}) {
			return errors.Errorf("duplicate sign node %q", n.PublicKey)
		}
	}

	for _, x := range g.XChains {
		if x.ChainID == g.ChainID {
			return errors.Errorf("chain %d can not connect to itself", x.ChainID)
		}
		snap.SetXChain(&state.XChainDetails{ChainID: x.ChainID, BlockHeight: x.BlockHeight, Parameters: x.Parameters})
	}

	for _, k := range g.PrivilegedKeys {
		snap.SetPrivilegedKey(&state.PrivilegedKey{
			Key:         strings.TrimPrefix(strings.ToLower(k.Key), "0x"),
			Name:        k.Name,
			Permissions: k.Permissions,
			Expiry:      k.Expiry,
		})
	}
	return nil
}
