// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"slices"
	"strconv"

	"github.com/ledgerd/ledgerd/ledger"
)

// XChainSignNode is a signing node of a connected chain.
type XChainSignNode struct {
	PublicKey string
	Amount    *big.Int
}

// XChainDetails describes a connected chain. BlockHeight is the last height
// of that chain applied here, and serves as the nonce of its packages.
type XChainDetails struct {
	ChainID     uint32
	BlockHeight uint64
	Parameters  uint64
	SignNodes   []XChainSignNode
	Status      uint64
}

// Copy returns a deep copy.
func (d *XChainDetails) Copy() *XChainDetails {
	c := *d
	c.SignNodes = make([]XChainSignNode, len(d.SignNodes))
	for i, n := range d.SignNodes {
		c.SignNodes[i] = XChainSignNode{n.PublicKey, cloneBig(n.Amount)}
	}
	return &c
}

// PrivilegedKey is a key allowed to run privileged operations.
type PrivilegedKey struct {
	Key         string // hex public key
	Name        string
	Permissions []string
	Expiry      uint64
}

// Copy returns a deep copy.
func (k *PrivilegedKey) Copy() *PrivilegedKey {
	c := *k
	c.Permissions = slices.Clone(k.Permissions)
	return &c
}

// Config is the typed view of the configuration map.
type Config struct {
	MaxTxAge          int64 // seconds
	MaxTxPerBlock     int64
	MaxTimersPerBlock int64
	MustRegister      bool // senders must be registered before use
}

// ConfigGetter reads raw configuration values.
type ConfigGetter interface {
	ConfigValue(key string) (string, bool)
}

// LoadConfig builds the typed view, applying defaults and lower bounds.
func LoadConfig(g ConfigGetter) Config {
	return Config{
		MaxTxAge:          max(configInt(g, ledger.ConfigMaxTxAge, ledger.DefaultMaxTxAge), ledger.MinimumMaxTxAge),
		MaxTxPerBlock:     max(configInt(g, ledger.ConfigMaxTxPerBlock, ledger.DefaultMaxTxPerBlock), ledger.MinimumMaxTxPerBlock),
		MaxTimersPerBlock: max(configInt(g, ledger.ConfigMaxTimersPerBlock, ledger.DefaultMaxTimersPerBlock), ledger.MinimumMaxTimersPerBlock),
		MustRegister:      configInt(g, ledger.ConfigRegisterAddresses, 0) > 0,
	}
}

func configInt(g ConfigGetter, key string, def int64) int64 {
	raw, ok := g.ConfigValue(key)
	if !ok {
		return def
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		logger.Warn("ignoring malformed config value", "key", key, "value", raw)
		return def
	}
	return v
}

// timeEvent schedules an event for a contract.
type timeEvent struct {
	Time    uint64
	Address string
}

func compareTimeEvents(a, b timeEvent) int {
	if a.Time != b.Time {
		if a.Time < b.Time {
			return -1
		}
		return 1
	}
	switch {
	case a.Address < b.Address:
		return -1
	case a.Address > b.Address:
		return 1
	}
	return 0
}
