// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"io"
	"math/big"
	"slices"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/rlp"
)

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// Holding is the balance of one asset. Balances are signed: an issuer's balance goes negative.
type Holding struct {
	Asset  string
	Amount *big.Int
}

type holdingRLP struct {
	Asset    string
	Negative bool
	Abs      *big.Int
}

// EncodeRLP implements rlp.Encoder, rlp has no signed integers.
func (h Holding) EncodeRLP(w io.Writer) error {
	amount := h.Amount
	if amount == nil {
		amount = new(big.Int)
	}
	return rlp.Encode(w, &holdingRLP{h.Asset, amount.Sign() < 0, new(big.Int).Abs(amount)})
}

// DecodeRLP implements rlp.Decoder.
func (h *Holding) DecodeRLP(s *rlp.Stream) error {
	var dec holdingRLP
	if err := s.Decode(&dec); err != nil {
		return err
	}
	h.Asset = dec.Asset
	h.Amount = dec.Abs
	if dec.Negative {
		h.Amount.Neg(h.Amount)
	}
	return nil
}

// AddressEntry is an account: its nonce sequence and asset holdings.
type AddressEntry struct {
	Address           string
	Nonce             uint64
	NonceUnset        bool
	HighPriorityNonce uint64
	LowPriorityNonce  uint64
	UpdateTime        uint64
	Height            uint64
	Holdings          []Holding // sorted by asset
	Metadata          string
}

// NewAddressEntry creates an empty account with nonce 0.
func NewAddressEntry(address string) *AddressEntry {
	return &AddressEntry{Address: address}
}

func (e *AddressEntry) Key() string              { return e.Address }
func (e *AddressEntry) UpdateHeight() uint64     { return e.Height }
func (e *AddressEntry) SetUpdateHeight(h uint64) { e.Height = h }

// Copy implements collection.Entry.
func (e *AddressEntry) Copy() *AddressEntry {
	c := *e
	c.Holdings = make([]Holding, len(e.Holdings))
	for i, h := range e.Holdings {
		c.Holdings[i] = Holding{h.Asset, cloneBig(h.Amount)}
	}
	return &c
}

// SetNonce raises the nonce to n. The nonce never decreases.
func (e *AddressEntry) SetNonce(n uint64) {
	if e.NonceUnset || n > e.Nonce {
		e.Nonce = n
	}
	e.NonceUnset = false
}

// Balance returns the holding of asset, zero if none.
func (e *AddressEntry) Balance(asset string) *big.Int {
	if i, ok := e.holding(asset); ok {
		return cloneBig(e.Holdings[i].Amount)
	}
	return new(big.Int)
}

// AddBalance adds delta, which may be negative, to the holding of asset.
func (e *AddressEntry) AddBalance(asset string, delta *big.Int) {
	i, ok := e.holding(asset)
	if !ok {
		e.Holdings = slices.Insert(e.Holdings, i, Holding{asset, new(big.Int)})
	}
	e.Holdings[i].Amount = new(big.Int).Add(e.Holdings[i].Amount, delta)
}

func (e *AddressEntry) holding(asset string) (int, bool) {
	i := sort.Search(len(e.Holdings), func(i int) bool { return e.Holdings[i].Asset >= asset })
	return i, i < len(e.Holdings) && e.Holdings[i].Asset == asset
}

// AssetClass is a class of assets registered in a namespace.
type AssetClass struct {
	ID       string
	Metadata string
}

// NamespaceEntry is a registered namespace and its asset classes.
type NamespaceEntry struct {
	Namespace string
	Owner     string
	Classes   []AssetClass // sorted by id
	Metadata  string
	Height    uint64
}

func (e *NamespaceEntry) Key() string              { return e.Namespace }
func (e *NamespaceEntry) UpdateHeight() uint64     { return e.Height }
func (e *NamespaceEntry) SetUpdateHeight(h uint64) { e.Height = h }

// Copy implements collection.Entry.
func (e *NamespaceEntry) Copy() *NamespaceEntry {
	c := *e
	c.Classes = slices.Clone(e.Classes)
	return &c
}

// HasClass reports whether the class id is registered.
func (e *NamespaceEntry) HasClass(id string) bool {
	_, ok := slices.BinarySearchFunc(e.Classes, id, func(c AssetClass, id string) int {
		return strings.Compare(c.ID, id)
	})
	return ok
}

// SetClass registers or replaces an asset class.
func (e *NamespaceEntry) SetClass(class AssetClass) {
	i, ok := slices.BinarySearchFunc(e.Classes, class.ID, func(c AssetClass, id string) int {
		return strings.Compare(c.ID, id)
	})
	if ok {
		e.Classes[i] = class
		return
	}
	e.Classes = slices.Insert(e.Classes, i, class)
}

// ContractEntry is a live contract.
type ContractEntry struct {
	Address       string
	Function      string // selects the event handler
	Owner         string
	Parties       []string
	NextTimeEvent uint64
	Status        string
	Data          []byte
	Height        uint64
}

func (e *ContractEntry) Key() string              { return e.Address }
func (e *ContractEntry) UpdateHeight() uint64     { return e.Height }
func (e *ContractEntry) SetUpdateHeight(h uint64) { e.Height = h }

// Copy implements collection.Entry.
func (e *ContractEntry) Copy() *ContractEntry {
	c := *e
	c.Parties = slices.Clone(e.Parties)
	c.Data = slices.Clone(e.Data)
	return &c
}

// EncumbranceEntry reserves part of a holding for a beneficiary.
type EncumbranceEntry struct {
	Address     string
	Reference   string
	Asset       string
	Beneficiary string
	Amount      *big.Int
	Expiry      uint64
	Height      uint64
}

// EncumbranceKey builds the key of an encumbrance.
func EncumbranceKey(address, reference string) string {
	return address + "|" + reference
}

func (e *EncumbranceEntry) Key() string              { return EncumbranceKey(e.Address, e.Reference) }
func (e *EncumbranceEntry) UpdateHeight() uint64     { return e.Height }
func (e *EncumbranceEntry) SetUpdateHeight(h uint64) { e.Height = h }

// Copy implements collection.Entry.
func (e *EncumbranceEntry) Copy() *EncumbranceEntry {
	c := *e
	c.Amount = cloneBig(e.Amount)
	return &c
}

// LockedAssetEntry marks an asset, or a whole namespace, as locked.
type LockedAssetEntry struct {
	Asset  string
	Reason string
	Height uint64
}

func (e *LockedAssetEntry) Key() string              { return e.Asset }
func (e *LockedAssetEntry) UpdateHeight() uint64     { return e.Height }
func (e *LockedAssetEntry) SetUpdateHeight(h uint64) { e.Height = h }
func (e *LockedAssetEntry) Copy() *LockedAssetEntry  { c := *e; return &c }

// SignNodeEntry is a validator signing node and its stake.
type SignNodeEntry struct {
	PublicKey     string // hex
	ReturnAddress string
	Balance       *big.Int
	Height        uint64
}

func (e *SignNodeEntry) Key() string              { return e.PublicKey }
func (e *SignNodeEntry) UpdateHeight() uint64     { return e.Height }
func (e *SignNodeEntry) SetUpdateHeight(h uint64) { e.Height = h }

// Copy implements collection.Entry.
func (e *SignNodeEntry) Copy() *SignNodeEntry {
	c := *e
	c.Balance = cloneBig(e.Balance)
	return &c
}

// PoaGrant lets an attorney act for the granting address.
type PoaGrant struct {
	Reference string
	Attorney  string
	Types     []uint16 // transaction types the grant covers
	Expiry    uint64   // unix seconds, 0 never expires
}

// Covers reports whether the grant authorises attorney to issue a transaction of type t at time now.
func (g *PoaGrant) Covers(attorney string, t uint16, now uint64) bool {
	if g.Attorney != attorney || (g.Expiry != 0 && now > g.Expiry) {
		return false
	}
	return slices.Contains(g.Types, t)
}

// PoaEntry holds the delegated-authority grants issued by one address.
type PoaEntry struct {
	Address string
	Grants  []PoaGrant
	Height  uint64
}

func (e *PoaEntry) Key() string              { return e.Address }
func (e *PoaEntry) UpdateHeight() uint64     { return e.Height }
func (e *PoaEntry) SetUpdateHeight(h uint64) { e.Height = h }

// Copy implements collection.Entry.
func (e *PoaEntry) Copy() *PoaEntry {
	c := *e
	c.Grants = make([]PoaGrant, len(e.Grants))
	for i, g := range e.Grants {
		g.Types = slices.Clone(g.Types)
		c.Grants[i] = g
	}
	return &c
}

// Grant finds the grant covering attorney for type t at time now.
func (e *PoaEntry) Grant(attorney string, t uint16, now uint64) (*PoaGrant, bool) {
	for i := range e.Grants {
		if e.Grants[i].Covers(attorney, t, now) {
			return &e.Grants[i], true
		}
	}
	return nil, false
}
