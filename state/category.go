// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/ledgerd/ledgerd/collection"
	"github.com/ledgerd/ledgerd/kv"
	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/overlay"
)

// Category names, also used as storage bucket names and metric labels.
const (
	CategoryBalances     = "balances"
	CategoryNamespaces   = "namespaces"
	CategoryContracts    = "contracts"
	CategoryEncumbrances = "encumbrances"
	CategoryLockedAssets = "lockedassets"
	CategorySignNodes    = "signnodes"
	CategoryPoas         = "poas"
)

// category binds one entry type to its slots in State and Snapshot.
type category[E collection.Entry[E]] struct {
	name string
	list func(*State) **collection.List[E]
	slot func(*Snapshot) **overlay.Overlay[E]
}

// categoryOps is the type-erased view of a category, used by the
// operations which walk all categories.
type categoryOps interface {
	Name() string
	present(s *Snapshot) bool
	commitNested(s *Snapshot)
	commitRoot(s *Snapshot, version int, height uint64, l overlay.ChangeListener)
	changed(s *Snapshot) int
	hash(st *State) (ledger.Bytes32, bool)
	freeze(st *State)
	clone(dst, src *State)
	save(st *State, prefix kv.Bucket, w kv.Putter) error
	load(st *State, prefix kv.Bucket, r kv.Store) error
}

var (
	balances = &category[*AddressEntry]{
		CategoryBalances,
		func(s *State) **collection.List[*AddressEntry] { return &s.balances },
		func(s *Snapshot) **overlay.Overlay[*AddressEntry] { return &s.balances },
	}
	namespaces = &category[*NamespaceEntry]{
		CategoryNamespaces,
		func(s *State) **collection.List[*NamespaceEntry] { return &s.namespaces },
		func(s *Snapshot) **overlay.Overlay[*NamespaceEntry] { return &s.namespaces },
	}
	contracts = &category[*ContractEntry]{
		CategoryContracts,
		func(s *State) **collection.List[*ContractEntry] { return &s.contracts },
		func(s *Snapshot) **overlay.Overlay[*ContractEntry] { return &s.contracts },
	}
	encumbrances = &category[*EncumbranceEntry]{
		CategoryEncumbrances,
		func(s *State) **collection.List[*EncumbranceEntry] { return &s.encumbrances },
		func(s *Snapshot) **overlay.Overlay[*EncumbranceEntry] { return &s.encumbrances },
	}
	lockedAssets = &category[*LockedAssetEntry]{
		CategoryLockedAssets,
		func(s *State) **collection.List[*LockedAssetEntry] { return &s.lockedAssets },
		func(s *Snapshot) **overlay.Overlay[*LockedAssetEntry] { return &s.lockedAssets },
	}
	signNodes = &category[*SignNodeEntry]{
		CategorySignNodes,
		func(s *State) **collection.List[*SignNodeEntry] { return &s.signNodes },
		func(s *Snapshot) **overlay.Overlay[*SignNodeEntry] { return &s.signNodes },
	}
	poas = &category[*PoaEntry]{
		CategoryPoas,
		func(s *State) **collection.List[*PoaEntry] { return &s.poas },
		func(s *Snapshot) **overlay.Overlay[*PoaEntry] { return &s.poas },
	}

	// categories in hashing and persistence order.
	categories = []categoryOps{balances, namespaces, contracts, encumbrances, lockedAssets, signNodes, poas}
)

func (c *category[E]) Name() string { return c.name }

// overlay returns the snapshot's overlay of the category, creating it on first access.
func (c *category[E]) overlay(s *Snapshot) *overlay.Overlay[E] {
	p := c.slot(s)
	if *p == nil {
		*p = c.newOverlay(s)
	}
	return *p
}

func (c *category[E]) newOverlay(s *Snapshot) *overlay.Overlay[E] {
	if s.parent == nil {
		if l := *c.list(s.root); l != nil {
			return overlay.NewDurable[E](c.name, l)
		}
		return overlay.NewInitial[E](c.name)
	}
	if c.present(s.parent) {
		return overlay.NewNested(c.overlay(s.parent))
	}
	return overlay.NewInitial[E](c.name)
}

// present reports whether the category exists as seen from s.
func (c *category[E]) present(s *Snapshot) bool {
	if *c.slot(s) != nil {
		return true
	}
	if s.parent == nil {
		return *c.list(s.root) != nil
	}
	return c.present(s.parent)
}

// commitNested flushes the child's overlay into its parent. A category the
// parent has never seen is handed over whole when it nets an insert.
func (c *category[E]) commitNested(s *Snapshot) {
	p := c.slot(s)
	ov := *p
	if ov == nil {
		return
	}
	*p = nil
	switch {
	case !ov.IsInitial():
		ov.Commit(0, 0, nil)
	case !ov.HasInsert():
	default:
		target := c.slot(s.parent)
		if *target == nil {
			*target = ov
			return
		}
		ov.MergeInto(*target)
	}
}

// commitRoot performs the durable writes of a root snapshot.
func (c *category[E]) commitRoot(s *Snapshot, version int, height uint64, l overlay.ChangeListener) {
	p := c.slot(s)
	ov := *p
	if ov == nil {
		return
	}
	*p = nil
	switch {
	case !ov.IsInitial():
		ov.Commit(version, height, l)
	case ov.HasInsert():
		list := collection.NewList[E]()
		ov.WriteTo(list, version, height, l)
		*c.list(s.root) = list
	}
}

func (c *category[E]) changed(s *Snapshot) int {
	if ov := *c.slot(s); ov != nil {
		return ov.ChangedCount()
	}
	return 0
}

func (c *category[E]) hash(st *State) (ledger.Bytes32, bool) {
	l := *c.list(st)
	if l == nil {
		return ledger.Bytes32{}, false
	}
	return l.Hash(), true
}

func (c *category[E]) freeze(st *State) {
	if l := *c.list(st); l != nil {
		l.Freeze()
	}
}

func (c *category[E]) clone(dst, src *State) {
	if l := *c.list(src); l != nil {
		*c.list(dst) = l.Clone()
	}
}

// save writes every entry under the category bucket, keyed by its index
// so that loading restores the list layout.
func (c *category[E]) save(st *State, prefix kv.Bucket, w kv.Putter) error {
	l := *c.list(st)
	if l == nil {
		return nil
	}
	putter := c.bucket(prefix).NewPutter(w)
	var (
		i   uint32
		err error
	)
	l.Iterate(func(e E) bool {
		var data []byte
		if data, err = rlp.EncodeToBytes(e); err != nil {
			return false
		}
		err = putter.Put(binary.BigEndian.AppendUint32(nil, i), snappy.Encode(nil, data))
		i++
		return err == nil
	})
	return errors.Wrapf(err, "save %v", c.name)
}

func (c *category[E]) load(st *State, prefix kv.Bucket, r kv.Store) error {
	it := c.bucket(prefix).Iterate(r)
	defer it.Release()

	var list *collection.List[E]
	for it.Next() {
		data, err := snappy.Decode(nil, it.Value())
		if err != nil {
			return errors.Wrapf(err, "load %v", c.name)
		}
		var e E
		if err := rlp.DecodeBytes(data, &e); err != nil {
			return errors.Wrapf(err, "load %v", c.name)
		}
		if list == nil {
			list = collection.NewList[E]()
		}
		list.Update(e)
	}
	if err := it.Error(); err != nil {
		return errors.Wrapf(err, "load %v", c.name)
	}
	*c.list(st) = list
	return nil
}

func (c *category[E]) bucket(prefix kv.Bucket) kv.Bucket {
	return prefix + kv.Bucket(c.name+"/")
}
