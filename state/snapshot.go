// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/pkg/errors"

	"github.com/ledgerd/ledgerd/overlay"
	"github.com/ledgerd/ledgerd/tx"
)

// LifecycleEvent names a contract lifecycle transition recorded for audit.
type LifecycleEvent string

const (
	LifecycleNew      LifecycleEvent = "new"
	LifecycleComplete LifecycleEvent = "complete"
	LifecycleExpire   LifecycleEvent = "expire"
	LifecycleCancel   LifecycleEvent = "cancel"
	LifecycleDelete   LifecycleEvent = "delete"
)

// ContractEvent is an event raised for a contract while applying
// transactions, delivered once the block's transactions are done.
type ContractEvent struct {
	Address  string
	Function string
	Name     string
	Data     string
}

type eventID struct {
	address string
	name    string
}

// Snapshot is a mutable copy-on-write view of a State, or of another Snapshot.
// The parent is tagged: a root snapshot has no parent and writes land in the
// State on FinalizeBlock; a nested snapshot merges into its parent on Commit.
//
// A snapshot is owned by one goroutine.
type Snapshot struct {
	root     *State
	parent   *Snapshot
	listener overlay.ChangeListener

	balances     *overlay.Overlay[*AddressEntry]
	namespaces   *overlay.Overlay[*NamespaceEntry]
	contracts    *overlay.Overlay[*ContractEntry]
	encumbrances *overlay.Overlay[*EncumbranceEntry]
	lockedAssets *overlay.Overlay[*LockedAssetEntry]
	signNodes    *overlay.Overlay[*SignNodeEntry]
	poas         *overlay.Overlay[*PoaEntry]

	config                map[string]string
	xchains               map[uint32]*XChainDetails
	removedXChains        map[uint32]struct{}
	privilegedKeys        map[string]*PrivilegedKey
	removedPrivilegedKeys map[string]struct{}
	addedTimeEvents       map[timeEvent]struct{}
	removedTimeEvents     map[timeEvent]struct{}

	effectiveTxs    tx.Transactions
	lifecycleEvents map[LifecycleEvent]map[string]struct{}
	contractUsers   map[string]map[string]struct{}
	contractEvents  map[eventID]*ContractEvent

	corrupted        bool
	corruptedMessage string
}

// NewSnapshot creates a root snapshot over st. Durable writes made by
// FinalizeBlock are reported to the listeners.
func NewSnapshot(st *State, listeners ...overlay.ChangeListener) *Snapshot {
	s := &Snapshot{root: st, listener: multiListener(append([]overlay.ChangeListener{MetricsListener{}}, listeners...))}
	s.reset()
	return s
}

// CreateSnapshot creates a nested snapshot over s.
func (s *Snapshot) CreateSnapshot() *Snapshot {
	c := &Snapshot{root: s.root, parent: s}
	c.reset()
	return c
}

func (s *Snapshot) reset() {
	s.balances, s.namespaces, s.contracts, s.encumbrances = nil, nil, nil, nil
	s.lockedAssets, s.signNodes, s.poas = nil, nil, nil

	s.config = make(map[string]string)
	s.xchains = make(map[uint32]*XChainDetails)
	s.removedXChains = make(map[uint32]struct{})
	s.privilegedKeys = make(map[string]*PrivilegedKey)
	s.removedPrivilegedKeys = make(map[string]struct{})
	s.addedTimeEvents = make(map[timeEvent]struct{})
	s.removedTimeEvents = make(map[timeEvent]struct{})

	s.effectiveTxs = nil
	s.lifecycleEvents = make(map[LifecycleEvent]map[string]struct{})
	s.contractUsers = make(map[string]map[string]struct{})
	s.contractEvents = make(map[eventID]*ContractEvent)

	s.corrupted = false
	s.corruptedMessage = ""
}

// IsRoot reports whether s wraps a State directly.
func (s *Snapshot) IsRoot() bool { return s.parent == nil }

// State returns the state at the bottom of the snapshot chain.
func (s *Snapshot) State() *State { return s.root }

func (s *Snapshot) ChainID() uint32   { return s.root.chainID }
func (s *Snapshot) Version() uint64   { return s.root.version }
func (s *Snapshot) Height() uint64    { return s.root.height }
func (s *Snapshot) Timestamp() uint64 { return s.root.timestamp }

// Balances returns the address overlay.
func (s *Snapshot) Balances() *overlay.Overlay[*AddressEntry] { return balances.overlay(s) }

func (s *Snapshot) Namespaces() *overlay.Overlay[*NamespaceEntry]     { return namespaces.overlay(s) }
func (s *Snapshot) Contracts() *overlay.Overlay[*ContractEntry]       { return contracts.overlay(s) }
func (s *Snapshot) Encumbrances() *overlay.Overlay[*EncumbranceEntry] { return encumbrances.overlay(s) }
func (s *Snapshot) LockedAssets() *overlay.Overlay[*LockedAssetEntry] { return lockedAssets.overlay(s) }
func (s *Snapshot) SignNodes() *overlay.Overlay[*SignNodeEntry]       { return signNodes.overlay(s) }
func (s *Snapshot) Poas() *overlay.Overlay[*PoaEntry]                 { return poas.overlay(s) }

// HasCategory reports whether the named category exists as seen from s.
func (s *Snapshot) HasCategory(name string) bool {
	for _, c := range categories {
		if c.Name() == name {
			return c.present(s)
		}
	}
	return false
}

// ChangedCount returns the number of keys changed in this snapshot's overlays.
func (s *Snapshot) ChangedCount() int {
	n := 0
	for _, c := range categories {
		n += c.changed(s)
	}
	return n
}

// ConfigValue implements ConfigGetter.
func (s *Snapshot) ConfigValue(key string) (string, bool) {
	if v, ok := s.config[key]; ok {
		return v, true
	}
	if s.parent == nil {
		return s.root.ConfigValue(key)
	}
	return s.parent.ConfigValue(key)
}

// SetConfigValue sets a raw configuration value.
func (s *Snapshot) SetConfigValue(key, value string) {
	s.config[key] = value
}

// Config returns the typed configuration seen from s.
func (s *Snapshot) Config() Config { return LoadConfig(s) }

// XChain returns the details of a connected chain. The value must not be mutated.
func (s *Snapshot) XChain(chainID uint32) (*XChainDetails, bool) {
	if _, ok := s.removedXChains[chainID]; ok {
		return nil, false
	}
	if d, ok := s.xchains[chainID]; ok {
		return d, true
	}
	if s.parent == nil {
		return s.root.XChain(chainID)
	}
	return s.parent.XChain(chainID)
}

// SetXChain stores a copy of d.
func (s *Snapshot) SetXChain(d *XChainDetails) {
	delete(s.removedXChains, d.ChainID)
	s.xchains[d.ChainID] = d.Copy()
}

// RemoveXChain removes a connected chain.
func (s *Snapshot) RemoveXChain(chainID uint32) {
	delete(s.xchains, chainID)
	s.removedXChains[chainID] = struct{}{}
}

// PrivilegedKey looks a key up by public key, then by name.
func (s *Snapshot) PrivilegedKey(keyOrName string) (*PrivilegedKey, bool) {
	if k, ok := s.privilegedKeys[keyOrName]; ok {
		return k, true
	}
	for _, k := range s.privilegedKeys {
		if k.Name == keyOrName {
			return k, true
		}
	}
	var (
		k  *PrivilegedKey
		ok bool
	)
	if s.parent == nil {
		k, ok = s.root.PrivilegedKey(keyOrName)
	} else {
		k, ok = s.parent.PrivilegedKey(keyOrName)
	}
	if !ok {
		return nil, false
	}
	if _, removed := s.removedPrivilegedKeys[k.Key]; removed {
		return nil, false
	}
	return k, true
}

// SetPrivilegedKey stores a copy of k.
func (s *Snapshot) SetPrivilegedKey(k *PrivilegedKey) {
	delete(s.removedPrivilegedKeys, k.Key)
	s.privilegedKeys[k.Key] = k.Copy()
}

// RemovePrivilegedKey removes the key with the given public key.
func (s *Snapshot) RemovePrivilegedKey(key string) {
	delete(s.privilegedKeys, key)
	s.removedPrivilegedKeys[key] = struct{}{}
}

// AddEffectiveTx records a transaction synthesized while processing the block.
func (s *Snapshot) AddEffectiveTx(t *tx.Transaction) {
	if t != nil {
		s.effectiveTxs = append(s.effectiveTxs, t)
	}
}

// EffectiveTxs returns the synthesized transactions in the order they were recorded.
func (s *Snapshot) EffectiveTxs() tx.Transactions {
	return slices.Clone(s.effectiveTxs)
}

// AddLifecycleEvent records that event fired for contract, affecting users.
func (s *Snapshot) AddLifecycleEvent(event LifecycleEvent, contract string, users ...string) {
	addToSet(s.lifecycleEvents, event, contract)
	if _, ok := s.contractUsers[contract]; !ok {
		s.contractUsers[contract] = make(map[string]struct{})
	}
	for _, u := range users {
		s.contractUsers[contract][u] = struct{}{}
	}
}

// LifecycleEvents returns the sorted contract addresses per fired event.
func (s *Snapshot) LifecycleEvents() map[LifecycleEvent][]string {
	out := make(map[LifecycleEvent][]string, len(s.lifecycleEvents))
	for ev, set := range s.lifecycleEvents {
		out[ev] = slices.Sorted(maps.Keys(set))
	}
	return out
}

// ContractUsers returns the sorted affected users per contract.
func (s *Snapshot) ContractUsers() map[string][]string {
	out := make(map[string][]string, len(s.contractUsers))
	for c, set := range s.contractUsers {
		out[c] = slices.Sorted(maps.Keys(set))
	}
	return out
}

// AddContractEvent queues ev for delivery after the block's transactions.
// A later event with the same address and name replaces an earlier one.
func (s *Snapshot) AddContractEvent(ev ContractEvent) {
	s.contractEvents[eventID{ev.Address, ev.Name}] = &ev
}

// ContractEvents returns the queued events ordered by address then name.
func (s *Snapshot) ContractEvents() []ContractEvent {
	ids := slices.SortedFunc(maps.Keys(s.contractEvents), func(a, b eventID) int {
		if c := strings.Compare(a.address, b.address); c != 0 {
			return c
		}
		return strings.Compare(a.name, b.name)
	})
	out := make([]ContractEvent, len(ids))
	for i, id := range ids {
		out[i] = *s.contractEvents[id]
	}
	return out
}

// SetCorrupted marks the snapshot as unusable. Later commits of it fail.
func (s *Snapshot) SetCorrupted(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if !s.corrupted {
		logger.Warn("snapshot corrupted", "height", s.root.height, "msg", msg)
	}
	s.corrupted = true
	s.corruptedMessage = msg
}

// IsCorrupted reports whether the snapshot was marked corrupted.
func (s *Snapshot) IsCorrupted() bool { return s.corrupted }

// CorruptedMessage returns the message given to SetCorrupted.
func (s *Snapshot) CorruptedMessage() string { return s.corruptedMessage }

// Commit makes the changes of a nested snapshot visible in its parent and
// empties it. Committing a corrupted snapshot fails and corrupts the parent.
// On a root snapshot Commit only checks that the changes could be
// finalized: durable writes happen in FinalizeBlock.
func (s *Snapshot) Commit() error {
	if s.corrupted {
		metricCommitCounter().AddWithLabel(1, map[string]string{"result": "corrupted"})
		if s.parent != nil {
			s.parent.SetCorrupted("%s", s.corruptedMessage)
		}
		return errors.WithMessage(ErrCorrupted, s.corruptedMessage)
	}
	if s.parent == nil {
		if s.root.finalized {
			return ErrFinalized
		}
		return nil
	}

	for _, c := range categories {
		c.commitNested(s)
	}
	p := s.parent
	maps.Copy(p.config, s.config)
	for id := range s.removedXChains {
		p.RemoveXChain(id)
	}
	for _, d := range s.xchains {
		delete(p.removedXChains, d.ChainID)
		p.xchains[d.ChainID] = d
	}
	for k := range s.removedPrivilegedKeys {
		p.RemovePrivilegedKey(k)
	}
	for _, k := range s.privilegedKeys {
		delete(p.removedPrivilegedKeys, k.Key)
		p.privilegedKeys[k.Key] = k
	}
	for e := range s.removedTimeEvents {
		p.removeTimeEvent(e)
	}
	for e := range s.addedTimeEvents {
		p.addTimeEvent(e)
	}
	p.effectiveTxs = append(p.effectiveTxs, s.effectiveTxs...)
	for ev, set := range s.lifecycleEvents {
		for c := range set {
			addToSet(p.lifecycleEvents, ev, c)
		}
	}
	for c, set := range s.contractUsers {
		if _, ok := p.contractUsers[c]; !ok {
			p.contractUsers[c] = make(map[string]struct{})
		}
		maps.Copy(p.contractUsers[c], set)
	}
	maps.Copy(p.contractEvents, s.contractEvents)

	s.reset()
	metricCommitCounter().AddWithLabel(1, map[string]string{"result": "ok"})
	return nil
}

// CommitIfNotCorrupt commits and returns "" on success, or a diagnostic
// message. It never panics.
func (s *Snapshot) CommitIfNotCorrupt() (msg string) {
	if s.corrupted {
		if s.parent != nil {
			s.parent.SetCorrupted("%s", s.corruptedMessage)
		}
		return s.corruptedMessage
	}
	defer func() {
		if r := recover(); r != nil {
			msg = fmt.Sprintf("commit failed: %v", r)
			logger.Error("snapshot commit panicked", "err", r)
		}
	}()
	if err := s.Commit(); err != nil {
		return err.Error()
	}
	return ""
}

// FinalizeBlock writes the root snapshot into its State, then advances the
// State past block b and makes it immutable.
func (s *Snapshot) FinalizeBlock(b BlockInfo) error {
	if s.parent != nil {
		return ErrNotRoot
	}
	if err := s.Commit(); err != nil {
		return err
	}

	st := s.root
	height := st.height
	bl, _ := s.listener.(BlockListener)
	if bl != nil {
		bl.StartBlock(height)
	}
	for _, c := range categories {
		c.commitRoot(s, int(st.version), height, s.listener)
	}
	maps.Copy(st.config, s.config)
	for id := range s.removedXChains {
		delete(st.xchains, id)
	}
	maps.Copy(st.xchains, s.xchains)
	for k := range s.removedPrivilegedKeys {
		delete(st.privilegedKeys, k)
	}
	maps.Copy(st.privilegedKeys, s.privilegedKeys)
	for e := range s.removedTimeEvents {
		delete(st.timeEvents, e)
	}
	maps.Copy(st.timeEvents, s.addedTimeEvents)
	s.reset()

	if err := st.finalize(b); err != nil {
		if bl != nil {
			bl.FailBlock(height, err)
		}
		return err
	}
	if bl != nil {
		bl.CompleteBlock(height)
	}
	logger.Debug("finalized state", "height", st.height, "hash", st.hash.AbbrevString())
	return nil
}

func addToSet[K comparable](m map[K]map[string]struct{}, k K, v string) {
	set, ok := m[k]
	if !ok {
		set = make(map[string]struct{})
		m[k] = set
	}
	set[v] = struct{}{}
}
