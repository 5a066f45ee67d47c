// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package overlay implements copy-on-write views over keyed collections.
//
// An overlay keeps two disjoint sets: unchanged, a cache of values read from
// beneath, and changes, every key added, deleted or read for write. A key moves
// from unchanged to changes only through FindAndMarkUpdated, which clones it.
package overlay

import (
	"slices"
	"sort"

	"github.com/ledgerd/ledgerd/collection"
)

type source byte

const (
	durable source = iota // over a collection held by the state
	nested                // over an overlay owned by a parent snapshot
	initial               // over a collection that does not exist yet
)

func (s source) String() string {
	switch s {
	case durable:
		return "durable"
	case nested:
		return "nested"
	default:
		return "initial"
	}
}

// Overlay is a transactional copy-on-write view of one category.
type Overlay[E collection.Entry[E]] struct {
	category  string
	src       source
	base      collection.Mutable[E]
	parent    *Overlay[E]
	unchanged map[string]E
	changes   changeLog[E]
}

// NewDurable creates an overlay whose commit writes into m.
func NewDurable[E collection.Entry[E]](category string, m collection.Mutable[E]) *Overlay[E] {
	return &Overlay[E]{category: category, src: durable, base: m, unchanged: make(map[string]E)}
}

// NewNested creates an overlay whose commit merges into parent.
func NewNested[E collection.Entry[E]](parent *Overlay[E]) *Overlay[E] {
	return &Overlay[E]{category: parent.category, src: nested, parent: parent, unchanged: make(map[string]E)}
}

// NewInitial creates an overlay for a collection that does not exist yet.
func NewInitial[E collection.Entry[E]](category string) *Overlay[E] {
	return &Overlay[E]{category: category, src: initial, unchanged: make(map[string]E)}
}

// Category returns the name of the category the overlay covers.
func (o *Overlay[E]) Category() string { return o.category }

// IsInitial reports whether the overlay stands for a not yet created collection.
func (o *Overlay[E]) IsInitial() bool { return o.src == initial }

func (o *Overlay[E]) findBelow(key string) (E, bool) {
	switch o.src {
	case durable:
		return o.base.Find(key)
	case nested:
		return o.parent.Find(key)
	}
	var zero E
	return zero, false
}

// Find returns the current value of key. The value must not be mutated.
func (o *Overlay[E]) Find(key string) (E, bool) {
	var zero E
	if c, ok := o.changes.get(key); ok {
		if c.IsDeleted {
			return zero, false
		}
		return c.Value, true
	}
	if v, ok := o.unchanged[key]; ok {
		return v, true
	}
	if v, ok := o.findBelow(key); ok {
		o.unchanged[key] = v
		return v, true
	}
	return zero, false
}

// FindAndMarkUpdated returns a private, mutable copy of key's value.
// Mutations of the returned value are part of the overlay's changes.
func (o *Overlay[E]) FindAndMarkUpdated(key string) (E, bool) {
	var zero E
	if c, ok := o.changes.get(key); ok {
		if c.IsDeleted {
			return zero, false
		}
		return c.Value, true
	}
	v, ok := o.unchanged[key]
	if ok {
		delete(o.unchanged, key)
	} else if v, ok = o.findBelow(key); !ok {
		return zero, false
	}
	return o.changes.put(Change[E]{Key: key, Value: v.Copy()}).Value, true
}

// ItemExists reports whether key is visible through the overlay.
func (o *Overlay[E]) ItemExists(key string) bool {
	if c, ok := o.changes.get(key); ok {
		return !c.IsDeleted
	}
	if _, ok := o.unchanged[key]; ok {
		return true
	}
	switch o.src {
	case durable:
		return o.base.Has(key)
	case nested:
		return o.parent.ItemExists(key)
	}
	return false
}

// Add inserts e. It returns false, changing nothing, if the key is already present.
// Adding a deleted key revives it with e as value.
func (o *Overlay[E]) Add(e E) bool {
	key := e.Key()
	if c, ok := o.changes.get(key); ok {
		if !c.IsDeleted {
			return false
		}
		o.changes.put(Change[E]{Key: key, IsNew: c.IsNew, Value: e})
		return true
	}
	if o.ItemExists(key) {
		return false
	}
	o.changes.put(Change[E]{Key: key, IsNew: true, Value: e})
	return true
}

// Delete removes key. It returns false if the key is absent or already deleted.
func (o *Overlay[E]) Delete(key string) bool {
	if c, ok := o.changes.get(key); ok {
		if c.IsDeleted {
			return false
		}
		o.changes.put(Change[E]{Key: key, IsNew: c.IsNew, IsDeleted: true, Value: c.Value})
		return true
	}
	v, ok := o.unchanged[key]
	if ok {
		delete(o.unchanged, key)
	} else if v, ok = o.findBelow(key); !ok {
		return false
	}
	o.changes.put(Change[E]{Key: key, IsDeleted: true, Value: v})
	return true
}

// HasInsert reports whether at least one key would be inserted on commit.
func (o *Overlay[E]) HasInsert() bool {
	found := false
	o.changes.live(func(c *Change[E]) {
		found = found || (c.IsNew && !c.IsDeleted)
	})
	return found
}

// ChangedCount returns the number of keys with pending changes.
func (o *Overlay[E]) ChangedCount() int {
	return o.changes.len()
}

// Changes returns copies of the live change records in sequence order.
func (o *Overlay[E]) Changes() []Change[E] {
	out := make([]Change[E], 0, o.changes.len())
	o.changes.live(func(c *Change[E]) {
		out = append(out, *c)
	})
	return out
}

// UpdatedKeys returns the sorted keys with pending changes.
func (o *Overlay[E]) UpdatedKeys() []string {
	keys := make([]string, 0, o.changes.len())
	for k := range o.changes.index {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Reset discards all overlay state.
func (o *Overlay[E]) Reset() {
	o.unchanged = make(map[string]E)
	o.changes.reset()
}

// sink receives the replayed changes of a commit.
type sink[E any] interface {
	update(c *Change[E])
	add(c *Change[E])
	remove(c *Change[E])
}

// replay applies in-place updates first, then structural changes in sequence order.
// Keys both inserted and deleted within the overlay's lifetime are skipped.
func (o *Overlay[E]) replay(s sink[E]) {
	var structural []*Change[E]
	o.changes.live(func(c *Change[E]) {
		switch {
		case c.IsNew && c.IsDeleted:
		case c.structural():
			structural = append(structural, c)
		default:
			s.update(c)
		}
	})
	slices.SortFunc(structural, func(a, b *Change[E]) int {
		if a.Seq < b.Seq {
			return -1
		}
		if a.Seq > b.Seq {
			return 1
		}
		return 0
	})
	for _, c := range structural {
		if c.IsDeleted {
			s.remove(c)
		} else {
			s.add(c)
		}
	}
	o.Reset()
}

// Commit flushes the changes onto what the overlay wraps and resets it.
// A durable overlay writes into its collection, notifying l; a nested overlay
// merges into its parent. Committing an initial overlay is a programming error,
// use WriteTo or MergeInto instead.
func (o *Overlay[E]) Commit(version int, height uint64, l ChangeListener) {
	switch o.src {
	case durable:
		o.WriteTo(o.base, version, height, l)
	case nested:
		o.MergeInto(o.parent)
	default:
		panic("overlay: commit of initial overlay " + o.category)
	}
}

// WriteTo flushes the changes into m, stamping written entries with height.
func (o *Overlay[E]) WriteTo(m collection.Mutable[E], version int, height uint64, l ChangeListener) {
	if l == nil {
		l = NoopListener{}
	}
	o.replay(&collectionSink[E]{o.category, m, version, height, l})
}

// MergeInto hands the changes to another overlay as if they were made there.
func (o *Overlay[E]) MergeInto(target *Overlay[E]) {
	o.replay(&overlaySink[E]{target})
}

type collectionSink[E collection.Entry[E]] struct {
	category string
	m        collection.Mutable[E]
	version  int
	height   uint64
	l        ChangeListener
}

func (s *collectionSink[E]) update(c *Change[E]) {
	c.Value.SetUpdateHeight(s.height)
	s.m.Update(c.Value)
	s.l.OnChange(s.category, Updated, c.Key, s.version, s.height)
}

func (s *collectionSink[E]) add(c *Change[E]) {
	c.Value.SetUpdateHeight(s.height)
	s.m.Update(c.Value)
	s.l.OnChange(s.category, Added, c.Key, s.version, s.height)
}

func (s *collectionSink[E]) remove(c *Change[E]) {
	if s.m.Remove(c.Key) {
		s.l.OnChange(s.category, Removed, c.Key, s.version, s.height)
	}
}

type overlaySink[E collection.Entry[E]] struct {
	target *Overlay[E]
}

func (s *overlaySink[E]) update(c *Change[E]) {
	t := s.target
	if cur, ok := t.changes.get(c.Key); ok {
		cur.Value = c.Value
		return
	}
	delete(t.unchanged, c.Key)
	t.changes.put(Change[E]{Key: c.Key, Value: c.Value})
}

func (s *overlaySink[E]) add(c *Change[E]) {
	t := s.target
	isNew := true
	if cur, ok := t.changes.get(c.Key); ok {
		isNew = cur.IsNew
	}
	delete(t.unchanged, c.Key)
	t.changes.put(Change[E]{Key: c.Key, IsNew: isNew, Value: c.Value})
}

func (s *overlaySink[E]) remove(c *Change[E]) {
	t := s.target
	isNew := false
	if cur, ok := t.changes.get(c.Key); ok {
		isNew = cur.IsNew
	}
	delete(t.unchanged, c.Key)
	t.changes.put(Change[E]{Key: c.Key, IsNew: isNew, IsDeleted: true, Value: c.Value})
}
