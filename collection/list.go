// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collection

import (
	"io"

	"github.com/ledgerd/ledgerd/ledger"
)

// List is an indexed keyed collection.
//
// Entries live in a dense slice. Removing an entry moves the last one into the
// vacated slot, so the index layout, and thus the hash, depends on the order in
// which structural changes are applied.
type List[E Entry[E]] struct {
	entries []E
	leaves  []ledger.Bytes32 // cached entry hashes, zero when stale
	index   map[string]int
	frozen  bool
}

// NewList creates an empty list.
func NewList[E Entry[E]]() *List[E] {
	return &List[E]{index: make(map[string]int)}
}

// Find returns the entry stored under key. The entry must not be mutated.
func (l *List[E]) Find(key string) (E, bool) {
	if i, ok := l.index[key]; ok {
		return l.entries[i], true
	}
	var zero E
	return zero, false
}

// Has reports whether key is present.
func (l *List[E]) Has(key string) bool {
	_, ok := l.index[key]
	return ok
}

// Len returns the number of entries.
func (l *List[E]) Len() int {
	return len(l.entries)
}

// Iterate visits entries in index order.
func (l *List[E]) Iterate(fn func(E) bool) {
	for _, e := range l.entries {
		if !fn(e) {
			return
		}
	}
}

// Keys returns keys in index order.
func (l *List[E]) Keys() []string {
	keys := make([]string, 0, len(l.entries))
	for _, e := range l.entries {
		keys = append(keys, e.Key())
	}
	return keys
}

// Update implements Mutable.
func (l *List[E]) Update(e E) {
	l.checkWritable()
	key := e.Key()
	if i, ok := l.index[key]; ok {
		l.entries[i] = e
		l.leaves[i] = ledger.Bytes32{}
		return
	}
	l.index[key] = len(l.entries)
	l.entries = append(l.entries, e)
	l.leaves = append(l.leaves, ledger.Bytes32{})
}

// Remove implements Mutable.
func (l *List[E]) Remove(key string) bool {
	l.checkWritable()
	i, ok := l.index[key]
	if !ok {
		return false
	}
	last := len(l.entries) - 1
	if i != last {
		moved := l.entries[last]
		l.entries[i] = moved
		l.leaves[i] = l.leaves[last]
		l.index[moved.Key()] = i
	}
	var zero E
	l.entries[last] = zero
	l.entries = l.entries[:last]
	l.leaves = l.leaves[:last]
	delete(l.index, key)
	return true
}

// Hash returns the content hash, blake2b over entry hashes in index order.
// An empty list hashes to zero.
func (l *List[E]) Hash() ledger.Bytes32 {
	if len(l.entries) == 0 {
		return ledger.Bytes32{}
	}
	for i, e := range l.entries {
		if l.leaves[i].IsZero() {
			l.leaves[i] = ledger.RLPHash(e)
		}
	}
	return ledger.Blake2bFn(func(w io.Writer) {
		for _, leaf := range l.leaves {
			w.Write(leaf[:])
		}
	})
}

// Freeze makes the list immutable. Further writes panic with ErrFrozen.
// Entry hashes are computed before freezing so concurrent readers never write.
func (l *List[E]) Freeze() {
	l.Hash()
	l.frozen = true
}

// Frozen reports whether the list is frozen.
func (l *List[E]) Frozen() bool {
	return l.frozen
}

// Clone returns a writable list with the same layout. Entries are shared,
// which is safe as long as writers always replace entries instead of mutating them.
func (l *List[E]) Clone() *List[E] {
	c := &List[E]{
		entries: append([]E(nil), l.entries...),
		leaves:  append([]ledger.Bytes32(nil), l.leaves...),
		index:   make(map[string]int, len(l.index)),
	}
	for k, v := range l.index {
		c.index[k] = v
	}
	return c
}

func (l *List[E]) checkWritable() {
	if l.frozen {
		panic(ErrFrozen)
	}
}
