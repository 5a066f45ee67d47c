// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package overlay

// Change is the pending change of one key.
type Change[E any] struct {
	Key       string
	Seq       uint64 // monotonic within one overlay
	IsNew     bool   // the key did not exist beneath the overlay
	IsDeleted bool
	Value     E
}

func (c *Change[E]) structural() bool {
	return c.IsNew != c.IsDeleted
}

// changeLog is an append-only arena of changes. Re-sequencing a key appends a
// fresh record and repoints the index, leaving the old slot stale, so live
// records in arena order are always in sequence order.
type changeLog[E any] struct {
	arena []Change[E]
	index map[string]int
	seq   uint64
}

func (l *changeLog[E]) get(key string) (*Change[E], bool) {
	if pos, ok := l.index[key]; ok {
		return &l.arena[pos], true
	}
	return nil, false
}

// put records c under a new sequence number and returns the stored record.
func (l *changeLog[E]) put(c Change[E]) *Change[E] {
	if l.index == nil {
		l.index = make(map[string]int)
	}
	l.seq++
	c.Seq = l.seq
	l.index[c.Key] = len(l.arena)
	l.arena = append(l.arena, c)
	return &l.arena[len(l.arena)-1]
}

// live visits live records in sequence order.
func (l *changeLog[E]) live(fn func(c *Change[E])) {
	for pos := range l.arena {
		c := &l.arena[pos]
		if l.index[c.Key] == pos {
			fn(c)
		}
	}
}

func (l *changeLog[E]) len() int {
	return len(l.index)
}

func (l *changeLog[E]) reset() {
	l.arena = nil
	l.index = nil
}
