// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type item struct {
	Name   string
	Value  uint64
	Height uint64
}

func (i *item) Key() string              { return i.Name }
func (i *item) UpdateHeight() uint64     { return i.Height }
func (i *item) SetUpdateHeight(h uint64) { i.Height = h }
func (i *item) Copy() *item              { c := *i; return &c }

var _ Mutable[*item] = (*List[*item])(nil)

func TestListUpdateRemove(t *testing.T) {
	l := NewList[*item]()
	assert.True(t, l.Hash().IsZero())

	l.Update(&item{Name: "a", Value: 1})
	l.Update(&item{Name: "b", Value: 2})
	l.Update(&item{Name: "c", Value: 3})
	assert.Equal(t, []string{"a", "b", "c"}, l.Keys())

	l.Update(&item{Name: "b", Value: 20})
	got, ok := l.Find("b")
	assert.True(t, ok)
	assert.Equal(t, uint64(20), got.Value)
	assert.Equal(t, 3, l.Len())

	// the last entry fills the hole
	assert.True(t, l.Remove("a"))
	assert.Equal(t, []string{"c", "b"}, l.Keys())
	assert.False(t, l.Has("a"))
	assert.False(t, l.Remove("a"))

	assert.True(t, l.Remove("b"))
	assert.Equal(t, []string{"c"}, l.Keys())
}

func TestListHashDependsOnReplayOrder(t *testing.T) {
	build := func(ops func(l *List[*item])) *List[*item] {
		l := NewList[*item]()
		for _, n := range []string{"a", "b", "c"} {
			l.Update(&item{Name: n})
		}
		ops(l)
		return l
	}

	addThenRemove := build(func(l *List[*item]) {
		l.Update(&item{Name: "d"})
		l.Remove("a")
	})
	removeThenAdd := build(func(l *List[*item]) {
		l.Remove("a")
		l.Update(&item{Name: "d"})
	})

	// same key set, different layout
	assert.ElementsMatch(t, addThenRemove.Keys(), removeThenAdd.Keys())
	assert.NotEqual(t, addThenRemove.Hash(), removeThenAdd.Hash())

	again := build(func(l *List[*item]) {
		l.Update(&item{Name: "d"})
		l.Remove("a")
	})
	assert.Equal(t, addThenRemove.Hash(), again.Hash())
}

func TestListHashTracksValues(t *testing.T) {
	l := NewList[*item]()
	l.Update(&item{Name: "a", Value: 1})
	h1 := l.Hash()

	l.Update(&item{Name: "a", Value: 2})
	h2 := l.Hash()
	assert.NotEqual(t, h1, h2)

	l.Update(&item{Name: "a", Value: 1})
	assert.Equal(t, h1, l.Hash())
}

func TestListFreezeAndClone(t *testing.T) {
	l := NewList[*item]()
	l.Update(&item{Name: "a"})
	l.Freeze()
	assert.True(t, l.Frozen())
	assert.PanicsWithValue(t, ErrFrozen, func() { l.Update(&item{Name: "b"}) })
	assert.PanicsWithValue(t, ErrFrozen, func() { l.Remove("a") })

	c := l.Clone()
	assert.False(t, c.Frozen())
	c.Update(&item{Name: "b"})
	assert.Equal(t, 2, c.Len())
	assert.Equal(t, 1, l.Len())
	assert.NotEqual(t, l.Hash(), c.Hash())
}

func TestListIterate(t *testing.T) {
	l := NewList[*item]()
	for _, n := range []string{"a", "b", "c"} {
		l.Update(&item{Name: n})
	}
	var seen []string
	l.Iterate(func(i *item) bool {
		seen = append(seen, i.Name)
		return len(seen) < 2
	})
	assert.Equal(t, []string{"a", "b"}, seen)
}
