// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package overlay

import (
	"fmt"
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/collection"
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

func newBase(names ...string) *collection.List[*item] {
	l := collection.NewList[*item]()
	for i, n := range names {
		l.Update(&item{Name: n, Value: uint64(i + 1)})
	}
	return l
}

func TestFindCachesAndMarkUpdatedClones(t *testing.T) {
	base := newBase("a", "b")
	o := NewDurable("items", base)

	v, ok := o.Find("a")
	require.True(t, ok)
	assert.Equal(t, uint64(1), v.Value)
	assert.Contains(t, o.unchanged, "a")

	w, ok := o.FindAndMarkUpdated("a")
	require.True(t, ok)
	assert.NotContains(t, o.unchanged, "a", "a key lives in one map only")
	w.Value = 100

	orig, _ := base.Find("a")
	assert.Equal(t, uint64(1), orig.Value, "base untouched before commit")

	again, _ := o.FindAndMarkUpdated("a")
	assert.Same(t, w, again)

	_, ok = o.Find("zz")
	assert.False(t, ok)
	_, ok = o.FindAndMarkUpdated("zz")
	assert.False(t, ok)
}

func TestAddDeleteIdempotence(t *testing.T) {
	o := NewDurable("items", newBase("a"))

	assert.False(t, o.Add(&item{Name: "a", Value: 9}), "present key")
	v, _ := o.Find("a")
	assert.Equal(t, uint64(1), v.Value)

	assert.False(t, o.Delete("missing"))
	assert.True(t, o.Delete("a"))
	assert.False(t, o.Delete("a"), "already deleted")
	assert.False(t, o.ItemExists("a"))

	// reviving a deleted key overwrites it and bumps its sequence
	before, _ := o.changes.get("a")
	seq := before.Seq
	assert.True(t, o.Add(&item{Name: "a", Value: 7}))
	after, _ := o.changes.get("a")
	assert.Greater(t, after.Seq, seq)
	assert.False(t, after.IsNew)
	v, _ = o.Find("a")
	assert.Equal(t, uint64(7), v.Value)
}

func TestInsertThenDeleteNetsZero(t *testing.T) {
	base := newBase("a")
	h := base.Hash()
	o := NewDurable("items", base)

	var seen []string
	l := ListenerFunc(func(_ string, kind ChangeKind, key string, _ int, _ uint64) {
		seen = append(seen, kind.String()+":"+key)
	})

	assert.True(t, o.Add(&item{Name: "x"}))
	assert.True(t, o.Delete("x"))
	assert.False(t, o.HasInsert())
	o.Commit(1, 5, l)

	assert.Empty(t, seen)
	assert.Equal(t, h, base.Hash())
	assert.Equal(t, 0, o.ChangedCount())
}

func TestCommitOrderAndListener(t *testing.T) {
	base := newBase("a", "b", "c")
	o := NewDurable("items", base)

	var seen []string
	l := ListenerFunc(func(cat string, kind ChangeKind, key string, version int, height uint64) {
		assert.Equal(t, "items", cat)
		assert.Equal(t, 2, version)
		assert.Equal(t, uint64(9), height)
		seen = append(seen, kind.String()+":"+key)
	})

	o.Add(&item{Name: "d"})
	o.Delete("a")
	w, _ := o.FindAndMarkUpdated("b")
	w.Value = 20
	o.Add(&item{Name: "e"})
	o.Commit(2, 9, l)

	assert.Equal(t, []string{"update:b", "add:d", "remove:a", "add:e"}, seen)
	// [a b c] +d -> [a b c d], -a -> [d b c], +e -> [d b c e]
	assert.Equal(t, []string{"d", "b", "c", "e"}, base.Keys())
	b, _ := base.Find("b")
	assert.Equal(t, uint64(20), b.Value)
	assert.Equal(t, uint64(9), b.Height)
	assert.Empty(t, o.Changes())
}

func TestNestedCommitIsAtomic(t *testing.T) {
	base := newBase("a", "b")
	parent := NewDurable("items", base)
	child := NewNested(parent)

	w, _ := child.FindAndMarkUpdated("a")
	w.Value = 50
	child.Add(&item{Name: "c"})
	child.Delete("b")

	// abandoned child leaves the parent unchanged
	assert.Equal(t, 0, parent.ChangedCount())
	v, _ := parent.Find("a")
	assert.Equal(t, uint64(1), v.Value)
	assert.True(t, parent.ItemExists("b"))

	child.Commit(0, 0, nil)
	assert.Equal(t, 0, child.ChangedCount())

	v, _ = parent.Find("a")
	assert.Equal(t, uint64(50), v.Value)
	assert.True(t, parent.ItemExists("c"))
	assert.False(t, parent.ItemExists("b"))
	assert.Equal(t, []string{"a", "b", "c"}, parent.UpdatedKeys())

	parent.Commit(0, 3, nil)
	assert.Equal(t, []string{"a", "c"}, base.Keys())
}

func TestNestedMergeKeepsInsertDeleteNetZero(t *testing.T) {
	base := newBase("a")
	parent := NewDurable("items", base)
	parent.Add(&item{Name: "n"})

	child := NewNested(parent)
	assert.True(t, child.ItemExists("n"))
	assert.True(t, child.Delete("n"))
	child.Commit(0, 0, nil)

	c, ok := parent.changes.get("n")
	require.True(t, ok)
	assert.True(t, c.IsNew)
	assert.True(t, c.IsDeleted)
	assert.False(t, parent.HasInsert())

	// revive through another child
	child = NewNested(parent)
	assert.True(t, child.Add(&item{Name: "n", Value: 3}))
	child.Commit(0, 0, nil)
	assert.True(t, parent.HasInsert())

	parent.Commit(0, 1, nil)
	assert.Equal(t, []string{"a", "n"}, base.Keys())
}

func TestInitialOverlay(t *testing.T) {
	o := NewInitial[*item]("fresh")
	assert.True(t, o.IsInitial())
	assert.False(t, o.ItemExists("a"))
	assert.False(t, o.HasInsert())

	assert.Panics(t, func() { o.Commit(0, 0, nil) })

	o.Add(&item{Name: "a"})
	o.Add(&item{Name: "b"})
	o.Delete("a")
	assert.True(t, o.HasInsert())

	m := collection.NewList[*item]()
	o.WriteTo(m, 1, 4, nil)
	assert.Equal(t, []string{"b"}, m.Keys())

	// merge into an existing overlay instead of materializing
	o.Add(&item{Name: "c"})
	target := NewDurable("fresh", m)
	o.MergeInto(target)
	assert.True(t, target.ItemExists("c"))
	assert.Equal(t, 0, o.ChangedCount())
}

type op struct {
	Kind  uint8
	Key   uint8
	Value uint64
}

// Distinct keys touched once each must commit exactly as if applied directly, in order.
func TestSequenceOrderedReplay(t *testing.T) {
	for seed := int64(0); seed < 50; seed++ {
		var ops []op
		fuzz.NewWithSeed(seed).NilChance(0).NumElements(5, 40).Fuzz(&ops)

		names := []string{"k0", "k1", "k2", "k3", "k4", "k5"}
		viaOverlay := newBase(names...)
		direct := newBase(names...)
		o := NewNested(NewDurable("items", viaOverlay))

		touched := map[string]bool{}
		for _, p := range ops {
			key := fmt.Sprintf("k%d", p.Key%16)
			if touched[key] {
				continue
			}
			touched[key] = true

			switch {
			case !direct.Has(key):
				o.Add(&item{Name: key, Value: p.Value})
				direct.Update(&item{Name: key, Value: p.Value})
			case p.Kind%2 == 0:
				o.Delete(key)
				direct.Remove(key)
			default:
				w, _ := o.FindAndMarkUpdated(key)
				w.Value = p.Value
				direct.Update(&item{Name: key, Value: p.Value})
			}
		}

		parent := o.parent
		o.Commit(0, 0, nil)
		parent.Commit(0, 0, nil)

		assert.Equal(t, direct.Keys(), viaOverlay.Keys(), "seed %d", seed)
		assert.Equal(t, direct.Hash(), viaOverlay.Hash(), "seed %d", seed)
	}
}
