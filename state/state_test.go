// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerd/ledgerd/ledger"
	"github.com/ledgerd/ledgerd/lvldb"
	"github.com/ledgerd/ledgerd/overlay"
)

type blockInfo struct {
	hash ledger.Bytes32
	ts   uint64
}

func (b blockInfo) Hash() ledger.Bytes32 { return b.hash }
func (b blockInfo) Timestamp() uint64    { return b.ts }

func newBlock(n byte) blockInfo {
	return blockInfo{ledger.Bytes32{n}, 1000 + uint64(n)}
}

func credit(snap *Snapshot, address string, asset string, amount int64) {
	e, ok := snap.Balances().FindAndMarkUpdated(address)
	if !ok {
		e = NewAddressEntry(address)
		snap.Balances().Add(e)
	}
	e.AddBalance(asset, big.NewInt(amount))
}

// genesisState returns a finalized state holding account a with 10 units.
func genesisState(t *testing.T) *State {
	st := New(1, ledger.StateVersion)
	root := NewSnapshot(st)
	credit(root, "a", "ns|coin", 10)
	require.NoError(t, root.FinalizeBlock(newBlock(0)))
	return st
}

func TestAddressEntry(t *testing.T) {
	e := NewAddressEntry("a")
	e.SetNonce(5)
	e.SetNonce(3)
	assert.Equal(t, uint64(5), e.Nonce, "nonce never decreases")

	e.AddBalance("b", big.NewInt(10))
	e.AddBalance("a", big.NewInt(-7))
	assert.Equal(t, "-7", e.Balance("a").String())
	assert.Equal(t, "10", e.Balance("b").String())
	assert.Equal(t, "0", e.Balance("c").String())
	assert.Equal(t, "a", e.Holdings[0].Asset, "holdings stay sorted")

	c := e.Copy()
	c.AddBalance("b", big.NewInt(1))
	assert.Equal(t, "10", e.Balance("b").String(), "copy shares no memory")

	data, err := rlp.EncodeToBytes(e)
	require.NoError(t, err)
	var dec AddressEntry
	require.NoError(t, rlp.DecodeBytes(data, &dec))
	assert.Equal(t, "-7", dec.Balance("a").String())
}

func TestLoadConfig(t *testing.T) {
	st := New(1, 1)
	cfg := st.Config()
	assert.Equal(t, ledger.DefaultMaxTxAge, cfg.MaxTxAge)
	assert.False(t, cfg.MustRegister)

	snap := NewSnapshot(st)
	snap.SetConfigValue(ledger.ConfigMaxTxAge, "1")
	snap.SetConfigValue(ledger.ConfigRegisterAddresses, "1")
	child := snap.CreateSnapshot()
	cfg = child.Config()
	assert.Equal(t, ledger.MinimumMaxTxAge, cfg.MaxTxAge, "clamped to the minimum")
	assert.True(t, cfg.MustRegister)

	child.SetConfigValue(ledger.ConfigMaxTxAge, "junk")
	assert.Equal(t, ledger.DefaultMaxTxAge, child.Config().MaxTxAge)
}

func TestCommitAtomicity(t *testing.T) {
	st := genesisState(t)
	root := NewSnapshot(st.Next())

	child := root.CreateSnapshot()
	credit(child, "a", "ns|coin", 5)
	credit(child, "b", "ns|coin", 1)

	e, _ := root.Balances().Find("a")
	assert.Equal(t, "10", e.Balance("ns|coin").String(), "parent unchanged before commit")
	assert.False(t, root.Balances().ItemExists("b"))

	abandoned := root.CreateSnapshot()
	credit(abandoned, "c", "ns|coin", 1)

	require.NoError(t, child.Commit())
	assert.Equal(t, 0, child.ChangedCount(), "committed snapshot empties")

	e, _ = root.Balances().Find("a")
	assert.Equal(t, "15", e.Balance("ns|coin").String())
	assert.True(t, root.Balances().ItemExists("b"))
	assert.False(t, root.Balances().ItemExists("c"))
}

func TestInitialCategory(t *testing.T) {
	st := genesisState(t)
	assert.Nil(t, st.Contracts())

	next := st.Next()
	root := NewSnapshot(next)
	assert.False(t, root.HasCategory(CategoryContracts))

	// nets nothing: the category stays absent
	c1 := root.CreateSnapshot()
	c1.Contracts().Add(&ContractEntry{Address: "x"})
	c1.Contracts().Delete("x")
	require.NoError(t, c1.Commit())
	assert.False(t, root.HasCategory(CategoryContracts))

	c2 := root.CreateSnapshot()
	gc := c2.CreateSnapshot()
	gc.Contracts().Add(&ContractEntry{Address: "y", Function: "f"})
	require.NoError(t, gc.Commit())
	assert.True(t, c2.HasCategory(CategoryContracts))
	require.NoError(t, c2.Commit())
	assert.True(t, root.HasCategory(CategoryContracts))

	c3 := root.CreateSnapshot()
	assert.True(t, c3.Contracts().ItemExists("y"))
	c3.Contracts().Add(&ContractEntry{Address: "z"})
	require.NoError(t, c3.Commit())

	require.NoError(t, root.FinalizeBlock(newBlock(1)))
	require.NotNil(t, next.Contracts())
	assert.Equal(t, 2, next.Contracts().Len())
	y, ok := next.Contracts().Find("y")
	require.True(t, ok)
	assert.Equal(t, uint64(1), y.UpdateHeight())
}

func TestCorruption(t *testing.T) {
	root := NewSnapshot(genesisState(t).Next())
	child := root.CreateSnapshot()
	grandchild := child.CreateSnapshot()
	credit(grandchild, "z", "ns|coin", 1)
	grandchild.SetCorrupted("bad %s", "thing")

	assert.Equal(t, "bad thing", grandchild.CommitIfNotCorrupt())
	assert.True(t, child.IsCorrupted())

	err := child.Commit()
	assert.True(t, IsCorrupted(err))
	assert.True(t, root.IsCorrupted())
	assert.True(t, IsCorrupted(root.FinalizeBlock(newBlock(1))))
	assert.False(t, root.Balances().ItemExists("z"))
}

func TestFinalizeBlock(t *testing.T) {
	st := genesisState(t)
	assert.True(t, st.Finalized())
	assert.Equal(t, uint64(1), st.Height())
	assert.Equal(t, uint64(1000), st.Timestamp())
	assert.False(t, st.Hash().IsZero())

	again := NewSnapshot(st)
	assert.True(t, IsFinalized(again.Commit()))
	assert.True(t, IsFinalized(again.FinalizeBlock(newBlock(1))))

	assert.ErrorIs(t, again.CreateSnapshot().FinalizeBlock(newBlock(1)), ErrNotRoot)

	next := st.Next()
	assert.False(t, next.Finalized())
	root := NewSnapshot(next)
	credit(root.CreateSnapshot(), "ignored", "x", 1)
	require.NoError(t, root.FinalizeBlock(newBlock(1)))
	assert.Equal(t, uint64(2), next.Height())
	assert.NotEqual(t, st.Hash(), next.Hash(), "block metadata is hashed")
	assert.Equal(t, uint64(1), st.Height(), "previous state untouched")
}

func TestRootCommitKeepsChanges(t *testing.T) {
	st := genesisState(t)
	root := NewSnapshot(st.Next())
	credit(root, "b", "ns|coin", 5)

	require.NoError(t, root.Commit())
	assert.Equal(t, 1, root.ChangedCount())
	assert.True(t, root.Balances().ItemExists("b"))

	require.NoError(t, root.FinalizeBlock(newBlock(1)))
	assert.Equal(t, 0, root.ChangedCount())
}

func TestHashDeterminism(t *testing.T) {
	build := func(order []string) ledger.Bytes32 {
		st := genesisState(t).Next()
		root := NewSnapshot(st)
		for _, a := range order {
			child := root.CreateSnapshot()
			credit(child, a, "ns|coin", 1)
			require.NoError(t, child.Commit())
		}
		child := root.CreateSnapshot()
		child.Balances().Delete("a")
		require.NoError(t, child.Commit())
		require.NoError(t, root.FinalizeBlock(newBlock(1)))
		return st.Hash()
	}
	h1 := build([]string{"b", "c", "d"})
	assert.Equal(t, h1, build([]string{"b", "c", "d"}))
	assert.NotEqual(t, h1, build([]string{"d", "c", "b"}), "structural replay order shapes the hash")
}

func TestScalars(t *testing.T) {
	st := New(1, 1)
	root := NewSnapshot(st)
	root.SetXChain(&XChainDetails{ChainID: 7, BlockHeight: 3})
	root.SetPrivilegedKey(&PrivilegedKey{Key: "k1", Name: "admin"})

	child := root.CreateSnapshot()
	d, ok := child.XChain(7)
	require.True(t, ok)
	assert.Equal(t, uint64(3), d.BlockHeight)

	child.RemoveXChain(7)
	child.SetXChain(&XChainDetails{ChainID: 8})
	child.RemovePrivilegedKey("k1")
	_, ok = child.XChain(7)
	assert.False(t, ok)
	_, ok = child.PrivilegedKey("admin")
	assert.False(t, ok)

	_, ok = root.XChain(7)
	assert.True(t, ok, "parent unchanged until commit")
	_, ok = root.PrivilegedKey("admin")
	assert.True(t, ok)

	require.NoError(t, child.Commit())
	_, ok = root.XChain(7)
	assert.False(t, ok)
	_, ok = root.XChain(8)
	assert.True(t, ok)
	_, ok = root.PrivilegedKey("k1")
	assert.False(t, ok)

	require.NoError(t, root.FinalizeBlock(newBlock(0)))
	_, ok = st.XChain(8)
	assert.True(t, ok)
	_, ok = st.XChain(7)
	assert.False(t, ok)
}

func TestContractBookkeeping(t *testing.T) {
	root := NewSnapshot(New(1, 1))
	child := root.CreateSnapshot()
	child.AddLifecycleEvent(LifecycleNew, "c1", "u2", "u1")
	child.AddContractEvent(ContractEvent{Address: "c2", Name: "commit"})
	child.AddContractEvent(ContractEvent{Address: "c1", Name: "commit", Data: "old"})
	child.AddContractEvent(ContractEvent{Address: "c1", Name: "commit", Data: "new"})

	other := root.CreateSnapshot()
	other.AddLifecycleEvent(LifecycleNew, "c0", "u3")
	other.AddLifecycleEvent(LifecycleNew, "c1", "u3")

	require.NoError(t, child.Commit())
	require.NoError(t, other.Commit())

	assert.Equal(t, map[LifecycleEvent][]string{LifecycleNew: {"c0", "c1"}}, root.LifecycleEvents())
	assert.Equal(t, []string{"u1", "u2", "u3"}, root.ContractUsers()["c1"])

	events := root.ContractEvents()
	require.Len(t, events, 2)
	assert.Equal(t, "c1", events[0].Address)
	assert.Equal(t, "new", events[0].Data)
	assert.Equal(t, "c2", events[1].Address)
}

func TestTimeEvents(t *testing.T) {
	st := New(1, 1)
	root := NewSnapshot(st)
	assert.True(t, root.AddTimeEvent("c1", 10))
	assert.True(t, root.AddTimeEvent("c2", 20))
	assert.True(t, root.AddTimeEvent("c1", 30))
	require.NoError(t, root.FinalizeBlock(newBlock(0)))

	root = NewSnapshot(st.Next())
	child := root.CreateSnapshot()
	assert.False(t, child.AddTimeEvent("c1", 10), "already scheduled below")
	child.RemoveTimeEvent("c2", 20)
	assert.False(t, child.HasTimeEvent("c2", 20))
	assert.True(t, root.HasTimeEvent("c2", 20))
	assert.True(t, child.AddTimeEvent("c2", 20), "revives a removed event")
	child.RemoveTimeEvent("c2", 20)
	assert.True(t, child.AddTimeEvent("c3", 5))

	assert.Equal(t, []string{"c3", "c1"}, child.DueTimeEvents(25, 0))
	assert.Equal(t, []string{"c3"}, child.DueTimeEvents(25, 1))
	require.NoError(t, child.Commit())

	root.RemovePendingTimeEvents(25, []string{"c1", "c3"})
	assert.False(t, root.HasTimeEvent("c1", 10))
	assert.True(t, root.HasTimeEvent("c1", 30), "later events are kept")
	assert.Empty(t, root.DueTimeEvents(25, 0))
}

type recordingListener struct {
	changes []string
	started []uint64
	done    []uint64
}

func (l *recordingListener) OnChange(category string, kind overlay.ChangeKind, key string, _ int, height uint64) {
	l.changes = append(l.changes, category+":"+kind.String()+":"+key)
}
func (l *recordingListener) StartBlock(h uint64)     { l.started = append(l.started, h) }
func (l *recordingListener) CompleteBlock(h uint64)  { l.done = append(l.done, h) }
func (l *recordingListener) FailBlock(uint64, error) {}

func TestListener(t *testing.T) {
	st := genesisState(t).Next()
	l := &recordingListener{}
	root := NewSnapshot(st, l)

	child := root.CreateSnapshot()
	credit(child, "a", "ns|coin", 1)
	credit(child, "b", "ns|coin", 1)
	require.NoError(t, child.Commit())
	assert.Empty(t, l.changes, "nested commits are not durable")

	require.NoError(t, root.FinalizeBlock(newBlock(1)))
	assert.Equal(t, []string{"balances:update:a", "balances:add:b"}, l.changes)
	assert.Equal(t, []uint64{1}, l.started)
	assert.Equal(t, []uint64{1}, l.done)
}

func TestStater(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	stater, err := NewStater(db, 4)
	require.NoError(t, err)

	st := genesisState(t)
	next := st.Next()
	root := NewSnapshot(next)
	root.SetConfigValue(ledger.ConfigMaxTxAge, "60")
	root.SetXChain(&XChainDetails{ChainID: 9, BlockHeight: 4, SignNodes: []XChainSignNode{{"pk", big.NewInt(3)}}})
	root.AddTimeEvent("c1", 99)
	root.Namespaces().Add(&NamespaceEntry{Namespace: "ns", Owner: "a"})
	credit(root, "b", "ns|coin", -4)
	require.NoError(t, root.FinalizeBlock(newBlock(1)))

	assert.Error(t, stater.Save(New(1, 1)), "only finalized states")
	require.NoError(t, stater.Save(next))

	head, err := stater.Head()
	require.NoError(t, err)
	assert.Equal(t, next.Hash(), head)

	// bypass the cache
	fresh, err := NewStater(db, 4)
	require.NoError(t, err)
	loaded, err := fresh.Load(head)
	require.NoError(t, err)
	assert.Equal(t, next.Hash(), loaded.Hash())
	assert.True(t, loaded.Finalized())
	assert.Equal(t, int64(60), loaded.Config().MaxTxAge)
	b, ok := loaded.Balances().Find("b")
	require.True(t, ok)
	assert.Equal(t, "-4", b.Balance("ns|coin").String())

	_, err = fresh.Load(ledger.Bytes32{0xff})
	assert.True(t, fresh.IsNotFound(err))
}
