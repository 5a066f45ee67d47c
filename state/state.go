// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"maps"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ledgerd/ledgerd/collection"
	"github.com/ledgerd/ledgerd/ledger"
)

// BlockInfo is the block metadata a state is finalized with.
type BlockInfo interface {
	Hash() ledger.Bytes32
	Timestamp() uint64
}

// State is the root aggregate of the ledger: one keyed collection per
// category plus scalar maps. A category collection is nil until the first
// block that inserts into it is finalized.
//
// A State is written only by the root snapshot's FinalizeBlock, after which
// it is immutable and safe for concurrent readers.
type State struct {
	chainID   uint32
	version   uint64
	height    uint64
	timestamp uint64
	blockHash ledger.Bytes32
	hash      ledger.Bytes32
	finalized bool

	balances     *collection.List[*AddressEntry]
	namespaces   *collection.List[*NamespaceEntry]
	contracts    *collection.List[*ContractEntry]
	encumbrances *collection.List[*EncumbranceEntry]
	lockedAssets *collection.List[*LockedAssetEntry]
	signNodes    *collection.List[*SignNodeEntry]
	poas         *collection.List[*PoaEntry]

	config         map[string]string
	xchains        map[uint32]*XChainDetails
	privilegedKeys map[string]*PrivilegedKey
	timeEvents     map[timeEvent]struct{}
}

// New creates an empty, mutable state at height zero.
func New(chainID uint32, version uint64) *State {
	return &State{
		chainID:        chainID,
		version:        version,
		config:         make(map[string]string),
		xchains:        make(map[uint32]*XChainDetails),
		privilegedKeys: make(map[string]*PrivilegedKey),
		timeEvents:     make(map[timeEvent]struct{}),
	}
}

func (s *State) ChainID() uint32           { return s.chainID }
func (s *State) Version() uint64           { return s.version }
func (s *State) Height() uint64            { return s.height }
func (s *State) Timestamp() uint64         { return s.timestamp }
func (s *State) BlockHash() ledger.Bytes32 { return s.blockHash }
func (s *State) Finalized() bool           { return s.finalized }

// Hash returns the content hash computed when the state was finalized.
func (s *State) Hash() ledger.Bytes32 { return s.hash }

// Balances returns the address collection, nil if absent.
func (s *State) Balances() collection.Reader[*AddressEntry] { return reader(s.balances) }

func (s *State) Namespaces() collection.Reader[*NamespaceEntry] { return reader(s.namespaces) }
func (s *State) Contracts() collection.Reader[*ContractEntry]   { return reader(s.contracts) }
func (s *State) Encumbrances() collection.Reader[*EncumbranceEntry] {
	return reader(s.encumbrances)
}
func (s *State) LockedAssets() collection.Reader[*LockedAssetEntry] {
	return reader(s.lockedAssets)
}
func (s *State) SignNodes() collection.Reader[*SignNodeEntry] { return reader(s.signNodes) }
func (s *State) Poas() collection.Reader[*PoaEntry]           { return reader(s.poas) }

// reader avoids handing out a non-nil interface holding a nil list.
func reader[E collection.Entry[E]](l *collection.List[E]) collection.Reader[E] {
	if l == nil {
		return nil
	}
	return l
}

// ConfigValue implements ConfigGetter.
func (s *State) ConfigValue(key string) (string, bool) {
	v, ok := s.config[key]
	return v, ok
}

// Config returns the typed configuration.
func (s *State) Config() Config { return LoadConfig(s) }

// XChain returns the details of a connected chain.
func (s *State) XChain(chainID uint32) (*XChainDetails, bool) {
	d, ok := s.xchains[chainID]
	return d, ok
}

// PrivilegedKey looks a key up by public key, then by name.
func (s *State) PrivilegedKey(keyOrName string) (*PrivilegedKey, bool) {
	if k, ok := s.privilegedKeys[keyOrName]; ok {
		return k, true
	}
	for _, k := range s.privilegedKeys {
		if k.Name == keyOrName {
			return k, true
		}
	}
	return nil, false
}

// Next returns a mutable copy of the state to build the following block on.
// The collections are cloned, sharing their entries, which are replaced
// rather than mutated by writers.
func (s *State) Next() *State {
	n := &State{
		chainID:        s.chainID,
		version:        s.version,
		height:         s.height,
		timestamp:      s.timestamp,
		blockHash:      s.blockHash,
		hash:           s.hash,
		config:         maps.Clone(s.config),
		xchains:        maps.Clone(s.xchains),
		privilegedKeys: maps.Clone(s.privilegedKeys),
		timeEvents:     maps.Clone(s.timeEvents),
	}
	for _, c := range categories {
		c.clone(n, s)
	}
	return n
}

// finalize advances the state past block b and freezes it.
func (s *State) finalize(b BlockInfo) error {
	if s.finalized {
		return &Error{ErrFinalized}
	}
	s.height++
	s.timestamp = b.Timestamp()
	s.blockHash = b.Hash()

	h, err := s.computeHash()
	if err != nil {
		return &Error{err}
	}
	s.hash = h
	for _, c := range categories {
		c.freeze(s)
	}
	s.finalized = true
	return nil
}

type categoryHash struct {
	Name string
	Hash ledger.Bytes32
}

type configPair struct {
	Key   string
	Value string
}

// hashInput is the RLP-encoded preimage of the content hash.
type hashInput struct {
	ChainID        uint32
	Version        uint64
	Height         uint64
	Timestamp      uint64
	BlockHash      ledger.Bytes32
	Categories     []categoryHash
	Config         []configPair
	XChains        []*XChainDetails
	PrivilegedKeys []*PrivilegedKey
	TimeEvents     []timeEvent
}

// computeHash hashes every present category concurrently, then the scalars.
func (s *State) computeHash() (ledger.Bytes32, error) {
	startTime := time.Now()
	defer func() {
		metricHashDuration().Observe(time.Since(startTime).Milliseconds())
	}()

	hashes := make([]categoryHash, len(categories))
	var g errgroup.Group
	for i, c := range categories {
		g.Go(func() error {
			if h, ok := c.hash(s); ok {
				hashes[i] = categoryHash{c.Name(), h}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ledger.Bytes32{}, err
	}

	in := hashInput{
		ChainID:   s.chainID,
		Version:   s.version,
		Height:    s.height,
		Timestamp: s.timestamp,
		BlockHash: s.blockHash,
	}
	for _, h := range hashes {
		if h.Name != "" {
			in.Categories = append(in.Categories, h)
		}
	}
	for _, k := range slices.Sorted(maps.Keys(s.config)) {
		in.Config = append(in.Config, configPair{k, s.config[k]})
	}
	for _, id := range slices.Sorted(maps.Keys(s.xchains)) {
		in.XChains = append(in.XChains, s.xchains[id])
	}
	for _, k := range slices.Sorted(maps.Keys(s.privilegedKeys)) {
		in.PrivilegedKeys = append(in.PrivilegedKeys, s.privilegedKeys[k])
	}
	in.TimeEvents = s.sortedTimeEvents()
	return ledger.RLPHash(&in), nil
}

func (s *State) sortedTimeEvents() []timeEvent {
	events := slices.Collect(maps.Keys(s.timeEvents))
	slices.SortFunc(events, compareTimeEvents)
	return events
}
