// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/golang/snappy"
	"github.com/pkg/errors"

	"github.com/ledgerd/ledgerd/cache"
	"github.com/ledgerd/ledgerd/kv"
	"github.com/ledgerd/ledgerd/ledger"
)

var (
	headKey      = []byte("head")
	headerSuffix = []byte("header")
)

// header is the persisted form of a state's scalars.
type header struct {
	ChainID        uint32
	Version        uint64
	Height         uint64
	Timestamp      uint64
	BlockHash      ledger.Bytes32
	Hash           ledger.Bytes32
	Config         []configPair
	XChains        []*XChainDetails
	PrivilegedKeys []*PrivilegedKey
	TimeEvents     []timeEvent
}

// Stater saves finalized states into a kv store and loads them back by hash.
type Stater struct {
	db    kv.Store
	cache *cache.LRU[ledger.Bytes32, *State]
}

// NewStater creates a stater keeping up to cacheSize decoded states in memory.
func NewStater(db kv.Store, cacheSize int) (*Stater, error) {
	c, err := cache.NewLRU[ledger.Bytes32, *State](cacheSize)
	if err != nil {
		return nil, errors.Wrap(err, "new stater")
	}
	return &Stater{db: db, cache: c}, nil
}

func statePrefix(hash ledger.Bytes32) kv.Bucket {
	return kv.Bucket("s" + string(hash[:]) + "/")
}

// Save persists a finalized state and makes it the head.
func (s *Stater) Save(st *State) error {
	if !st.finalized {
		return errors.New("save: state not finalized")
	}
	prefix := statePrefix(st.hash)
	b := s.db.NewBatch()

	h := header{
		ChainID:   st.chainID,
		Version:   st.version,
		Height:    st.height,
		Timestamp: st.timestamp,
		BlockHash: st.blockHash,
		Hash:      st.hash,
	}
	for k, v := range st.config {
		h.Config = append(h.Config, configPair{k, v})
	}
	for _, d := range st.xchains {
		h.XChains = append(h.XChains, d)
	}
	for _, k := range st.privilegedKeys {
		h.PrivilegedKeys = append(h.PrivilegedKeys, k)
	}
	h.TimeEvents = st.sortedTimeEvents()
	data, err := rlp.EncodeToBytes(&h)
	if err != nil {
		return errors.Wrap(err, "save header")
	}
	if err := prefix.NewPutter(b).Put(headerSuffix, snappy.Encode(nil, data)); err != nil {
		return err
	}
	for _, c := range categories {
		if err := c.save(st, prefix, b); err != nil {
			return err
		}
	}
	if err := b.Put(headKey, st.hash[:]); err != nil {
		return err
	}
	if err := b.Write(); err != nil {
		return errors.Wrap(err, "save state")
	}
	s.cache.Add(st.hash, st)
	logger.Debug("saved state", "height", st.height, "hash", st.hash.AbbrevString(), "ops", b.Len())
	return nil
}

// Head returns the hash of the last saved state.
func (s *Stater) Head() (ledger.Bytes32, error) {
	data, err := s.db.Get(headKey)
	if err != nil {
		return ledger.Bytes32{}, err
	}
	return ledger.BytesToBytes32(data), nil
}

// IsNotFound reports whether err means the requested state is absent.
func (s *Stater) IsNotFound(err error) bool {
	return s.db.IsNotFound(errors.Cause(err))
}

// Load returns the finalized state with the given hash.
// The returned state is shared, use Next to build on it.
func (s *Stater) Load(hash ledger.Bytes32) (*State, error) {
	return s.cache.GetOrLoad(hash, s.load)
}

func (s *Stater) load(hash ledger.Bytes32) (*State, error) {
	prefix := statePrefix(hash)
	raw, err := prefix.NewGetter(s.db).Get(headerSuffix)
	if err != nil {
		return nil, errors.Wrapf(err, "load state %v", hash.AbbrevString())
	}
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, errors.Wrap(err, "load header")
	}
	var h header
	if err := rlp.DecodeBytes(data, &h); err != nil {
		return nil, errors.Wrap(err, "load header")
	}

	st := New(h.ChainID, h.Version)
	st.height, st.timestamp, st.blockHash = h.Height, h.Timestamp, h.BlockHash
	for _, p := range h.Config {
		st.config[p.Key] = p.Value
	}
	for _, d := range h.XChains {
		st.xchains[d.ChainID] = d
	}
	for _, k := range h.PrivilegedKeys {
		st.privilegedKeys[k.Key] = k
	}
	for _, e := range h.TimeEvents {
		st.timeEvents[e] = struct{}{}
	}
	for _, c := range categories {
		if err := c.load(st, prefix, s.db); err != nil {
			return nil, err
		}
	}

	computed, err := st.computeHash()
	if err != nil {
		return nil, err
	}
	if computed != h.Hash || computed != hash {
		return nil, errors.Errorf("load state %v: hash mismatch, got %v", hash.AbbrevString(), computed.AbbrevString())
	}
	st.hash = computed
	for _, c := range categories {
		c.freeze(st)
	}
	st.finalized = true
	return st, nil
}
