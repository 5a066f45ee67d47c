// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package collection implements keyed, hash-bearing containers of state entries.
package collection

import (
	"github.com/pkg/errors"

	"github.com/ledgerd/ledgerd/ledger"
)

// ErrFrozen is raised when a frozen collection is mutated.
var ErrFrozen = errors.New("collection is frozen")

// Entry is a keyed record of one state category.
// E is the concrete (pointer) type of the entry itself.
type Entry[E any] interface {
	Key() string
	UpdateHeight() uint64
	SetUpdateHeight(height uint64)
	// Copy returns a deep clone which shares no mutable memory with the receiver.
	Copy() E
}

// Reader is the read-only contract of a keyed collection.
type Reader[E Entry[E]] interface {
	Find(key string) (E, bool)
	Has(key string) bool
	Len() int
	// Iterate visits entries in index order until fn returns false.
	Iterate(fn func(E) bool)
	Hash() ledger.Bytes32
}

// Mutable additionally allows direct writes. Reserved for the snapshot layer.
type Mutable[E Entry[E]] interface {
	Reader[E]
	// Update replaces the entry with the same key, or appends it if the key is new.
	Update(e E)
	// Remove deletes key, returning whether it was present.
	Remove(key string) bool
}
