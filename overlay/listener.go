// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package overlay

// ChangeKind classifies a durable write.
type ChangeKind byte

const (
	Updated ChangeKind = iota
	Added
	Removed
)

func (k ChangeKind) String() string {
	switch k {
	case Updated:
		return "update"
	case Added:
		return "add"
	default:
		return "remove"
	}
}

// ChangeListener observes durable writes made by committing overlays.
type ChangeListener interface {
	OnChange(category string, kind ChangeKind, key string, version int, height uint64)
}

// NoopListener ignores every change.
type NoopListener struct{}

func (NoopListener) OnChange(string, ChangeKind, string, int, uint64) {}

// ListenerFunc adapts a function to ChangeListener.
type ListenerFunc func(category string, kind ChangeKind, key string, version int, height uint64)

func (f ListenerFunc) OnChange(category string, kind ChangeKind, key string, version int, height uint64) {
	f(category, kind, key, version, height)
}
