// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ledgerd/ledgerd/overlay"
)

// BlockListener is optionally implemented by a change listener which wants
// to bracket the durable writes of a block.
type BlockListener interface {
	overlay.ChangeListener
	StartBlock(height uint64)
	CompleteBlock(height uint64)
	FailBlock(height uint64, err error)
}

type multiListener []overlay.ChangeListener

func (m multiListener) OnChange(category string, kind overlay.ChangeKind, key string, version int, height uint64) {
	for _, l := range m {
		l.OnChange(category, kind, key, version, height)
	}
}

func (m multiListener) StartBlock(height uint64) {
	for _, l := range m {
		if bl, ok := l.(BlockListener); ok {
			bl.StartBlock(height)
		}
	}
}

func (m multiListener) CompleteBlock(height uint64) {
	for _, l := range m {
		if bl, ok := l.(BlockListener); ok {
			bl.CompleteBlock(height)
		}
	}
}

func (m multiListener) FailBlock(height uint64, err error) {
	for _, l := range m {
		if bl, ok := l.(BlockListener); ok {
			bl.FailBlock(height, err)
		}
	}
}
