// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrFinalized is returned when writing to a finalized state.
	ErrFinalized = errors.New("state is no longer mutable")
	// ErrCorrupted is returned when committing a corrupted snapshot.
	ErrCorrupted = errors.New("snapshot corrupted")
	// ErrNotRoot is returned when finalizing a nested snapshot.
	ErrNotRoot = errors.New("only a root snapshot can be finalized")
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// IsCorrupted reports whether err stems from a corrupted snapshot.
func IsCorrupted(err error) bool {
	return errors.Is(err, ErrCorrupted)
}

// IsFinalized reports whether err stems from writing to a finalized state.
func IsFinalized(err error) bool {
	return errors.Is(err, ErrFinalized)
}
