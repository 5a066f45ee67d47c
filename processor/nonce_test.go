// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNonceTracker(t *testing.T) {
	tests := []struct {
		name    string
		tracker nonceTracker
		nonce   uint64
		reason  NonceRejection
		ok      bool
	}{
		{"match", nonceTracker{expected: 3}, 3, "", true},
		{"replay", nonceTracker{expected: 3}, 2, NonceReplay, false},
		{"future", nonceTracker{expected: 3}, 4, NonceFuture, false},
		{"beyond int64", nonceTracker{expected: 3}, math.MaxUint64, NonceFuture, false},
		{"high expected", nonceTracker{expected: math.MaxInt64 + 1}, math.MaxInt64 + 1, "", true},
		{"unknown chain", nonceTracker{unknown: true}, 0, NonceFuture, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := tt.tracker
			reason, ok := tracker.check(tt.nonce)
			assert.Equal(t, tt.reason, reason)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.nonce+1, tracker.expected)
			} else {
				assert.Equal(t, tt.tracker.expected, tracker.expected)
			}
		})
	}
}
