// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"github.com/ledgerd/ledgerd/log"
	"github.com/ledgerd/ledgerd/metrics"
	"github.com/ledgerd/ledgerd/overlay"
)

var logger = log.WithContext("pkg", "state")

var (
	metricEntryChanges  = metrics.LazyLoadCounterVec("state_entry_changes_count", []string{"category", "kind"})
	metricCommitCounter = metrics.LazyLoadCounterVec("snapshot_commit_count", []string{"result"})
	metricHashDuration  = metrics.LazyLoadHistogram("state_hash_duration_ms", metrics.Bucket1s)
)

// MetricsListener counts durable writes per category and kind.
type MetricsListener struct{}

var _ overlay.ChangeListener = MetricsListener{}

func (MetricsListener) OnChange(category string, kind overlay.ChangeKind, _ string, _ int, _ uint64) {
	metricEntryChanges().AddWithLabel(1, map[string]string{"category": category, "kind": kind.String()})
}
