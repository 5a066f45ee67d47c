// Copyright (c) 2024 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import "github.com/ledgerd/ledgerd/metrics"

var (
	metricTxCounter       = metrics.LazyLoadCounterVec("processor_tx_count", []string{"mode", "result"})
	metricNonceRejections = metrics.LazyLoadCounterVec("processor_nonce_rejections_count", []string{"reason", "mode"})
	metricBatchDuration   = metrics.LazyLoadHistogram("processor_batch_duration_ms", metrics.Bucket1s)
	metricBatchSize       = metrics.LazyLoadHistogram("processor_batch_txs", metrics.BucketTxs)
	metricBatchAborts     = metrics.LazyLoadCounterVec("processor_batch_aborts_count", []string{"reason"})
)

func modeLabel(validateMode bool) string {
	if validateMode {
		return "validate"
	}
	return "apply"
}
