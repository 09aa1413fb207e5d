// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import "github.com/vechain/streams/metrics"

var (
	metricEpochsWalked = metrics.LazyLoadHistogram("streams_settlement_epochs_walked", metrics.BucketEpochs)
	metricForfeits     = metrics.LazyLoadCounter("streams_forfeited_settlements_count")
	metricLedgerOps    = metrics.LazyLoadCounterVec("streams_ledger_ops_count", []string{"op"})
)

func countOp(op string) {
	metricLedgerOps().AddWithLabel(1, map[string]string{"op": op})
}
