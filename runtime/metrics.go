// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"time"

	"github.com/vechain/streams/metrics"
)

var (
	metricCallCount    = metrics.LazyLoadCounterVec("runtime_call_count", []string{"method", "outcome"})
	metricCallGas      = metrics.LazyLoadHistogramVec("runtime_call_gas", []string{"method"}, metrics.BucketGas)
	metricCallDuration = metrics.LazyLoadHistogram("runtime_call_duration_ms", metrics.BucketHTTPReqs)
)

func observeCall(method, outcome string, gas uint64, elapsed time.Duration) {
	metricCallCount().AddWithLabel(1, map[string]string{"method": method, "outcome": outcome})
	metricCallGas().ObserveWithLabels(int64(gas), map[string]string{"method": method})
	metricCallDuration().Observe(elapsed.Milliseconds())
}
