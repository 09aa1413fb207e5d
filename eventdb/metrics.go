// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"strings"

	"github.com/vechain/streams/metrics"
)

var (
	metricInsertedEvents       = metrics.LazyLoadCounter("eventdb_inserted_events_count")
	metricQueryDuration        = metrics.LazyLoadHistogram("eventdb_query_duration_ms", metrics.BucketHTTPReqs)
	metricCriteriaLengthBucket = metrics.LazyLoadHistogram("eventdb_criteria_length_bucket", []int64{0, 1, 2, 5, 10, 25, 100})
	metricQueryParameters      = metrics.LazyLoadCounterVec("eventdb_query_parameters", []string{"parameters"})
	metricQueryOrderCounter    = metrics.LazyLoadCounterVec("eventdb_query_order", []string{"order"})
	metricLimitBucket          = metrics.LazyLoadHistogram("eventdb_query_limit_bucket", []int64{0, 5, 10, 25, 50, 100, 250, 500, 1000})
)

func metricsHandleFilter(filter *Filter) {
	if metrics.NoOp() {
		return
	}

	metricCriteriaLengthBucket().Observe(int64(len(filter.CriteriaSet)))

	if filter.Order == DESC {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "desc"})
	} else {
		metricQueryOrderCounter().AddWithLabel(1, map[string]string{"order": "asc"})
	}

	if filter.Options != nil {
		metricLimitBucket().Observe(int64(min(filter.Options.Limit, 1001)))
	}

	for _, c := range filter.CriteriaSet {
		paramsUsed := make([]string, 0, 5)
		if c.Address != nil {
			paramsUsed = append(paramsUsed, "address")
		}
		if c.Kind != "" {
			paramsUsed = append(paramsUsed, "kind")
		}
		if c.Account != nil {
			paramsUsed = append(paramsUsed, "account")
		}
		if c.Rewarded != nil {
			paramsUsed = append(paramsUsed, "rewarded")
		}
		if c.Reward != nil {
			paramsUsed = append(paramsUsed, "reward")
		}
		metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(paramsUsed, ",")})
	}
}
