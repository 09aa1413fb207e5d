// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import "sync/atomic"

// Stats counts cache lookups. The zero value is ready to use.
type Stats struct {
	hit, miss atomic.Int64
	reported  atomic.Int32 // hit rate in permille at the last Report
}

func (cs *Stats) Hit() int64  { return cs.hit.Add(1) }
func (cs *Stats) Miss() int64 { return cs.miss.Add(1) }

// Report returns the counters and the hit rate in permille. moved tells whether the rate
// differs from the one returned by the previous Report.
func (cs *Stats) Report() (hit, miss int64, permille int32, moved bool) {
	hit = cs.hit.Load()
	miss = cs.miss.Load()
	if lookups := hit + miss; lookups > 0 {
		permille = int32(hit * 1000 / lookups)
	}
	return hit, miss, permille, cs.reported.Swap(permille) != permille
}
