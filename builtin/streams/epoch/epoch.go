// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package epoch maps wall-clock time onto the fixed-length epoch grid of a streams deployment.
package epoch

import "math"

// Clock divides time into half-open epochs [Origin + e*Duration, Origin + (e+1)*Duration).
// All methods are total: out of range inputs saturate instead of failing.
type Clock struct {
	Origin   uint64
	Duration uint64
}

func New(origin, duration uint64) Clock {
	return Clock{Origin: origin, Duration: duration}
}

// EpochOf returns the epoch containing t. Times before the origin belong to epoch 0.
func (c Clock) EpochOf(t uint64) uint64 {
	if t < c.Origin || c.Duration == 0 {
		return 0
	}
	return (t - c.Origin) / c.Duration
}

// Current is the epoch containing now.
func (c Clock) Current(now uint64) uint64 {
	return c.EpochOf(now)
}

// Start returns the first second of epoch e.
func (c Clock) Start(e uint64) uint64 {
	if c.Duration != 0 && e > (math.MaxUint64-c.Origin)/c.Duration {
		return math.MaxUint64
	}
	return c.Origin + e*c.Duration
}

// End returns the first second after epoch e.
func (c Clock) End(e uint64) uint64 {
	start := c.Start(e)
	if start > math.MaxUint64-c.Duration {
		return math.MaxUint64
	}
	return start + c.Duration
}

// Elapsed returns how many seconds of epoch e fall into [lastUpdated, now).
func (c Clock) Elapsed(e, lastUpdated, now uint64) uint64 {
	from := max(c.Start(e), lastUpdated)
	to := min(c.End(e), now)
	if to <= from {
		return 0
	}
	return to - from
}

// ElapsedInCurrent returns how far now is into its own epoch.
func (c Clock) ElapsedInCurrent(now uint64) uint64 {
	start := c.Start(c.EpochOf(now))
	if now < start {
		return 0
	}
	return now - start
}
