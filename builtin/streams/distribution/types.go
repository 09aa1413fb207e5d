// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distribution

import (
	"encoding/binary"

	"github.com/holiman/uint256"

	"github.com/vechain/streams/thor"
)

// Distribution is the stream of one reward token paid to holders of one rewarded asset.
type Distribution struct {
	TotalEligible      *uint256.Int // sum of balances that have the reward enabled
	TotalRegistered    *uint256.Int
	TotalClaimed       *uint256.Int
	Accumulator        *uint256.Int // scaled reward per unit of eligible balance
	LastUpdated        uint64
	LastScheduledEpoch uint64

	stored bool
}

func newDistribution() *Distribution {
	return &Distribution{
		TotalEligible:   new(uint256.Int),
		TotalRegistered: new(uint256.Int),
		TotalClaimed:    new(uint256.Int),
		Accumulator:     new(uint256.Int),
	}
}

// IsEmpty returns true if the distribution was never touched.
func (d *Distribution) IsEmpty() bool {
	return d.TotalEligible.IsZero() &&
		d.TotalRegistered.IsZero() &&
		d.TotalClaimed.IsZero() &&
		d.Accumulator.IsZero() &&
		d.LastUpdated == 0 &&
		d.LastScheduledEpoch == 0
}

// Spillover holds the part of a distribution that no enabled balance could receive.
type Spillover struct {
	Claimable *uint256.Int

	stored bool
}

func (s *Spillover) IsEmpty() bool {
	return s.Claimable == nil || s.Claimable.IsZero()
}

// ID identifies the distribution of reward to holders of rewarded.
func ID(rewarded, reward thor.Address) thor.Bytes32 {
	return thor.Blake2b(rewarded.Bytes(), reward.Bytes())
}

type scheduleKey struct {
	id    thor.Bytes32
	epoch uint64
}

func (k scheduleKey) Bytes() []byte {
	b := make([]byte, 0, 40)
	b = append(b, k.id[:]...)
	return binary.BigEndian.AppendUint64(b, k.epoch)
}
