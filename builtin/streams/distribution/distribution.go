// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package distribution

import (
	"github.com/holiman/uint256"

	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/builtin/streams/enabledset"
	"github.com/vechain/streams/thor"
)

var (
	slotDistributions = thor.BytesToBytes32([]byte("distributions"))
	slotSchedule      = thor.BytesToBytes32([]byte("schedule"))
	slotSpillover     = thor.BytesToBytes32([]byte("spillover"))
	slotRewards       = thor.BytesToBytes32([]byte("rewards"))
)

// Service stores distributions, their epoch schedules and spillover records.
type Service struct {
	sctx          *solidity.Context
	distributions *solidity.Mapping[thor.Bytes32, *Distribution]
	schedule      *solidity.Mapping[scheduleKey, *uint256.Int]
	spillover     *solidity.Mapping[thor.Bytes32, *Spillover]
}

func New(sctx *solidity.Context) *Service {
	return &Service{
		sctx:          sctx,
		distributions: solidity.NewMapping[thor.Bytes32, *Distribution](sctx, slotDistributions),
		schedule:      solidity.NewMapping[scheduleKey, *uint256.Int](sctx, slotSchedule),
		spillover:     solidity.NewMapping[thor.Bytes32, *Spillover](sctx, slotSpillover),
	}
}

// Get returns the distribution, or a zero one if it was never created.
func (s *Service) Get(id thor.Bytes32) (*Distribution, error) {
	d, err := s.distributions.Get(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return newDistribution(), nil
	}
	d.stored = true
	return d, nil
}

func (s *Service) Set(id thor.Bytes32, d *Distribution) error {
	if err := s.distributions.Set(id, d, !d.stored); err != nil {
		return err
	}
	d.stored = !d.IsEmpty()
	return nil
}

// Amount returns the amount scheduled for the epoch.
func (s *Service) Amount(id thor.Bytes32, epoch uint64) (*uint256.Int, error) {
	amount, err := s.schedule.Get(scheduleKey{id, epoch})
	if err != nil {
		return nil, err
	}
	if amount == nil {
		return new(uint256.Int), nil
	}
	return amount, nil
}

// AddAmount schedules amount on top of what the epoch already holds.
func (s *Service) AddAmount(id thor.Bytes32, epoch uint64, amount *uint256.Int) error {
	current, err := s.schedule.Get(scheduleKey{id, epoch})
	if err != nil {
		return err
	}
	newValue := current == nil
	if newValue {
		current = new(uint256.Int)
	}
	if _, overflow := current.AddOverflow(current, amount); overflow {
		return solidity.ErrOverflow
	}
	return s.schedule.Set(scheduleKey{id, epoch}, current, newValue)
}

// Spillover returns the spillover record of the distribution.
func (s *Service) Spillover(id thor.Bytes32) (*Spillover, error) {
	sp, err := s.spillover.Get(id)
	if err != nil {
		return nil, err
	}
	if sp == nil {
		return &Spillover{Claimable: new(uint256.Int)}, nil
	}
	sp.stored = true
	return sp, nil
}

func (s *Service) SetSpillover(id thor.Bytes32, sp *Spillover) error {
	if err := s.spillover.Set(id, sp, !sp.stored); err != nil {
		return err
	}
	sp.stored = !sp.IsEmpty()
	return nil
}

// Rewards is the set of reward tokens ever registered for rewarded.
func (s *Service) Rewards(rewarded thor.Address) *enabledset.Set {
	return enabledset.New(s.sctx, thor.Blake2b(slotRewards.Bytes(), rewarded.Bytes()), 0)
}
