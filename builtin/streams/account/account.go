// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package account

import (
	"github.com/holiman/uint256"

	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/builtin/streams/enabledset"
	"github.com/vechain/streams/thor"
)

var (
	slotRewards  = thor.BytesToBytes32([]byte("account-rewards"))
	slotBalances = thor.BytesToBytes32([]byte("account-balances"))
	slotEnabled  = thor.BytesToBytes32([]byte("account-enabled"))
)

// Reward is the standing of an account in one distribution.
type Reward struct {
	Snapshot  *uint256.Int // distribution accumulator at the last settlement
	Claimable *uint256.Int

	stored bool
}

func (r *Reward) IsEmpty() bool {
	return r.Snapshot.IsZero() && r.Claimable.IsZero()
}

// Service stores per account balances, enabled rewards and reward standings.
type Service struct {
	sctx     *solidity.Context
	limit    uint64
	rewards  *solidity.Mapping[thor.Bytes32, *Reward]
	balances *solidity.Mapping[thor.Bytes32, *uint256.Int]
}

// New creates the service. maxEnabled bounds the enabled set of every account.
func New(sctx *solidity.Context, maxEnabled uint64) *Service {
	return &Service{
		sctx:     sctx,
		limit:    maxEnabled,
		rewards:  solidity.NewMapping[thor.Bytes32, *Reward](sctx, slotRewards),
		balances: solidity.NewMapping[thor.Bytes32, *uint256.Int](sctx, slotBalances),
	}
}

func balanceKey(account, rewarded thor.Address) thor.Bytes32 {
	return thor.Blake2b(account.Bytes(), rewarded.Bytes())
}

func rewardKey(account, rewarded, reward thor.Address) thor.Bytes32 {
	return thor.Blake2b(account.Bytes(), rewarded.Bytes(), reward.Bytes())
}

// Balance returns the balance of account in rewarded.
func (s *Service) Balance(account, rewarded thor.Address) (*uint256.Int, error) {
	bal, err := s.balances.Get(balanceKey(account, rewarded))
	if err != nil {
		return nil, err
	}
	if bal == nil {
		return new(uint256.Int), nil
	}
	return bal, nil
}

// SetBalance stores the balance. newValue tells whether the slot was empty before.
func (s *Service) SetBalance(account, rewarded thor.Address, balance *uint256.Int, newValue bool) error {
	return s.balances.Set(balanceKey(account, rewarded), balance, newValue)
}

// Enabled is the set of rewards account has enabled for rewarded.
func (s *Service) Enabled(account, rewarded thor.Address) *enabledset.Set {
	return enabledset.New(s.sctx, thor.Blake2b(slotEnabled.Bytes(), account.Bytes(), rewarded.Bytes()), s.limit)
}

// Reward returns the standing of account in the distribution, zero if never settled.
func (s *Service) Reward(account, rewarded, reward thor.Address) (*Reward, error) {
	r, err := s.rewards.Get(rewardKey(account, rewarded, reward))
	if err != nil {
		return nil, err
	}
	if r == nil {
		return &Reward{Snapshot: new(uint256.Int), Claimable: new(uint256.Int)}, nil
	}
	r.stored = true
	return r, nil
}

func (s *Service) SetReward(account, rewarded, reward thor.Address, r *Reward) error {
	if err := s.rewards.Set(rewardKey(account, rewarded, reward), r, !r.stored); err != nil {
		return err
	}
	r.stored = !r.IsEmpty()
	return nil
}
