// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/builtin/streams/account"
	"github.com/vechain/streams/builtin/streams/distribution"
	"github.com/vechain/streams/thor"
)

// settlement is a distribution, and optionally one account, brought up to date in memory.
// Nothing is persisted until save.
type settlement struct {
	rewarded thor.Address
	reward   thor.Address
	id       thor.Bytes32
	dist     *distribution.Distribution
	spill    *distribution.Spillover // loaded on demand
	account  thor.Address
	rec      *account.Reward // nil when no account is settled
}

// accrue computes what dist streams over [dist.LastUpdated, now). The walk is clamped to the last
// scheduled epoch, so its length does not depend on how long the distribution sat idle.
func (s *Streams) accrue(id thor.Bytes32, dist *distribution.Distribution, now uint64) (accDelta, spillDelta *uint256.Int, err error) {
	accDelta, spillDelta = new(uint256.Int), new(uint256.Int)
	if now <= dist.LastUpdated || dist.TotalRegistered.IsZero() {
		return
	}

	from := s.clock.EpochOf(dist.LastUpdated)
	to := min(s.clock.EpochOf(now), dist.LastScheduledEpoch)
	duration := uint256.NewInt(s.clock.Duration)

	delta := new(uint256.Int)
	walked := uint64(0)
	for e := from; e <= to; e++ {
		walked++
		amount, err := s.dists.Amount(id, e)
		if err != nil {
			return nil, nil, err
		}
		elapsed := s.clock.Elapsed(e, dist.LastUpdated, now)
		if amount.IsZero() || elapsed == 0 {
			continue
		}
		// SCALER * elapsed * amount / D, floored per epoch
		scaled := new(uint256.Int).Mul(thor.StreamsScaler, amount)
		part, overflow := new(uint256.Int).MulDivOverflow(scaled, uint256.NewInt(elapsed), duration)
		if overflow {
			return nil, nil, errors.Wrap(solidity.ErrOverflow, "accrue")
		}
		delta.Add(delta, part)
	}
	metricEpochsWalked().Observe(int64(walked))

	if dist.TotalEligible.IsZero() {
		spillDelta.Div(delta, thor.StreamsScaler)
	} else {
		accDelta.Div(delta, dist.TotalEligible)
	}
	return
}

// settleDistribution advances the accumulator of st to now.
func (s *Streams) settleDistribution(st *settlement, now uint64) error {
	accDelta, spillDelta, err := s.accrue(st.id, st.dist, now)
	if err != nil {
		return err
	}
	st.dist.Accumulator.Add(st.dist.Accumulator, accDelta)
	if !spillDelta.IsZero() {
		if err := st.loadSpillover(s); err != nil {
			return err
		}
		st.spill.Claimable.Add(st.spill.Claimable, spillDelta)
	}
	if now > st.dist.LastUpdated {
		st.dist.LastUpdated = now
	}
	return nil
}

// earned returns what weight earned between the snapshot of rec and accumulator.
func earned(accumulator *uint256.Int, rec *account.Reward, weight *uint256.Int) (*uint256.Int, error) {
	diff, underflow := new(uint256.Int).SubOverflow(accumulator, rec.Snapshot)
	if underflow {
		return nil, errors.New("snapshot ahead of accumulator")
	}
	amount, overflow := new(uint256.Int).MulDivOverflow(diff, weight, thor.StreamsScaler)
	if overflow {
		return nil, errors.Wrap(solidity.ErrOverflow, "earned")
	}
	return amount, nil
}

// settleAccount credits rec with what weight earned up to the current accumulator.
func settleAccount(dist *distribution.Distribution, rec *account.Reward, weight *uint256.Int) error {
	amount, err := earned(dist.Accumulator, rec, weight)
	if err != nil {
		return err
	}
	rec.Claimable.Add(rec.Claimable, amount)
	rec.Snapshot = dist.Accumulator.Clone()
	return nil
}

// settle loads the distribution of (rewarded, reward) and brings it, and acct when non-zero, up to date.
// With forfeit the distribution is left as last settled and acct is reconciled against it,
// giving up its share of the time since.
func (s *Streams) settle(acct, rewarded, reward thor.Address, weight *uint256.Int, forfeit bool) (*settlement, error) {
	id := distribution.ID(rewarded, reward)
	dist, err := s.dists.Get(id)
	if err != nil {
		return nil, err
	}
	st := &settlement{
		rewarded: rewarded,
		reward:   reward,
		id:       id,
		dist:     dist,
		account:  acct,
	}

	if forfeit {
		metricForfeits().Add(1)
	} else if err := s.settleDistribution(st, s.now()); err != nil {
		return nil, err
	}

	if acct.IsZero() {
		return st, nil
	}
	if st.rec, err = s.accounts.Reward(acct, rewarded, reward); err != nil {
		return nil, err
	}
	if err := settleAccount(st.dist, st.rec, weight); err != nil {
		return nil, err
	}
	return st, nil
}

func (st *settlement) loadSpillover(s *Streams) (err error) {
	if st.spill == nil {
		st.spill, err = s.dists.Spillover(st.id)
	}
	return
}

// save persists everything st touched.
func (s *Streams) save(st *settlement) error {
	if err := s.dists.Set(st.id, st.dist); err != nil {
		return err
	}
	if st.spill != nil {
		if err := s.dists.SetSpillover(st.id, st.spill); err != nil {
			return err
		}
	}
	if st.rec != nil {
		if err := s.accounts.SetReward(st.account, st.rewarded, st.reward, st.rec); err != nil {
			return err
		}
	}
	return nil
}

// updateBalance moves acct from oldBalance to newBalance in rewarded, settling every enabled reward
// with the old balance first and keeping their eligible totals in step.
func (s *Streams) updateBalance(acct, rewarded thor.Address, oldBalance, newBalance *uint256.Int, forfeit bool) error {
	rewards, err := s.accounts.Enabled(acct, rewarded).Members()
	if err != nil {
		return err
	}
	for _, reward := range rewards {
		st, err := s.settle(acct, rewarded, reward, oldBalance, forfeit)
		if err != nil {
			return err
		}
		eligible := new(uint256.Int).Add(st.dist.TotalEligible, newBalance)
		if _, underflow := eligible.SubOverflow(eligible, oldBalance); underflow {
			return errors.Wrap(solidity.ErrUnderflow, "total eligible")
		}
		st.dist.TotalEligible = eligible
		if err := s.save(st); err != nil {
			return err
		}
	}
	return s.accounts.SetBalance(acct, rewarded, newBalance, oldBalance.IsZero())
}
