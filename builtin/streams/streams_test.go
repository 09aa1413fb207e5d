// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams_test

import (
	"math/big"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/builtin/operators"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/builtin/token"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

// 10 tokens per second over one epoch
const perEpoch = 10 * epochDuration

func TestDeploy(t *testing.T) {
	h := newHarness(t)

	err := h.run(thor.Address{}, func(env *xenv.Environment) error {
		_, err := streams.Deploy(stakingAddr, env, epochDuration)
		return err
	})
	assert.Equal(t, streams.ErrAlreadyDeployed, err)

	other := thor.BytesToAddress([]byte("other"))
	for _, d := range []uint64{thor.MinEpochDuration - 1, thor.MaxEpochDuration + 1} {
		err := h.run(thor.Address{}, func(env *xenv.Environment) error {
			_, err := streams.Deploy(other, env, d)
			return err
		})
		assert.Equal(t, streams.ErrInvalidEpochDuration, err)
	}

	err = h.run(thor.Address{}, func(env *xenv.Environment) error {
		_, err := bindStreams(env, other)
		return err
	})
	assert.Equal(t, streams.ErrNotDeployed, err)

	h.query(stakingAddr, func(s *streams.Streams) error {
		assert.Equal(t, uint64(0), s.CurrentEpoch())
		assert.Equal(t, origin, s.EpochStart(0))
		assert.Equal(t, origin+epochDuration, s.EpochEnd(0))
		assert.Equal(t, uint64(3), s.EpochOf(epochStart(3)+1))
		return nil
	})
}

func TestSingleStaker(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)
	h.fund(rewardToken, sponsor, stakingAddr, perEpoch)

	require.NoError(t, h.stake(alice, uint256.NewInt(1000)))
	require.NoError(t, h.enable(stakingAddr, alice, stakeToken, rewardToken))
	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, perEpoch))

	assert.Equal(t, uint64(0), h.tokenBalance(rewardToken, sponsor))
	assert.Equal(t, perEpoch, h.tokenBalance(rewardToken, stakingAddr))
	assert.Equal(t, uint64(1000), h.tokenBalance(stakeToken, stakingAddr))

	h.query(stakingAddr, func(s *streams.Streams) error {
		amount, err := s.RewardAmount(stakeToken, rewardToken, 1)
		require.NoError(t, err)
		assert.Equal(t, perEpoch, amount.Uint64())
		amount, err = s.CurrentRewardAmount(stakeToken, rewardToken)
		require.NoError(t, err)
		assert.True(t, amount.IsZero())

		rewards, err := s.Rewards(stakeToken)
		require.NoError(t, err)
		assert.Equal(t, []thor.Address{rewardToken}, rewards)

		eligible, err := s.TotalRewardedEligible(stakeToken, rewardToken)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), eligible.Uint64())
		registered, err := s.TotalRewardRegistered(stakeToken, rewardToken)
		require.NoError(t, err)
		assert.Equal(t, perEpoch, registered.Uint64())
		return nil
	})

	// nothing streams before the first scheduled epoch
	h.at(epochStart(1))
	assert.Equal(t, uint64(0), h.earned(stakingAddr, alice, stakeToken, rewardToken, false))

	h.at(epochStart(1) + epochDuration/2)
	assert.Equal(t, perEpoch/2, h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
	// forfeit view excludes everything since the last settlement
	assert.Equal(t, uint64(0), h.earned(stakingAddr, alice, stakeToken, rewardToken, true))

	h.at(epochStart(3))
	assert.Equal(t, perEpoch, h.earned(stakingAddr, alice, stakeToken, rewardToken, false))

	claimed, err := h.claim(stakingAddr, alice, stakeToken, rewardToken)
	require.NoError(t, err)
	assert.Equal(t, perEpoch, claimed)
	assert.Equal(t, perEpoch, h.tokenBalance(rewardToken, alice))
	assert.Equal(t, uint64(0), h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
	assert.Equal(t, uint64(0), h.spillover(stakingAddr, stakeToken, rewardToken))

	// a second claim pays nothing
	claimed, err = h.claim(stakingAddr, alice, stakeToken, rewardToken)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), claimed)

	h.query(stakingAddr, func(s *streams.Streams) error {
		total, err := s.TotalRewardClaimed(stakeToken, rewardToken)
		require.NoError(t, err)
		assert.Equal(t, perEpoch, total.Uint64())
		view, err := s.Distribution(stakeToken, rewardToken)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), view.LastScheduledEpoch)
		assert.Equal(t, epochStart(3), view.LastUpdated)
		return nil
	})
}

func TestProportionalShares(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)
	h.fund(stakeToken, bob, stakingAddr, 3000)
	h.fund(rewardToken, sponsor, stakingAddr, perEpoch)

	for acct, amount := range map[thor.Address]uint64{alice: 1000, bob: 3000} {
		require.NoError(t, h.stake(acct, uint256.NewInt(amount)))
		require.NoError(t, h.enable(stakingAddr, acct, stakeToken, rewardToken))
	}
	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, perEpoch))

	h.at(epochStart(2))
	assert.Equal(t, perEpoch/4, h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
	assert.Equal(t, perEpoch*3/4, h.earned(stakingAddr, bob, stakeToken, rewardToken, false))
}

func TestStakeAdditivity(t *testing.T) {
	split := newHarness(t)
	whole := newHarness(t)
	for _, h := range []*harness{split, whole} {
		h.fund(stakeToken, alice, stakingAddr, 1000)
		h.fund(stakeToken, bob, stakingAddr, 1000)
		h.fund(rewardToken, sponsor, stakingAddr, perEpoch)
		require.NoError(t, h.stake(bob, uint256.NewInt(1000)))
		require.NoError(t, h.enable(stakingAddr, alice, stakeToken, rewardToken))
		require.NoError(t, h.enable(stakingAddr, bob, stakeToken, rewardToken))
		require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, perEpoch))
		h.at(epochStart(1) + 1000)
	}

	require.NoError(t, split.stake(alice, uint256.NewInt(300)))
	require.NoError(t, split.stake(alice, uint256.NewInt(700)))
	require.NoError(t, whole.stake(alice, maxUint256))

	for _, h := range []*harness{split, whole} {
		assert.Equal(t, uint64(0), h.tokenBalance(stakeToken, alice))
		h.at(epochStart(2))
	}
	assert.Equal(t,
		whole.earned(stakingAddr, alice, stakeToken, rewardToken, false),
		split.earned(stakingAddr, alice, stakeToken, rewardToken, false))
	assert.Equal(t,
		whole.earned(stakingAddr, bob, stakeToken, rewardToken, false),
		split.earned(stakingAddr, bob, stakeToken, rewardToken, false))
}

func TestUnstake(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)
	require.NoError(t, h.stake(alice, uint256.NewInt(1000)))

	unstake := func(amount *uint256.Int, recipient thor.Address) error {
		return h.staking(alice, func(s *streams.Staking) error {
			return s.Unstake(streams.Origin{Sender: alice}, stakeToken, amount, recipient, false)
		})
	}
	assert.Equal(t, streams.ErrInvalidRecipient, unstake(uint256.NewInt(1), thor.Address{}))
	assert.Equal(t, streams.ErrInvalidAmount, unstake(uint256.NewInt(0), alice))
	assert.Equal(t, streams.ErrInvalidAmount, unstake(uint256.NewInt(1001), alice))

	require.NoError(t, unstake(uint256.NewInt(400), carol))
	assert.Equal(t, uint64(400), h.tokenBalance(stakeToken, carol))

	require.NoError(t, unstake(maxUint256, alice))
	assert.Equal(t, uint64(600), h.tokenBalance(stakeToken, alice))
	h.query(stakingAddr, func(s *streams.Streams) error {
		bal, err := s.BalanceOf(alice, stakeToken)
		require.NoError(t, err)
		assert.True(t, bal.IsZero())
		return nil
	})
	assert.Equal(t, streams.ErrInvalidAmount, unstake(maxUint256, alice))
}

func TestSpillover(t *testing.T) {
	h := newHarness(t)
	h.fund(rewardToken, sponsor, stakingAddr, perEpoch)
	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, perEpoch))

	h.at(epochStart(1) + epochDuration/4)
	assert.Equal(t, perEpoch/4, h.spillover(stakingAddr, stakeToken, rewardToken))

	h.at(epochStart(4))
	assert.Equal(t, perEpoch, h.spillover(stakingAddr, stakeToken, rewardToken))

	var paid *uint256.Int
	require.NoError(t, h.streamsCall(stakingAddr, carol, func(s *streams.Streams) (err error) {
		paid, err = s.ClaimSpilloverReward(streams.Origin{Sender: carol}, stakeToken, rewardToken, carol)
		return
	}))
	assert.Equal(t, perEpoch, paid.Uint64())
	assert.Equal(t, perEpoch, h.tokenBalance(rewardToken, carol))
	assert.Equal(t, uint64(0), h.spillover(stakingAddr, stakeToken, rewardToken))

	err := h.streamsCall(stakingAddr, carol, func(s *streams.Streams) error {
		_, err := s.ClaimSpilloverReward(streams.Origin{Sender: carol}, stakeToken, rewardToken, thor.Address{})
		return err
	})
	assert.Equal(t, streams.ErrInvalidRecipient, err)
}

func TestRegisterCurrentEpoch(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)
	h.fund(rewardToken, sponsor, stakingAddr, perEpoch)
	require.NoError(t, h.stake(alice, uint256.NewInt(1000)))
	require.NoError(t, h.enable(stakingAddr, alice, stakeToken, rewardToken))

	// a quarter of the current epoch has already passed and can only spill over
	h.at(epochStart(0) + epochDuration/4)
	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 0, perEpoch))
	assert.Equal(t, perEpoch/4, h.spillover(stakingAddr, stakeToken, rewardToken))

	h.at(epochStart(1))
	assert.Equal(t, perEpoch*3/4, h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
	assert.Equal(t, perEpoch/4, h.spillover(stakingAddr, stakeToken, rewardToken))
}

func TestRegisterCurrentEpochUneven(t *testing.T) {
	tests := []struct {
		name    string
		amount  uint64
		elapsed uint64
	}{
		{"odd amount", 100, 123},
		{"tiny amount", 7, 1},
		{"one second left", 3, epochDuration - 1},
		{"at the boundary", 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.fund(rewardToken, sponsor, stakingAddr, tt.amount)
			// enabled with nothing staked, so the whole amount spills over
			require.NoError(t, h.enable(stakingAddr, alice, stakeToken, rewardToken))

			h.at(epochStart(0) + tt.elapsed)
			require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 0, tt.amount))

			h.at(epochStart(1))
			assert.Equal(t, tt.amount, h.spillover(stakingAddr, stakeToken, rewardToken))
			assert.Equal(t, uint64(0), h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
		})
	}
}

func TestUpdateReward(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)
	h.fund(rewardToken, sponsor, stakingAddr, 2*perEpoch)
	require.NoError(t, h.stake(alice, uint256.NewInt(1000)))
	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, perEpoch, perEpoch))

	h.at(epochStart(2))
	update := func(recipient thor.Address) uint64 {
		var paid *uint256.Int
		require.NoError(t, h.streamsCall(stakingAddr, alice, func(s *streams.Streams) (err error) {
			paid, err = s.UpdateReward(streams.Origin{Sender: alice}, stakeToken, rewardToken, recipient)
			return
		}))
		return paid.Uint64()
	}

	// settling without a recipient keeps the spillover
	assert.Equal(t, uint64(0), update(thor.Address{}))
	h.query(stakingAddr, func(s *streams.Streams) error {
		view, err := s.Distribution(stakeToken, rewardToken)
		require.NoError(t, err)
		assert.Equal(t, perEpoch, view.Spillover.Uint64())
		assert.Equal(t, epochStart(2), view.LastUpdated)
		return nil
	})

	require.NoError(t, h.enable(stakingAddr, alice, stakeToken, rewardToken))
	h.at(epochStart(3))
	assert.Equal(t, perEpoch, update(carol))
	assert.Equal(t, perEpoch, h.tokenBalance(rewardToken, carol))
	assert.Equal(t, perEpoch, h.earned(stakingAddr, alice, stakeToken, rewardToken, false))

	h.query(stakingAddr, func(s *streams.Streams) error {
		_, claimable, err := s.AccountReward(alice, stakeToken, rewardToken)
		require.NoError(t, err)
		assert.Equal(t, perEpoch, claimable.Uint64())
		return nil
	})
}

func TestDisable(t *testing.T) {
	for _, forfeit := range []bool{false, true} {
		h := newHarness(t)
		h.fund(stakeToken, alice, stakingAddr, 1000)
		h.fund(stakeToken, bob, stakingAddr, 1000)
		h.fund(rewardToken, sponsor, stakingAddr, perEpoch)
		for _, acct := range []thor.Address{alice, bob} {
			require.NoError(t, h.stake(acct, uint256.NewInt(1000)))
			require.NoError(t, h.enable(stakingAddr, acct, stakeToken, rewardToken))
		}
		require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, perEpoch))

		h.at(epochStart(1) + epochDuration/2)
		require.NoError(t, h.disable(stakingAddr, alice, stakeToken, rewardToken, forfeit))
		// disabling twice is a no-op
		require.NoError(t, h.disable(stakingAddr, alice, stakeToken, rewardToken, forfeit))

		h.at(epochStart(2))
		if forfeit {
			// alice's share of the unsettled half epoch goes to bob
			assert.Equal(t, uint64(0), h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
			assert.Equal(t, perEpoch, h.earned(stakingAddr, bob, stakeToken, rewardToken, false))
		} else {
			assert.Equal(t, perEpoch/4, h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
			assert.Equal(t, perEpoch*3/4, h.earned(stakingAddr, bob, stakeToken, rewardToken, false))
		}

		h.query(stakingAddr, func(s *streams.Streams) error {
			enabled, err := s.IsRewardEnabled(alice, stakeToken, rewardToken)
			require.NoError(t, err)
			assert.False(t, enabled)
			eligible, err := s.TotalRewardedEligible(stakeToken, rewardToken)
			require.NoError(t, err)
			assert.Equal(t, uint64(1000), eligible.Uint64())
			return nil
		})
	}
}

func TestForfeitBoundsWork(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)
	h.fund(rewardToken, sponsor, stakingAddr, thor.MaxDistributionLength*perEpoch)
	require.NoError(t, h.stake(alice, uint256.NewInt(1000)))
	require.NoError(t, h.enable(stakingAddr, alice, stakeToken, rewardToken))

	amounts := make([]uint64, thor.MaxDistributionLength)
	for i := range amounts {
		amounts[i] = perEpoch
	}
	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, amounts...))
	h.at(epochStart(thor.MaxDistributionLength + 10))

	measure := func(forfeit bool) uint64 {
		gas, err := h.runWithGas(alice, thor.DefaultCallGasLimit, func(env *xenv.Environment) error {
			s, err := bindStreams(env, stakingAddr)
			if err != nil {
				return err
			}
			if err := s.DisableReward(streams.Origin{Sender: alice}, stakeToken, rewardToken, forfeit); err != nil {
				return err
			}
			return errRollback
		})
		require.Equal(t, errRollback, err)
		return gas
	}
	withWalk, withoutWalk := measure(false), measure(true)
	assert.GreaterOrEqual(t, withWalk-withoutWalk, uint64(thor.MaxDistributionLength)*thor.SloadGas)

	// a gas limit that only covers the constant work still lets alice leave
	disable := func(forfeit bool) error {
		_, err := h.runWithGas(alice, withoutWalk, func(env *xenv.Environment) error {
			s, err := bindStreams(env, stakingAddr)
			if err != nil {
				return err
			}
			return s.DisableReward(streams.Origin{Sender: alice}, stakeToken, rewardToken, forfeit)
		})
		return err
	}
	assert.ErrorIs(t, disable(false), xenv.ErrOutOfGas)
	require.NoError(t, disable(true))

	h.query(stakingAddr, func(s *streams.Streams) error {
		enabled, err := s.EnabledRewards(alice, stakeToken)
		require.NoError(t, err)
		assert.Empty(t, enabled)
		return nil
	})
}

func TestRegisterValidation(t *testing.T) {
	h := newHarness(t)
	h.fund(rewardToken, sponsor, stakingAddr, 1_000_000)
	h.at(epochStart(2))

	tooLong := make([]uint64, thor.MaxDistributionLength+1)
	for i := range tooLong {
		tooLong[i] = 1
	}
	tests := []struct {
		name     string
		rewarded thor.Address
		reward   thor.Address
		start    uint64
		amounts  []uint64
		err      error
	}{
		{"zero rewarded", thor.Address{}, rewardToken, 0, []uint64{1}, streams.ErrInvalidAddress},
		{"zero reward", stakeToken, thor.Address{}, 0, []uint64{1}, streams.ErrInvalidAddress},
		{"self reward", rewardToken, rewardToken, 0, []uint64{1}, streams.ErrInvalidAddress},
		{"past epoch", stakeToken, rewardToken, 1, []uint64{1}, streams.ErrInvalidEpoch},
		{"too far ahead", stakeToken, rewardToken, 2 + thor.MaxEpochsAhead + 1, []uint64{1}, streams.ErrInvalidEpoch},
		{"empty", stakeToken, rewardToken, 3, nil, streams.ErrInvalidDistribution},
		{"too long", stakeToken, rewardToken, 3, tooLong, streams.ErrInvalidDistribution},
		{"all zero", stakeToken, rewardToken, 3, []uint64{0, 0}, streams.ErrInvalidAmount},
		{"fee token", stakeToken, feeToken, 3, []uint64{100}, streams.ErrInvalidAmount},
	}
	h.fund(feeToken, sponsor, stakingAddr, 1000)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.err, h.register(stakingAddr, tt.rewarded, tt.reward, tt.start, tt.amounts...))
		})
	}

	// a failed registration leaves nothing behind
	h.query(stakingAddr, func(s *streams.Streams) error {
		rewards, err := s.Rewards(stakeToken)
		require.NoError(t, err)
		assert.Empty(t, rewards)
		return nil
	})
	assert.Equal(t, uint64(1000), h.tokenBalance(feeToken, sponsor))

	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 2+thor.MaxEpochsAhead, 1, 0, 2))

	huge := new(uint256.Int).Add(thor.MaxAmount, uint256.NewInt(1))
	err := h.streamsCall(stakingAddr, sponsor, func(s *streams.Streams) error {
		return s.RegisterReward(streams.Origin{Sender: sponsor}, stakeToken, rewardToken, 0, []*uint256.Int{huge})
	})
	assert.Equal(t, streams.ErrInvalidAmount, err)

	// the accumulator bound caps what a distribution may ever hold
	limit := new(uint256.Int).Div(thor.MaxAccumulatorBase, thor.StreamsScaler)
	err = h.streamsCall(stakingAddr, sponsor, func(s *streams.Streams) error {
		return s.RegisterReward(streams.Origin{Sender: sponsor}, stakeToken, rewardToken, 0, []*uint256.Int{limit})
	})
	assert.Equal(t, streams.ErrAccumulatorOverflow, err)
}

func TestEnableValidation(t *testing.T) {
	h := newHarness(t)
	tests := []struct {
		name     string
		rewarded thor.Address
		reward   thor.Address
		err      error
	}{
		{"zero rewarded", thor.Address{}, rewardToken, streams.ErrInvalidAddress},
		{"zero reward", stakeToken, thor.Address{}, streams.ErrInvalidAddress},
		{"self reward", stakeToken, stakeToken, streams.ErrInvalidAddress},
		{"valid", stakeToken, rewardToken, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.err, h.enable(stakingAddr, alice, tt.rewarded, tt.reward))
		})
	}

	// rejected pairs leave no enabled entry behind
	h.query(stakingAddr, func(s *streams.Streams) error {
		for _, rewarded := range []thor.Address{{}, stakeToken} {
			enabled, err := s.EnabledRewards(alice, rewarded)
			require.NoError(t, err)
			if rewarded == stakeToken {
				assert.Equal(t, []thor.Address{rewardToken}, enabled)
			} else {
				assert.Empty(t, enabled)
			}
		}
		return nil
	})
}

func TestStakeFeeToken(t *testing.T) {
	h := newHarness(t)
	h.fund(feeToken, alice, stakingAddr, 1000)
	err := h.staking(alice, func(s *streams.Staking) error {
		return s.Stake(streams.Origin{Sender: alice}, feeToken, uint256.NewInt(500))
	})
	assert.Equal(t, streams.ErrInvalidAmount, err)
	assert.Equal(t, uint64(1000), h.tokenBalance(feeToken, alice))
}

func TestTooManyRewards(t *testing.T) {
	h := newHarness(t)
	for i := range thor.MaxRewardsEnabled {
		reward := thor.BytesToAddress([]byte{0xee, byte(i)})
		require.NoError(t, h.enable(stakingAddr, alice, stakeToken, reward))
	}
	err := h.enable(stakingAddr, alice, stakeToken, rewardToken)
	assert.Equal(t, streams.ErrTooManyRewardsEnabled, err)
	// re-enabling a member is still a no-op
	require.NoError(t, h.enable(stakingAddr, alice, stakeToken, thor.BytesToAddress([]byte{0xee, 0})))

	assert.Equal(t, streams.ErrInvalidAddress, h.enable(stakingAddr, bob, stakeToken, thor.Address{}))
}

func TestOperators(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)
	h.fund(rewardToken, sponsor, stakingAddr, perEpoch)
	require.NoError(t, h.stake(alice, uint256.NewInt(1000)))
	require.NoError(t, h.enable(stakingAddr, alice, stakeToken, rewardToken))
	require.NoError(t, h.register(stakingAddr, stakeToken, rewardToken, 1, perEpoch))
	h.at(epochStart(2))

	claimFor := func(sender thor.Address) error {
		return h.streamsCall(stakingAddr, sender, func(s *streams.Streams) error {
			_, err := s.ClaimReward(streams.Origin{Sender: sender, OnBehalfOf: alice}, stakeToken, rewardToken, sender, false)
			return err
		})
	}
	assert.Equal(t, streams.ErrNotAuthorized, claimFor(bob))

	require.NoError(t, h.run(alice, func(env *xenv.Environment) error {
		_, err := operators.New(operatorsAddr, env).SetOperator(bob, true)
		return err
	}))
	require.NoError(t, claimFor(bob))
	assert.Equal(t, perEpoch, h.tokenBalance(rewardToken, bob))
	assert.Equal(t, uint64(0), h.earned(stakingAddr, alice, stakeToken, rewardToken, false))
}

func TestTracking(t *testing.T) {
	h := newHarness(t)
	h.fund(rewardToken, sponsor, trackingAddr, perEpoch)

	require.NoError(t, h.tokenCall(trackedToken, alice, func(tok *token.Token) error {
		return tok.Mint(alice, uint256.NewInt(3000))
	}))
	require.NoError(t, h.enable(trackingAddr, alice, trackedToken, rewardToken))
	require.NoError(t, h.enable(trackingAddr, bob, trackedToken, rewardToken))
	require.NoError(t, h.register(trackingAddr, trackedToken, rewardToken, 1, perEpoch))

	h.at(epochStart(1) + epochDuration/2)
	require.NoError(t, h.tokenCall(trackedToken, alice, func(tok *token.Token) error {
		return tok.Transfer(bob, uint256.NewInt(1000))
	}))

	h.query(trackingAddr, func(s *streams.Streams) error {
		bal, err := s.BalanceOf(bob, trackedToken)
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), bal.Uint64())
		eligible, err := s.TotalRewardedEligible(trackedToken, rewardToken)
		require.NoError(t, err)
		assert.Equal(t, uint64(3000), eligible.Uint64())
		return nil
	})

	h.at(epochStart(2))
	// alice: whole first half, two thirds of the second
	assert.Equal(t, perEpoch/2+perEpoch/3, h.earned(trackingAddr, alice, trackedToken, rewardToken, false))
	assert.Equal(t, perEpoch/6, h.earned(trackingAddr, bob, trackedToken, rewardToken, false))

	// hook calls are booked against the calling asset
	require.NoError(t, h.run(carol, func(env *xenv.Environment) error {
		s, err := bindStreams(env, trackingAddr)
		if err != nil {
			return err
		}
		return streams.NewTracking(s).BalanceTrackerHook(carol, uint256.NewInt(5), false)
	}))
	h.query(trackingAddr, func(s *streams.Streams) error {
		bal, err := s.BalanceOf(carol, trackedToken)
		require.NoError(t, err)
		assert.True(t, bal.IsZero())
		bal, err = s.BalanceOf(carol, carol)
		require.NoError(t, err)
		assert.Equal(t, uint64(5), bal.Uint64())
		return nil
	})
}

func TestTrackedTransferOutOfGas(t *testing.T) {
	tests := []struct {
		name   string
		gas    uint64
		reject bool
	}{
		{"starved", 25_000, true},
		// enough for the token's own writes, too little for the hook and its retry
		{"starved tracker", 40_000, true},
		{"tight", 60_000, false},
		{"plenty", thor.DefaultCallGasLimit, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.fund(rewardToken, sponsor, trackingAddr, perEpoch)
			require.NoError(t, h.tokenCall(trackedToken, alice, func(tok *token.Token) error {
				return tok.Mint(alice, uint256.NewInt(3000))
			}))
			require.NoError(t, h.enable(trackingAddr, alice, trackedToken, rewardToken))
			require.NoError(t, h.register(trackingAddr, trackedToken, rewardToken, 1, perEpoch))

			h.at(epochStart(1) + epochDuration/2)
			err := h.tokenCallWithGas(trackedToken, alice, tt.gas, func(tok *token.Token) error {
				return tok.Transfer(bob, uint256.NewInt(3000))
			})
			if tt.reject {
				require.Error(t, err)
			}

			// whatever happened, the ledger agrees with the token
			held := h.tokenBalance(trackedToken, alice)
			h.query(trackingAddr, func(s *streams.Streams) error {
				bal, err := s.BalanceOf(alice, trackedToken)
				require.NoError(t, err)
				assert.Equal(t, held, bal.Uint64())
				eligible, err := s.TotalRewardedEligible(trackedToken, rewardToken)
				require.NoError(t, err)
				assert.Equal(t, held, eligible.Uint64())
				return nil
			})
			if err != nil {
				assert.Equal(t, uint64(3000), held)
				assert.Equal(t, uint64(0), h.tokenBalance(trackedToken, bob))
			}
		})
	}
}

func TestEvents(t *testing.T) {
	h := newHarness(t)
	h.fund(stakeToken, alice, stakingAddr, 1000)

	var events []*xenv.Event
	require.NoError(t, h.run(alice, func(env *xenv.Environment) error {
		s, err := bindStreams(env, stakingAddr)
		if err != nil {
			return err
		}
		if err := streams.NewStaking(s).Stake(streams.Origin{Sender: alice}, stakeToken, uint256.NewInt(10)); err != nil {
			return err
		}
		events = env.Events()
		return nil
	}))
	require.Len(t, events, 2)

	transfer, _ := token.ABI.EventByName("Transfer")
	assert.Equal(t, stakeToken, events[0].Address)
	assert.Equal(t, transfer.ID(), events[0].Topics[0])

	staked, _ := streams.ABI.EventByName("Staked")
	assert.Equal(t, stakingAddr, events[1].Address)
	assert.Equal(t, staked.ID(), events[1].Topics[0])
	assert.Equal(t, thor.BytesToBytes32(alice.Bytes()), events[1].Topics[1])
	assert.Equal(t, thor.BytesToBytes32(stakeToken.Bytes()), events[1].Topics[2])

	var decoded struct{ Amount *big.Int }
	require.NoError(t, staked.Decode(events[1].Data, &decoded))
	assert.Equal(t, int64(10), decoded.Amount.Int64())
}
