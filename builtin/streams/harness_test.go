// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams_test

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/builtin/operators"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/builtin/token"
	"github.com/vechain/streams/lvldb"
	"github.com/vechain/streams/state"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

const (
	epochDuration = thor.MinEpochDuration
	origin        = uint64(1_000_000)
)

var (
	stakingAddr   = thor.BytesToAddress([]byte("StreamsStaking"))
	trackingAddr  = thor.BytesToAddress([]byte("StreamsTracking"))
	operatorsAddr = thor.BytesToAddress([]byte("Operators"))

	stakeToken   = thor.BytesToAddress([]byte("STK"))
	trackedToken = thor.BytesToAddress([]byte("TRK"))
	rewardToken  = thor.BytesToAddress([]byte("RWD"))
	rewardToken2 = thor.BytesToAddress([]byte("RWD2"))
	feeToken     = thor.BytesToAddress([]byte("FEE"))

	sponsor = thor.BytesToAddress([]byte("sponsor"))
	alice   = thor.BytesToAddress([]byte("alice"))
	bob     = thor.BytesToAddress([]byte("bob"))
	carol   = thor.BytesToAddress([]byte("carol"))

	maxUint256 = new(uint256.Int).SetAllOne()

	errRollback = errors.New("rollback")
)

type tokenAssets struct {
	env *xenv.Environment
}

func (a tokenAssets) Asset(addr thor.Address) (streams.Asset, error) {
	return token.NewClient(addr, a.env, resolveTracker), nil
}

func bindStreams(env *xenv.Environment, addr thor.Address) (*streams.Streams, error) {
	return streams.New(addr, env, tokenAssets{env}, operators.New(operatorsAddr, env))
}

func resolveTracker(env *xenv.Environment, addr thor.Address) (token.BalanceTracker, error) {
	s, err := bindStreams(env, addr)
	if err != nil {
		return nil, err
	}
	return streams.NewTracking(s), nil
}

// harness runs every call in its own environment, rolling the state back when the call fails.
type harness struct {
	t      *testing.T
	st     *state.State
	now    uint64
	number uint32
}

func newHarness(t *testing.T) *harness {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := &harness{t: t, st: state.New(db), now: origin}
	h.mustRun(thor.Address{}, func(env *xenv.Environment) error {
		if _, err := streams.Deploy(stakingAddr, env, epochDuration); err != nil {
			return err
		}
		if _, err := streams.Deploy(trackingAddr, env, epochDuration); err != nil {
			return err
		}
		for _, cfg := range []struct {
			addr thor.Address
			cfg  *token.Config
		}{
			{stakeToken, &token.Config{Symbol: "STK"}},
			{trackedToken, &token.Config{Symbol: "TRK", Tracker: trackingAddr}},
			{rewardToken, &token.Config{Symbol: "RWD"}},
			{rewardToken2, &token.Config{Symbol: "RWD2"}},
			{feeToken, &token.Config{Symbol: "FEE", FeeBps: 100}},
		} {
			if err := token.Deploy(cfg.addr, env, cfg.cfg); err != nil {
				return err
			}
		}
		return nil
	})
	return h
}

func (h *harness) advance(seconds uint64) { h.now += seconds }

func (h *harness) at(t uint64) {
	require.GreaterOrEqual(h.t, t, h.now)
	h.now = t
}

func (h *harness) runWithGas(caller thor.Address, gas uint64, proc func(env *xenv.Environment) error) (uint64, error) {
	h.number++
	env := xenv.New(h.st, &xenv.BlockContext{Number: h.number, Time: h.now}, caller, gas)
	checkpoint := h.st.NewCheckpoint()
	err := env.Run(proc)
	if err != nil {
		h.st.RevertTo(checkpoint)
	}
	return env.GasUsed(), err
}

func (h *harness) run(caller thor.Address, proc func(env *xenv.Environment) error) error {
	_, err := h.runWithGas(caller, thor.DefaultCallGasLimit, proc)
	return err
}

func (h *harness) mustRun(caller thor.Address, proc func(env *xenv.Environment) error) {
	require.NoError(h.t, h.run(caller, proc))
}

// view runs proc and discards whatever it changed.
func (h *harness) view(proc func(env *xenv.Environment) error) {
	env := xenv.New(h.st, &xenv.BlockContext{Number: h.number, Time: h.now}, thor.Address{}, thor.DefaultCallGasLimit)
	checkpoint := h.st.NewCheckpoint()
	defer h.st.RevertTo(checkpoint)
	require.NoError(h.t, env.Run(proc))
}

func (h *harness) streamsCall(addr, caller thor.Address, fn func(s *streams.Streams) error) error {
	return h.run(caller, func(env *xenv.Environment) error {
		s, err := bindStreams(env, addr)
		if err != nil {
			return err
		}
		return fn(s)
	})
}

func (h *harness) staking(caller thor.Address, fn func(s *streams.Staking) error) error {
	return h.streamsCall(stakingAddr, caller, func(s *streams.Streams) error {
		return fn(streams.NewStaking(s))
	})
}

func (h *harness) tokenCall(addr, caller thor.Address, fn func(t *token.Token) error) error {
	return h.tokenCallWithGas(addr, caller, thor.DefaultCallGasLimit, fn)
}

func (h *harness) tokenCallWithGas(addr, caller thor.Address, gas uint64, fn func(t *token.Token) error) error {
	_, err := h.runWithGas(caller, gas, func(env *xenv.Environment) error {
		t, err := token.New(addr, env, resolveTracker)
		if err != nil {
			return err
		}
		return fn(t)
	})
	return err
}

// fund mints amount of asset to owner and approves spender for all of it.
func (h *harness) fund(asset, owner, spender thor.Address, amount uint64) {
	require.NoError(h.t, h.tokenCall(asset, owner, func(t *token.Token) error {
		if err := t.Mint(owner, uint256.NewInt(amount)); err != nil {
			return err
		}
		return t.Approve(spender, maxUint256)
	}))
}

func (h *harness) tokenBalance(asset, owner thor.Address) uint64 {
	var bal *uint256.Int
	h.view(func(env *xenv.Environment) error {
		t, err := token.New(asset, env, nil)
		if err != nil {
			return err
		}
		bal, err = t.BalanceOf(owner)
		return err
	})
	return bal.Uint64()
}

func (h *harness) query(addr thor.Address, fn func(s *streams.Streams) error) {
	h.view(func(env *xenv.Environment) error {
		s, err := bindStreams(env, addr)
		if err != nil {
			return err
		}
		return fn(s)
	})
}

func (h *harness) earned(addr, acct, rewarded, reward thor.Address, forfeit bool) uint64 {
	var amount *uint256.Int
	h.query(addr, func(s *streams.Streams) (err error) {
		amount, err = s.EarnedReward(acct, rewarded, reward, forfeit)
		return
	})
	return amount.Uint64()
}

func (h *harness) spillover(addr, rewarded, reward thor.Address) uint64 {
	var amount *uint256.Int
	h.query(addr, func(s *streams.Streams) (err error) {
		amount, err = s.SpilloverReward(rewarded, reward)
		return
	})
	return amount.Uint64()
}

func (h *harness) register(addr, rewarded, reward thor.Address, start uint64, amounts ...uint64) error {
	list := make([]*uint256.Int, len(amounts))
	for i, a := range amounts {
		list[i] = uint256.NewInt(a)
	}
	return h.streamsCall(addr, sponsor, func(s *streams.Streams) error {
		return s.RegisterReward(streams.Origin{Sender: sponsor}, rewarded, reward, start, list)
	})
}

func (h *harness) stake(acct thor.Address, amount *uint256.Int) error {
	return h.staking(acct, func(s *streams.Staking) error {
		return s.Stake(streams.Origin{Sender: acct}, stakeToken, amount)
	})
}

func (h *harness) enable(addr, acct, rewarded, reward thor.Address) error {
	return h.streamsCall(addr, acct, func(s *streams.Streams) error {
		return s.EnableReward(streams.Origin{Sender: acct}, rewarded, reward)
	})
}

func (h *harness) disable(addr, acct, rewarded, reward thor.Address, forfeit bool) error {
	return h.streamsCall(addr, acct, func(s *streams.Streams) error {
		return s.DisableReward(streams.Origin{Sender: acct}, rewarded, reward, forfeit)
	})
}

func (h *harness) claim(addr, acct, rewarded, reward thor.Address) (uint64, error) {
	var amount *uint256.Int
	err := h.streamsCall(addr, acct, func(s *streams.Streams) (err error) {
		amount, err = s.ClaimReward(streams.Origin{Sender: acct}, rewarded, reward, acct, false)
		return
	})
	if err != nil {
		return 0, err
	}
	return amount.Uint64(), nil
}

func epochStart(e uint64) uint64 {
	return origin + e*epochDuration
}
