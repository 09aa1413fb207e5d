// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"context"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/builtin/operators"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/builtin/token"
	"github.com/vechain/streams/eventdb"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

var errNoEventDB = errors.New("event history disabled")

// EpochInfo describes the epoch grid of a deployment at the time of the query.
type EpochInfo struct {
	Current  uint64
	Start    uint64
	End      uint64
	Origin   uint64
	Duration uint64
}

// TokenInfo describes a deployed token.
type TokenInfo struct {
	token.Config
	Address     thor.Address
	TotalSupply *uint256.Int
}

func (e *Engine) query(v Variant, fn func(s *streams.Streams) error) error {
	addr, err := v.Address()
	if err != nil {
		return err
	}
	return e.rt.View(thor.Address{}, func(env *xenv.Environment) error {
		s, err := bindStreams(env, addr)
		if err != nil {
			return err
		}
		return fn(s)
	})
}

// Epoch returns the epoch grid of v. A nil epoch selects the current one.
func (e *Engine) Epoch(v Variant, epoch *uint64) (*EpochInfo, error) {
	var info EpochInfo
	err := e.query(v, func(s *streams.Streams) error {
		clock := s.Clock()
		info.Current = s.CurrentEpoch()
		ep := info.Current
		if epoch != nil {
			ep = *epoch
		}
		info.Start, info.End = s.EpochStart(ep), s.EpochEnd(ep)
		info.Origin, info.Duration = clock.Origin, clock.Duration
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// EpochOf returns the epoch containing the unix time t.
func (e *Engine) EpochOf(v Variant, t uint64) (epoch uint64, err error) {
	err = e.query(v, func(s *streams.Streams) error {
		epoch = s.EpochOf(t)
		return nil
	})
	return
}

// RewardAmount returns the amount scheduled for epoch, the current one if nil.
func (e *Engine) RewardAmount(v Variant, rewarded, reward thor.Address, epoch *uint64) (amount *uint256.Int, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		if epoch == nil {
			amount, err = s.CurrentRewardAmount(rewarded, reward)
		} else {
			amount, err = s.RewardAmount(rewarded, reward, *epoch)
		}
		return
	})
	return
}

func (e *Engine) Distribution(v Variant, rewarded, reward thor.Address) (view *streams.DistributionView, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		view, err = s.Distribution(rewarded, reward)
		return
	})
	return
}

func (e *Engine) Rewards(v Variant, rewarded thor.Address) (rewards []thor.Address, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		rewards, err = s.Rewards(rewarded)
		return
	})
	return
}

func (e *Engine) EnabledRewards(v Variant, acct, rewarded thor.Address) (rewards []thor.Address, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		rewards, err = s.EnabledRewards(acct, rewarded)
		return
	})
	return
}

func (e *Engine) IsRewardEnabled(v Variant, acct, rewarded, reward thor.Address) (enabled bool, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		enabled, err = s.IsRewardEnabled(acct, rewarded, reward)
		return
	})
	return
}

func (e *Engine) BalanceOf(v Variant, acct, rewarded thor.Address) (balance *uint256.Int, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		balance, err = s.BalanceOf(acct, rewarded)
		return
	})
	return
}

func (e *Engine) EarnedReward(v Variant, acct, rewarded, reward thor.Address, forfeit bool) (amount *uint256.Int, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		amount, err = s.EarnedReward(acct, rewarded, reward, forfeit)
		return
	})
	return
}

func (e *Engine) SpilloverReward(v Variant, rewarded, reward thor.Address) (amount *uint256.Int, err error) {
	err = e.query(v, func(s *streams.Streams) (err error) {
		amount, err = s.SpilloverReward(rewarded, reward)
		return
	})
	return
}

func (e *Engine) Token(addr thor.Address) (*TokenInfo, error) {
	var info *TokenInfo
	err := e.rt.View(thor.Address{}, func(env *xenv.Environment) error {
		t, err := bindToken(env, addr)
		if err != nil {
			return err
		}
		supply, err := t.TotalSupply()
		if err != nil {
			return err
		}
		info = &TokenInfo{Config: t.Config(), Address: addr, TotalSupply: supply}
		return nil
	})
	return info, err
}

func (e *Engine) TokenBalance(addr, owner thor.Address) (balance *uint256.Int, err error) {
	err = e.rt.View(thor.Address{}, func(env *xenv.Environment) error {
		t, err := bindToken(env, addr)
		if err != nil {
			return err
		}
		balance, err = t.BalanceOf(owner)
		return err
	})
	return
}

func (e *Engine) Allowance(addr, owner, spender thor.Address) (allowance *uint256.Int, err error) {
	err = e.rt.View(thor.Address{}, func(env *xenv.Environment) error {
		t, err := bindToken(env, addr)
		if err != nil {
			return err
		}
		allowance, err = t.Allowance(owner, spender)
		return err
	})
	return
}

func (e *Engine) Operators(owner thor.Address) (list []thor.Address, err error) {
	err = e.rt.View(thor.Address{}, func(env *xenv.Environment) (err error) {
		list, err = operators.New(OperatorsAddress, env).List(owner)
		return
	})
	return
}

// FilterEvents queries the event history.
func (e *Engine) FilterEvents(ctx context.Context, filter *eventdb.Filter) ([]*eventdb.Event, error) {
	if e.events == nil {
		return nil, errNoEventDB
	}
	return e.events.Filter(ctx, filter)
}
