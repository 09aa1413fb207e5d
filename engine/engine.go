// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package engine runs the streams deployments, the tokens they pay in and the operators registry
// on top of a single runtime.
package engine

import (
	"github.com/ethereum/go-ethereum/event"
	"github.com/holiman/uint256"
	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/vechain/streams/builtin/operators"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/builtin/token"
	"github.com/vechain/streams/eventdb"
	"github.com/vechain/streams/kv"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/runtime"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

var logger = log.WithContext("pkg", "engine")

// Config holds the engine parameters.
type Config struct {
	EpochDuration uint64 // applied on first start only
	CallGasLimit  uint64
}

// Engine is the node facade. Calls are executed one at a time in arrival order.
type Engine struct {
	rt     *runtime.Runtime
	events *eventdb.EventDB
	feed   event.Feed
}

// New opens the engine on store, deploying both streams variants on first start.
// events may be nil, in which case no history is kept.
func New(store kv.Store, events *eventdb.EventDB, clock clockwork.Clock, config Config) (*Engine, error) {
	rt, err := runtime.New(store, clock, config.CallGasLimit)
	if err != nil {
		return nil, err
	}
	e := &Engine{rt: rt, events: events}
	rt.OnCommit(e.index)
	if err := e.deploy(config.EpochDuration); err != nil {
		return nil, errors.Wrap(err, "deploy")
	}
	return e, nil
}

func (e *Engine) deploy(duration uint64) error {
	var pending []thor.Address
	err := e.rt.View(thor.Address{}, func(env *xenv.Environment) error {
		for _, addr := range []thor.Address{StakingAddress, TrackingAddress} {
			cfg, err := streams.ReadConfig(addr, env)
			switch {
			case errors.Is(err, streams.ErrNotDeployed):
				pending = append(pending, addr)
			case err != nil:
				return err
			case cfg.Duration != duration && duration != 0:
				logger.Warn("epoch duration is fixed at deployment, ignoring configured value",
					"address", addr, "deployed", cfg.Duration, "configured", duration)
			}
		}
		return nil
	})
	if err != nil || len(pending) == 0 {
		return err
	}
	if duration == 0 {
		duration = thor.MinEpochDuration
	}
	_, err = e.rt.Execute("deploy", thor.Address{}, func(env *xenv.Environment) error {
		for _, addr := range pending {
			if _, err := streams.Deploy(addr, env, duration); err != nil {
				return err
			}
		}
		return nil
	})
	return err
}

func (e *Engine) Runtime() *runtime.Runtime { return e.rt }
func (e *Engine) Events() *eventdb.EventDB  { return e.events }

// SubscribeEvents delivers the decoded events of every committed call to ch, whether or not
// the history is kept. A slow receiver stalls commits, so ch should be drained promptly.
func (e *Engine) SubscribeEvents(ch chan<- []*eventdb.Event) event.Subscription {
	return e.feed.Subscribe(ch)
}

func (e *Engine) streamsCall(method string, v Variant, origin streams.Origin, fn func(s *streams.Streams) error) (*runtime.Receipt, error) {
	addr, err := v.Address()
	if err != nil {
		return nil, err
	}
	return e.rt.Execute(method, origin.Sender, func(env *xenv.Environment) error {
		s, err := bindStreams(env, addr)
		if err != nil {
			return err
		}
		return fn(s)
	})
}

func (e *Engine) tokenCall(method string, caller, addr thor.Address, fn func(t *token.Token) error) (*runtime.Receipt, error) {
	return e.rt.Execute(method, caller, func(env *xenv.Environment) error {
		t, err := bindToken(env, addr)
		if err != nil {
			return err
		}
		return fn(t)
	})
}

//
// Streams
//

func (e *Engine) RegisterReward(v Variant, origin streams.Origin, rewarded, reward thor.Address, startEpoch uint64, amounts []*uint256.Int) (*runtime.Receipt, error) {
	return e.streamsCall("registerReward", v, origin, func(s *streams.Streams) error {
		return s.RegisterReward(origin, rewarded, reward, startEpoch, amounts)
	})
}

func (e *Engine) EnableReward(v Variant, origin streams.Origin, rewarded, reward thor.Address) (*runtime.Receipt, error) {
	return e.streamsCall("enableReward", v, origin, func(s *streams.Streams) error {
		return s.EnableReward(origin, rewarded, reward)
	})
}

func (e *Engine) DisableReward(v Variant, origin streams.Origin, rewarded, reward thor.Address, forfeit bool) (*runtime.Receipt, error) {
	return e.streamsCall("disableReward", v, origin, func(s *streams.Streams) error {
		return s.DisableReward(origin, rewarded, reward, forfeit)
	})
}

// ClaimReward returns the amount paid along with the receipt.
func (e *Engine) ClaimReward(v Variant, origin streams.Origin, rewarded, reward, recipient thor.Address, forfeit bool) (*uint256.Int, *runtime.Receipt, error) {
	var amount *uint256.Int
	receipt, err := e.streamsCall("claimReward", v, origin, func(s *streams.Streams) (err error) {
		amount, err = s.ClaimReward(origin, rewarded, reward, recipient, forfeit)
		return
	})
	return amount, receipt, err
}

func (e *Engine) ClaimSpilloverReward(v Variant, origin streams.Origin, rewarded, reward, recipient thor.Address) (*uint256.Int, *runtime.Receipt, error) {
	var amount *uint256.Int
	receipt, err := e.streamsCall("claimSpilloverReward", v, origin, func(s *streams.Streams) (err error) {
		amount, err = s.ClaimSpilloverReward(origin, rewarded, reward, recipient)
		return
	})
	return amount, receipt, err
}

func (e *Engine) UpdateReward(v Variant, origin streams.Origin, rewarded, reward, recipient thor.Address) (*uint256.Int, *runtime.Receipt, error) {
	var amount *uint256.Int
	receipt, err := e.streamsCall("updateReward", v, origin, func(s *streams.Streams) (err error) {
		amount, err = s.UpdateReward(origin, rewarded, reward, recipient)
		return
	})
	return amount, receipt, err
}

func (e *Engine) Stake(origin streams.Origin, rewarded thor.Address, amount *uint256.Int) (*runtime.Receipt, error) {
	return e.streamsCall("stake", Staking, origin, func(s *streams.Streams) error {
		return streams.NewStaking(s).Stake(origin, rewarded, amount)
	})
}

func (e *Engine) Unstake(origin streams.Origin, rewarded thor.Address, amount *uint256.Int, recipient thor.Address, forfeit bool) (*runtime.Receipt, error) {
	return e.streamsCall("unstake", Staking, origin, func(s *streams.Streams) error {
		return streams.NewStaking(s).Unstake(origin, rewarded, amount, recipient, forfeit)
	})
}

//
// Tokens
//

// DeployToken deploys a token under TokenAddress(symbol). A tracked token pushes its balances
// to the tracking deployment.
func (e *Engine) DeployToken(caller thor.Address, symbol string, minter thor.Address, feeBps uint64, tracked bool) (thor.Address, *runtime.Receipt, error) {
	addr := TokenAddress(symbol)
	cfg := &token.Config{Symbol: symbol, Minter: minter, FeeBps: feeBps}
	if tracked {
		cfg.Tracker = TrackingAddress
	}
	receipt, err := e.rt.Execute("deployToken", caller, func(env *xenv.Environment) error {
		return token.Deploy(addr, env, cfg)
	})
	return addr, receipt, err
}

func (e *Engine) Mint(caller, tokenAddr, to thor.Address, amount *uint256.Int) (*runtime.Receipt, error) {
	return e.tokenCall("mint", caller, tokenAddr, func(t *token.Token) error {
		return t.Mint(to, amount)
	})
}

func (e *Engine) Approve(caller, tokenAddr, spender thor.Address, amount *uint256.Int) (*runtime.Receipt, error) {
	return e.tokenCall("approve", caller, tokenAddr, func(t *token.Token) error {
		return t.Approve(spender, amount)
	})
}

func (e *Engine) Transfer(caller, tokenAddr, to thor.Address, amount *uint256.Int) (*runtime.Receipt, error) {
	return e.tokenCall("transfer", caller, tokenAddr, func(t *token.Token) error {
		return t.Transfer(to, amount)
	})
}

//
// Operators
//

func (e *Engine) SetOperator(caller, operator thor.Address, authorized bool) (*runtime.Receipt, error) {
	return e.rt.Execute("setOperator", caller, func(env *xenv.Environment) error {
		_, err := operators.New(OperatorsAddress, env).SetOperator(operator, authorized)
		return err
	})
}
