// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	ethparams "github.com/ethereum/go-ethereum/params"
	"github.com/pkg/errors"

	"github.com/vechain/streams/state"
	"github.com/vechain/streams/thor"
)

// ErrOutOfGas is returned when a call exhausts its gas.
var ErrOutOfGas = errors.New("out of gas")

// BlockContext is the context a call is executed in.
type BlockContext struct {
	Number uint32 // sequence number of the call
	Time   uint64 // unix seconds
}

// Event is a log emitted by a contract.
// Topics[0] is the event id, the remaining topics hold indexed arguments.
type Event struct {
	Address thor.Address
	Topics  []thor.Bytes32
	Data    []byte
}

type vmError struct {
	cause error
}

type gasPool struct {
	limit uint64
	used  uint64
}

// Environment an env to execute native methods.
type Environment struct {
	state    *state.State
	blockCtx *BlockContext
	caller   thor.Address
	gas      *gasPool
	events   *[]*Event
}

// New create a new env.
func New(state *state.State, blockCtx *BlockContext, caller thor.Address, gasLimit uint64) *Environment {
	return &Environment{
		state:    state,
		blockCtx: blockCtx,
		caller:   caller,
		gas:      &gasPool{limit: gasLimit},
		events:   new([]*Event),
	}
}

func (env *Environment) State() *state.State         { return env.state }
func (env *Environment) BlockContext() *BlockContext { return env.blockCtx }
func (env *Environment) Caller() thor.Address        { return env.caller }
func (env *Environment) Events() []*Event            { return *env.events }
func (env *Environment) GasUsed() uint64             { return env.gas.used }
func (env *Environment) GasLeft() uint64             { return env.gas.limit - env.gas.used }

// UseGas consumes gas, and aborts the execution if not enough.
func (env *Environment) UseGas(gas uint64) {
	if env.GasLeft() < gas {
		env.gas.used = env.gas.limit
		panic(&vmError{ErrOutOfGas})
	}
	env.gas.used += gas
}

// Log emits an event and charges gas for it.
func (env *Environment) Log(address thor.Address, topics []thor.Bytes32, data []byte) {
	env.UseGas(ethparams.LogGas + ethparams.LogTopicGas*uint64(len(topics)) + ethparams.LogDataGas*uint64(len(data)))
	*env.events = append(*env.events, &Event{
		Address: address,
		Topics:  topics,
		Data:    data,
	})
}

// Call invokes proc as caller in a nested frame. The frame receives at most 63/64 of the gas
// left. If proc fails or runs out of gas, its state changes and events are discarded and the
// error is returned, while the parent frame keeps executing.
func (env *Environment) Call(caller thor.Address, proc func(env *Environment) error) (err error) {
	gasLimit := env.GasLeft() - env.GasLeft()/64
	sub := &Environment{
		state:    env.state,
		blockCtx: env.blockCtx,
		caller:   caller,
		gas:      &gasPool{limit: gasLimit},
		events:   new([]*Event),
	}

	checkpoint := env.state.NewCheckpoint()
	defer func() {
		if e := recover(); e != nil {
			rec, ok := e.(*vmError)
			if !ok {
				panic(e)
			}
			err = rec.cause
		}
		env.gas.used += sub.gas.used
		if err != nil {
			env.state.RevertTo(checkpoint)
			return
		}
		*env.events = append(*env.events, *sub.events...)
	}()
	return proc(sub)
}

// Run executes proc in the root frame, converting an out-of-gas abort into an error.
func (env *Environment) Run(proc func(env *Environment) error) (err error) {
	defer func() {
		if e := recover(); e != nil {
			rec, ok := e.(*vmError)
			if !ok {
				panic(e)
			}
			err = rec.cause
		}
	}()
	return proc(env)
}
