// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pkg/errors"

	"github.com/vechain/streams/builtin/reverts"
	"github.com/vechain/streams/kv"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/state"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

var (
	logger = log.WithContext("pkg", "runtime")

	// ErrOutOfGas is returned when a call exhausts its gas limit.
	ErrOutOfGas = xenv.ErrOutOfGas

	// address under which the runtime keeps its own bookkeeping
	runtimeAddress = thor.BytesToAddress([]byte("Runtime"))
	numberKey      = thor.BytesToBytes32([]byte("number"))
	timeKey        = thor.BytesToBytes32([]byte("time"))
)

// Proc is the body of a call.
type Proc func(env *xenv.Environment) error

// Receipt describes a committed or failed call.
type Receipt struct {
	Method  string
	Caller  thor.Address
	Number  uint32
	Time    uint64
	GasUsed uint64
	Events  []*xenv.Event
	// Changes is the number of storage slots the call wrote and ChangesHash digests them in write order.
	Changes     int
	ChangesHash thor.Bytes32
}

// Runtime executes calls one at a time against a single state, committing each successful call
// atomically to the underlying store.
type Runtime struct {
	mu       sync.Mutex
	state    *state.State
	clock    clockwork.Clock
	gasLimit uint64

	number   uint32
	lastTime uint64

	listeners []func(*Receipt)
}

// New create a Runtime on top of store. A zero gasLimit selects thor.DefaultCallGasLimit.
func New(store kv.Store, clock clockwork.Clock, gasLimit uint64) (*Runtime, error) {
	if gasLimit == 0 {
		gasLimit = thor.DefaultCallGasLimit
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	st := state.New(store)

	number, err := st.GetStorage(runtimeAddress, numberKey)
	if err != nil {
		return nil, err
	}
	lastTime, err := st.GetStorage(runtimeAddress, timeKey)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{
		state:    st,
		clock:    clock,
		gasLimit: gasLimit,
		number:   uint32(number.Uint64()),
		lastTime: lastTime.Uint64(),
	}
	logger.Debug("runtime loaded", "number", rt.number, "time", rt.lastTime)
	return rt, nil
}

func (rt *Runtime) Clock() clockwork.Clock { return rt.clock }
func (rt *Runtime) GasLimit() uint64       { return rt.gasLimit }

// Number returns the number of the last committed call.
func (rt *Runtime) Number() uint32 {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.number
}

// OnCommit registers fn to receive the receipt of every committed call, in commit order.
func (rt *Runtime) OnCommit(fn func(*Receipt)) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.listeners = append(rt.listeners, fn)
}

// now never goes backwards, even if the wall clock does.
func (rt *Runtime) now() uint64 {
	now := uint64(rt.clock.Now().Unix())
	return max(now, rt.lastTime)
}

// Execute runs proc as caller. On any failure, including running out of gas, the call's state
// changes and events are discarded and the error is returned along with the receipt.
func (rt *Runtime) Execute(method string, caller thor.Address, proc Proc) (*Receipt, error) {
	return rt.ExecuteWithGas(method, caller, rt.gasLimit, proc)
}

// ExecuteWithGas is like Execute with an explicit gas limit.
func (rt *Runtime) ExecuteWithGas(method string, caller thor.Address, gasLimit uint64, proc Proc) (*Receipt, error) {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	start := time.Now()
	ctx := &xenv.BlockContext{
		Number: rt.number + 1,
		Time:   rt.now(),
	}
	env := xenv.New(rt.state, ctx, caller, gasLimit)
	receipt := &Receipt{
		Method: method,
		Caller: caller,
		Number: ctx.Number,
		Time:   ctx.Time,
	}

	checkpoint := rt.state.NewCheckpoint()
	err := env.Run(proc)
	receipt.GasUsed = env.GasUsed()
	if err != nil {
		rt.state.RevertTo(checkpoint)
		observeCall(method, outcome(err), receipt.GasUsed, time.Since(start))
		if reverts.IsRevertErr(err) || errors.Is(err, ErrOutOfGas) {
			logger.Debug("call reverted", "method", method, "caller", caller, "gas", receipt.GasUsed, "err", err)
		} else {
			logger.Info("call failed", "method", method, "caller", caller, "err", err)
		}
		return receipt, err
	}

	rt.state.SetStorage(runtimeAddress, numberKey, thor.Uint64ToBytes32(uint64(ctx.Number)))
	rt.state.SetStorage(runtimeAddress, timeKey, thor.Uint64ToBytes32(ctx.Time))
	stage := rt.state.Stage()
	receipt.Changes = stage.Len()
	receipt.ChangesHash = stage.Hash()
	if err := stage.Commit(); err != nil {
		// the journal still holds the call, drop it to keep memory and store consistent
		rt.state.RevertTo(checkpoint)
		logger.Error("failed to commit call", "method", method, "err", err)
		return receipt, errors.Wrap(err, "commit")
	}
	rt.number = ctx.Number
	rt.lastTime = ctx.Time
	receipt.Events = env.Events()

	observeCall(method, "success", receipt.GasUsed, time.Since(start))
	logger.Debug("call committed", "method", method, "caller", caller, "number", receipt.Number, "gas", receipt.GasUsed, "events", len(receipt.Events), "changes", receipt.Changes)

	for _, fn := range rt.listeners {
		fn(receipt)
	}
	return receipt, nil
}

// View runs proc against the current state and discards whatever it changes.
func (rt *Runtime) View(caller thor.Address, proc Proc) error {
	rt.mu.Lock()
	defer rt.mu.Unlock()

	ctx := &xenv.BlockContext{
		Number: rt.number,
		Time:   rt.now(),
	}
	checkpoint := rt.state.NewCheckpoint()
	defer rt.state.RevertTo(checkpoint)

	return xenv.New(rt.state, ctx, caller, rt.gasLimit).Run(proc)
}

func outcome(err error) string {
	switch {
	case errors.Is(err, ErrOutOfGas):
		return "out_of_gas"
	case reverts.IsRevertErr(err):
		return "reverted"
	default:
		return "failed"
	}
}
