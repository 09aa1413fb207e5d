// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"github.com/vechain/streams/abi"
	"github.com/vechain/streams/builtin/operators"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/builtin/token"
	"github.com/vechain/streams/eventdb"
	"github.com/vechain/streams/runtime"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

func abiOf(addr thor.Address) *abi.ABI {
	switch addr {
	case StakingAddress, TrackingAddress:
		return streams.ABI
	case OperatorsAddress:
		return operators.ABI
	default:
		return token.ABI
	}
}

// toEventDB decodes the kind and the indexed addresses of ev when its emitter is known.
func toEventDB(receipt *runtime.Receipt, index int, ev *xenv.Event) *eventdb.Event {
	out := &eventdb.Event{
		Number:  receipt.Number,
		Index:   uint32(index),
		Time:    receipt.Time,
		Method:  receipt.Method,
		Caller:  receipt.Caller,
		Address: ev.Address,
		Data:    ev.Data,
	}
	for i := 0; i < len(ev.Topics) && i < len(out.Topics); i++ {
		out.Topics[i] = &ev.Topics[i]
	}
	if len(ev.Topics) == 0 {
		return out
	}

	decoded, ok := abiOf(ev.Address).EventByID(ev.Topics[0])
	if !ok {
		return out
	}
	out.Kind = decoded.Name()
	for i, name := range decoded.IndexedNames() {
		if i+1 >= len(ev.Topics) {
			break
		}
		addr := thor.BytesToAddress(ev.Topics[i+1].Bytes())
		switch name {
		case "account", "owner", "caller", "from":
			out.Account = &addr
		case "rewarded":
			out.Rewarded = &addr
		case "reward":
			out.Reward = &addr
		}
	}
	return out
}

// index stores the events of a committed call and hands them to subscribers. The call is
// already committed, so a failure only loses history.
func (e *Engine) index(receipt *runtime.Receipt) {
	if len(receipt.Events) == 0 {
		return
	}
	events := make([]*eventdb.Event, 0, len(receipt.Events))
	for i, ev := range receipt.Events {
		events = append(events, toEventDB(receipt, i, ev))
	}
	if e.events != nil {
		if err := e.events.Insert(events); err != nil {
			logger.Error("failed to index events", "number", receipt.Number, "method", receipt.Method, "err", err)
		}
	}
	e.feed.Send(events)
}
