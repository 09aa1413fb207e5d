// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package types holds the JSON shapes shared by the API handlers.
package types

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/common/math"

	"github.com/vechain/streams/runtime"
	"github.com/vechain/streams/thor"
)

// Event is an event emitted by a committed call.
type Event struct {
	Address thor.Address    `json:"address"`
	Topics  []*thor.Bytes32 `json:"topics"`
	Data    hexutil.Bytes   `json:"data"`
}

// Receipt describes a committed call.
type Receipt struct {
	Number      uint32       `json:"number"`
	Time        uint64       `json:"time"`
	Method      string       `json:"method"`
	Caller      thor.Address `json:"caller"`
	GasUsed     uint64       `json:"gasUsed"`
	Events      []*Event     `json:"events"`
	Changes     int          `json:"changes"`
	ChangesHash thor.Bytes32 `json:"changesHash"`
}

// CallResult is the response to a mutation. Amount is set by calls that pay out, Address by deployments.
type CallResult struct {
	Receipt *Receipt              `json:"receipt"`
	Amount  *math.HexOrDecimal256 `json:"amount,omitempty"`
	Address *thor.Address         `json:"address,omitempty"`
}

func ConvertReceipt(r *runtime.Receipt) *Receipt {
	out := &Receipt{
		Number:      r.Number,
		Time:        r.Time,
		Method:      r.Method,
		Caller:      r.Caller,
		GasUsed:     r.GasUsed,
		Events:      make([]*Event, 0, len(r.Events)),
		Changes:     r.Changes,
		ChangesHash: r.ChangesHash,
	}
	for _, ev := range r.Events {
		e := &Event{
			Address: ev.Address,
			Topics:  make([]*thor.Bytes32, len(ev.Topics)),
			Data:    ev.Data,
		}
		for i := range ev.Topics {
			e.Topics[i] = &ev.Topics[i]
		}
		out.Events = append(out.Events, e)
	}
	return out
}
