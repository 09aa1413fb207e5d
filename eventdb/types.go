// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package eventdb

import (
	"github.com/vechain/streams/thor"
)

// Event is an event emitted by a committed call, as stored in db.
type Event struct {
	Number  uint32 // number of the call
	Index   uint32 // position within the call
	Time    uint64
	Method  string
	Caller  thor.Address
	Address thor.Address // always a contract address

	// decoded from the topics when the emitter is known, nil otherwise
	Kind     string
	Account  *thor.Address
	Rewarded *thor.Address
	Reward   *thor.Address

	Topics [4]*thor.Bytes32
	Data   []byte
}

type RangeType string

const (
	Number RangeType = "number"
	Time   RangeType = "time"
)

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

type Range struct {
	Unit RangeType
	From uint64
	To   uint64
}

type Options struct {
	Offset uint64
	Limit  uint64
}

// Criteria matches events on every non-empty field.
type Criteria struct {
	Address  *thor.Address
	Kind     string
	Account  *thor.Address
	Rewarded *thor.Address
	Reward   *thor.Address
}

// Filter selects events matching any of its criteria.
type Filter struct {
	CriteriaSet []*Criteria
	Range       *Range
	Options     *Options
	Order       Order // default asc
}
