// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package events

import (
	"fmt"
	"math"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/vechain/streams/eventdb"
	"github.com/vechain/streams/thor"
)

type Meta struct {
	Number uint32       `json:"number"`
	Index  uint32       `json:"index"`
	Time   uint64       `json:"time"`
	Method string       `json:"method"`
	Caller thor.Address `json:"caller"`
}

// FilteredEvent only comes from one contract
type FilteredEvent struct {
	Address  thor.Address    `json:"address"`
	Kind     string          `json:"kind,omitempty"`
	Account  *thor.Address   `json:"account,omitempty"`
	Rewarded *thor.Address   `json:"rewarded,omitempty"`
	Reward   *thor.Address   `json:"reward,omitempty"`
	Topics   []*thor.Bytes32 `json:"topics"`
	Data     string          `json:"data"`
	Meta     Meta            `json:"meta"`
}

// ConvertEvent renders a stored or freshly committed event.
func ConvertEvent(event *eventdb.Event) *FilteredEvent {
	fe := &FilteredEvent{
		Address:  event.Address,
		Kind:     event.Kind,
		Account:  event.Account,
		Rewarded: event.Rewarded,
		Reward:   event.Reward,
		Topics:   make([]*thor.Bytes32, 0, len(event.Topics)),
		Data:     hexutil.Encode(event.Data),
		Meta: Meta{
			Number: event.Number,
			Index:  event.Index,
			Time:   event.Time,
			Method: event.Method,
			Caller: event.Caller,
		},
	}
	for _, topic := range event.Topics {
		if topic != nil {
			fe.Topics = append(fe.Topics, topic)
		}
	}
	return fe
}

type Criteria struct {
	Address  *thor.Address `json:"address"`
	Kind     string        `json:"kind"`
	Account  *thor.Address `json:"account"`
	Rewarded *thor.Address `json:"rewarded"`
	Reward   *thor.Address `json:"reward"`
}

type Range struct {
	Unit eventdb.RangeType `json:"unit,omitempty"`
	From *uint64           `json:"from,omitempty"`
	To   *uint64           `json:"to,omitempty"`
}

type Options struct {
	Offset uint64  `json:"offset,omitempty"`
	Limit  *uint64 `json:"limit,omitempty"`
}

type Filter struct {
	CriteriaSet []*Criteria   `json:"criteriaSet,omitempty"`
	Range       *Range        `json:"range,omitempty"`
	Options     *Options      `json:"options,omitempty"`
	Order       eventdb.Order `json:"order,omitempty"`
}

// validate checks f against the configured result limit.
func (f *Filter) validate(limit uint64) error {
	if o := f.Options; o != nil {
		if o.Limit != nil && *o.Limit > limit {
			return fmt.Errorf("options.limit exceeds the maximum allowed value of %d", limit)
		}
		if o.Offset > math.MaxInt64 {
			return fmt.Errorf("options.offset exceeds the maximum allowed value of %d", int64(math.MaxInt64))
		}
	}
	if r := f.Range; r != nil {
		if r.Unit != "" && r.Unit != eventdb.Number && r.Unit != eventdb.Time {
			return fmt.Errorf("range.unit must be either 'number' or 'time', got '%s'", r.Unit)
		}
		if r.From != nil && r.To != nil && *r.From > *r.To {
			return fmt.Errorf("range.to must be greater than or equal to range.from")
		}
	}
	if f.Order != "" && f.Order != eventdb.ASC && f.Order != eventdb.DESC {
		return fmt.Errorf("order must be either 'asc' or 'desc', got '%s'", f.Order)
	}
	// {} is accepted and matches everything, null is not
	for i, c := range f.CriteriaSet {
		if c == nil {
			return fmt.Errorf("criteriaSet[%d]: null not allowed", i)
		}
	}
	return nil
}

// convert builds the db filter. limit applies when f carries none.
func (f *Filter) convert(limit uint64) *eventdb.Filter {
	out := &eventdb.Filter{
		Options: &eventdb.Options{Limit: limit},
		Order:   f.Order,
	}
	if f.Options != nil {
		out.Options.Offset = f.Options.Offset
		if f.Options.Limit != nil {
			out.Options.Limit = *f.Options.Limit
		}
	}
	if r := f.Range; r != nil {
		rng := &eventdb.Range{Unit: r.Unit, To: math.MaxUint32}
		if rng.Unit == "" {
			rng.Unit = eventdb.Number
		}
		if rng.Unit == eventdb.Time {
			rng.To = math.MaxInt64
		}
		if r.From != nil {
			rng.From = *r.From
		}
		if r.To != nil {
			rng.To = *r.To
		}
		out.Range = rng
	}
	for _, c := range f.CriteriaSet {
		out.CriteriaSet = append(out.CriteriaSet, &eventdb.Criteria{
			Address:  c.Address,
			Kind:     c.Kind,
			Account:  c.Account,
			Rewarded: c.Rewarded,
			Reward:   c.Reward,
		})
	}
	return out
}
