// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/engine"
	"github.com/vechain/streams/thor"
)

type Epoch struct {
	Current  uint64 `json:"current"`
	Start    uint64 `json:"start"`
	End      uint64 `json:"end"`
	Origin   uint64 `json:"origin"`
	Duration uint64 `json:"duration"`
}

func convertEpoch(info *engine.EpochInfo) *Epoch {
	return &Epoch{
		Current:  info.Current,
		Start:    info.Start,
		End:      info.End,
		Origin:   info.Origin,
		Duration: info.Duration,
	}
}

type Distribution struct {
	TotalEligible      *math.HexOrDecimal256 `json:"totalEligible"`
	TotalRegistered    *math.HexOrDecimal256 `json:"totalRegistered"`
	TotalClaimed       *math.HexOrDecimal256 `json:"totalClaimed"`
	Accumulator        *math.HexOrDecimal256 `json:"accumulator"`
	Spillover          *math.HexOrDecimal256 `json:"spillover"`
	CurrentAmount      *math.HexOrDecimal256 `json:"currentAmount"`
	LastUpdated        uint64                `json:"lastUpdated"`
	LastScheduledEpoch uint64                `json:"lastScheduledEpoch"`
}

func convertDistribution(view *streams.DistributionView, current *uint256.Int) *Distribution {
	return &Distribution{
		TotalEligible:      restutil.JSONAmount(view.TotalEligible),
		TotalRegistered:    restutil.JSONAmount(view.TotalRegistered),
		TotalClaimed:       restutil.JSONAmount(view.TotalClaimed),
		Accumulator:        restutil.JSONAmount(view.Accumulator),
		Spillover:          restutil.JSONAmount(view.Spillover),
		CurrentAmount:      restutil.JSONAmount(current),
		LastUpdated:        view.LastUpdated,
		LastScheduledEpoch: view.LastScheduledEpoch,
	}
}

type Account struct {
	Balance        *math.HexOrDecimal256 `json:"balance"`
	EnabledRewards []thor.Address        `json:"enabledRewards"`
}

type AccountReward struct {
	Enabled bool                  `json:"enabled"`
	Earned  *math.HexOrDecimal256 `json:"earned"`
}

type Amount struct {
	Amount *math.HexOrDecimal256 `json:"amount"`
}

// CallRequest is the body of every mutation. Fields not used by a call are ignored.
type CallRequest struct {
	Sender     thor.Address            `json:"sender"`
	OnBehalfOf *thor.Address           `json:"onBehalfOf,omitempty"`
	Rewarded   thor.Address            `json:"rewarded"`
	Reward     thor.Address            `json:"reward"`
	Recipient  *thor.Address           `json:"recipient,omitempty"`
	StartEpoch uint64                  `json:"startEpoch,omitempty"`
	Amounts    []*math.HexOrDecimal256 `json:"amounts,omitempty"`
	Amount     *math.HexOrDecimal256   `json:"amount,omitempty"`
	Forfeit    bool                    `json:"forfeit,omitempty"`
}

func (r *CallRequest) origin() streams.Origin {
	o := streams.Origin{Sender: r.Sender}
	if r.OnBehalfOf != nil {
		o.OnBehalfOf = *r.OnBehalfOf
	}
	return o
}

// recipient defaults to the sender.
func (r *CallRequest) recipient() thor.Address {
	if r.Recipient != nil {
		return *r.Recipient
	}
	return r.Sender
}

func (r *CallRequest) amounts() ([]*uint256.Int, error) {
	out := make([]*uint256.Int, len(r.Amounts))
	for i, a := range r.Amounts {
		v, err := restutil.Amount(a)
		if err != nil {
			return nil, errors.WithMessagef(err, "amounts[%d]", i)
		}
		out[i] = v
	}
	return out, nil
}
