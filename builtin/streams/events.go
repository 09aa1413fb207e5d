// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/streams/abi"
	"github.com/vechain/streams/thor"
)

const abiJSON = `[
	{"type":"event","name":"RewardRegistered","inputs":[
		{"name":"caller","type":"address","indexed":true},
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"reward","type":"address","indexed":true},
		{"name":"startEpoch","type":"uint256","indexed":false},
		{"name":"amounts","type":"uint256[]","indexed":false}
	]},
	{"type":"event","name":"RewardEnabled","inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"reward","type":"address","indexed":true}
	]},
	{"type":"event","name":"RewardDisabled","inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"reward","type":"address","indexed":true},
		{"name":"forfeited","type":"bool","indexed":false}
	]},
	{"type":"event","name":"RewardClaimed","inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"reward","type":"address","indexed":true},
		{"name":"recipient","type":"address","indexed":false},
		{"name":"amount","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"SpilloverClaimed","inputs":[
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"reward","type":"address","indexed":true},
		{"name":"recipient","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"Staked","inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"amount","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"Unstaked","inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"recipient","type":"address","indexed":false},
		{"name":"amount","type":"uint256","indexed":false}
	]},
	{"type":"event","name":"BalanceTracked","inputs":[
		{"name":"account","type":"address","indexed":true},
		{"name":"rewarded","type":"address","indexed":true},
		{"name":"balance","type":"uint256","indexed":false},
		{"name":"forfeited","type":"bool","indexed":false}
	]}
]`

// ABI describes the events emitted by streams contracts.
var ABI = abi.MustNew([]byte(abiJSON))

func addressTopic(addr thor.Address) thor.Bytes32 {
	return thor.BytesToBytes32(addr.Bytes())
}

func bigOf(v *uint256.Int) *big.Int {
	return v.ToBig()
}

func bigsOf(vs []*uint256.Int) []*big.Int {
	out := make([]*big.Int, len(vs))
	for i, v := range vs {
		out[i] = v.ToBig()
	}
	return out
}

func ethAddress(addr thor.Address) common.Address {
	return common.Address(addr)
}

func (s *Streams) emit(name string, indexed []thor.Address, args ...any) error {
	ev, ok := ABI.EventByName(name)
	if !ok {
		return errors.Errorf("unknown event %s", name)
	}
	data, err := ev.Encode(args...)
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	topics := make([]thor.Bytes32, 0, len(indexed)+1)
	topics = append(topics, ev.ID())
	for _, addr := range indexed {
		topics = append(topics, addressTopic(addr))
	}
	s.env.Log(s.addr, topics, data)
	return nil
}
