// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package engine

import (
	"github.com/pkg/errors"

	"github.com/vechain/streams/builtin/operators"
	"github.com/vechain/streams/builtin/streams"
	"github.com/vechain/streams/builtin/token"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

var (
	StakingAddress   = thor.BytesToAddress([]byte("StreamsStaking"))
	TrackingAddress  = thor.BytesToAddress([]byte("StreamsTracking"))
	OperatorsAddress = thor.BytesToAddress([]byte("Operators"))

	errUnknownVariant = errors.New("unknown variant")
)

// Variant selects one of the two streams deployments.
type Variant string

const (
	Staking  Variant = "staking"
	Tracking Variant = "tracking"
)

func (v Variant) Address() (thor.Address, error) {
	switch v {
	case Staking:
		return StakingAddress, nil
	case Tracking:
		return TrackingAddress, nil
	default:
		return thor.Address{}, errors.Wrap(errUnknownVariant, string(v))
	}
}

// TokenAddress returns the address a token with symbol is deployed at.
func TokenAddress(symbol string) thor.Address {
	return thor.BytesToAddress(thor.Blake2b([]byte("token"), []byte(symbol)).Bytes())
}

// assets resolves every asset to a token client calling from env.
type assets struct {
	env *xenv.Environment
}

func (a assets) Asset(addr thor.Address) (streams.Asset, error) {
	return token.NewClient(addr, a.env, resolveTracker), nil
}

func bindStreams(env *xenv.Environment, addr thor.Address) (*streams.Streams, error) {
	return streams.New(addr, env, assets{env}, operators.New(OperatorsAddress, env))
}

func resolveTracker(env *xenv.Environment, addr thor.Address) (token.BalanceTracker, error) {
	s, err := bindStreams(env, addr)
	if err != nil {
		return nil, err
	}
	return streams.NewTracking(s), nil
}

func bindToken(env *xenv.Environment, addr thor.Address) (*token.Token, error) {
	return token.New(addr, env, resolveTracker)
}
