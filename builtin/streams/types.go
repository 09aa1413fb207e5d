// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"github.com/holiman/uint256"

	"github.com/vechain/streams/thor"
)

// Asset is a fungible token the engine pays rewards in, or custodies stakes of.
type Asset interface {
	BalanceOf(account thor.Address) (*uint256.Int, error)
	Transfer(from, to thor.Address, amount *uint256.Int) error
	TransferFrom(spender, from, to thor.Address, amount *uint256.Int) error
}

// Assets resolves asset contracts by address.
type Assets interface {
	Asset(addr thor.Address) (Asset, error)
}

// Origin identifies who issued a call. OnBehalfOf is zero unless the sender acts for another account.
type Origin struct {
	Sender     thor.Address
	OnBehalfOf thor.Address
}

// Authorizer resolves the account a call acts for.
type Authorizer interface {
	Authorize(origin Origin) (thor.Address, error)
}

// AuthorizerFunc adapts a function to Authorizer.
type AuthorizerFunc func(origin Origin) (thor.Address, error)

func (f AuthorizerFunc) Authorize(origin Origin) (thor.Address, error) {
	return f(origin)
}

// SenderOnly is the Authorizer that rejects acting on behalf of other accounts.
var SenderOnly = AuthorizerFunc(func(origin Origin) (thor.Address, error) {
	if !origin.OnBehalfOf.IsZero() && origin.OnBehalfOf != origin.Sender {
		return thor.Address{}, ErrNotAuthorized
	}
	return origin.Sender, nil
})

// Config holds the deployment parameters of a streams contract.
type Config struct {
	Origin   uint64 // start of epoch 0, unix seconds
	Duration uint64 // epoch length in seconds
}

func (c *Config) IsEmpty() bool {
	return c.Duration == 0
}

// DistributionView is a snapshot of a distribution's ledger.
type DistributionView struct {
	TotalEligible      *uint256.Int
	TotalRegistered    *uint256.Int
	TotalClaimed       *uint256.Int
	Accumulator        *uint256.Int
	Spillover          *uint256.Int
	LastUpdated        uint64
	LastScheduledEpoch uint64
}
