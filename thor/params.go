// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"github.com/holiman/uint256"
)

// Constants of reward streams.
const (
	// MinEpochDuration and MaxEpochDuration bound the epoch length accepted at deployment (unit: second).
	MinEpochDuration uint64 = 7 * 24 * 3600
	MaxEpochDuration uint64 = 10 * 7 * 24 * 3600

	MaxEpochsAhead        uint64 = 5  // furthest start epoch of a registration, relative to the current one.
	MaxDistributionLength        = 25 // max number of epochs covered by one registration.
	MaxRewardsEnabled            = 5  // max number of rewards an account can enable per rewarded asset.
)

// Gas costs of storage access and asset calls.
const (
	SloadGas       uint64 = 200
	SstoreSetGas   uint64 = 20000
	SstoreResetGas uint64 = 5000
	GetBalanceGas  uint64 = 400
	TransferGas    uint64 = 9000

	// DefaultCallGasLimit is the gas granted to a single call unless configured otherwise.
	DefaultCallGasLimit uint64 = 10 * 1000 * 1000
)

var (
	// StreamsScaler is the fixed-point scale of distribution accumulators.
	StreamsScaler = new(uint256.Int).Mul(uint256.NewInt(2), uint256.NewInt(1e19))

	// MaxAccumulatorBase bounds StreamsScaler * totalRegistered, so that accumulator arithmetic stays in 256 bits.
	MaxAccumulatorBase = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 160), uint256.NewInt(1))

	// MaxAmount is the largest amount a single ledger field may hold.
	MaxAmount = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))
)
