// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import "github.com/vechain/streams/builtin/reverts"

var (
	ErrInvalidAddress        = reverts.New("invalid address")
	ErrInvalidEpoch          = reverts.New("invalid epoch")
	ErrInvalidDistribution   = reverts.New("invalid distribution")
	ErrInvalidAmount         = reverts.New("invalid amount")
	ErrInvalidRecipient      = reverts.New("invalid recipient")
	ErrTooManyRewardsEnabled = reverts.New("too many rewards enabled")
	ErrAccumulatorOverflow   = reverts.New("accumulator overflow")
	ErrNotAuthorized         = reverts.New("not authorized")
	ErrNotDeployed           = reverts.New("streams not deployed")
	ErrAlreadyDeployed       = reverts.New("streams already deployed")
	ErrInvalidEpochDuration  = reverts.New("invalid epoch duration")
)
