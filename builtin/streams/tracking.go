// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"github.com/holiman/uint256"

	"github.com/vechain/streams/thor"
)

// Tracking is the variant whose balances live in the rewarded asset, which pushes every change.
type Tracking struct {
	*Streams
}

func NewTracking(s *Streams) *Tracking {
	return &Tracking{s}
}

// BalanceTrackerHook records the new balance of account in the calling asset. Calls for the
// zero account are ignored. With forfeit the update does constant work per enabled reward,
// so that the asset can always complete its transfer.
func (t *Tracking) BalanceTrackerHook(acct thor.Address, newBalance *uint256.Int, forfeit bool) error {
	rewarded := t.env.Caller()
	if acct.IsZero() {
		return nil
	}
	if newBalance == nil {
		newBalance = new(uint256.Int)
	}

	oldBalance, err := t.accounts.Balance(acct, rewarded)
	if err != nil {
		return err
	}
	if err := t.updateBalance(acct, rewarded, oldBalance, newBalance, forfeit); err != nil {
		return err
	}

	countOp("track")
	logger.Trace("balance tracked", "account", acct, "rewarded", rewarded, "balance", newBalance, "forfeit", forfeit)
	return t.emit("BalanceTracked", []thor.Address{acct, rewarded}, bigOf(newBalance), forfeit)
}
