// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package streams

import (
	"github.com/holiman/uint256"

	"github.com/vechain/streams/thor"
)

// Staking is the variant whose balances are tokens held in custody by the contract itself.
type Staking struct {
	*Streams
}

func NewStaking(s *Streams) *Staking {
	return &Staking{s}
}

var maxUint256 = new(uint256.Int).SetAllOne()

// Stake moves amount of rewarded from the caller into custody. The maximum uint256 value stakes
// the caller's whole wallet balance.
func (s *Staking) Stake(origin Origin, rewarded thor.Address, amount *uint256.Int) error {
	acct, err := s.authorize(origin)
	if err != nil {
		return err
	}
	if rewarded.IsZero() {
		return ErrInvalidAddress
	}
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}

	asset, err := s.asset(rewarded)
	if err != nil {
		return err
	}
	if amount.Eq(maxUint256) {
		if amount, err = asset.BalanceOf(acct); err != nil {
			return err
		}
		if amount.IsZero() {
			return ErrInvalidAmount
		}
	}

	oldBalance, err := s.accounts.Balance(acct, rewarded)
	if err != nil {
		return err
	}
	newBalance, overflow := new(uint256.Int).AddOverflow(oldBalance, amount)
	if overflow {
		return ErrInvalidAmount
	}
	if err := s.updateBalance(acct, rewarded, oldBalance, newBalance, false); err != nil {
		return err
	}
	if err := s.pull(asset, acct, amount); err != nil {
		return err
	}

	countOp("stake")
	logger.Debug("staked", "account", acct, "rewarded", rewarded, "amount", amount, "balance", newBalance, "gas", s.charger)
	return s.emit("Staked", []thor.Address{acct, rewarded}, bigOf(amount))
}

// Unstake returns amount of the caller's staked rewarded to recipient. The maximum uint256 value
// unstakes the whole balance. With forfeit the caller gives up its most recent rewards in
// exchange for constant work per enabled reward.
func (s *Staking) Unstake(origin Origin, rewarded thor.Address, amount *uint256.Int, recipient thor.Address, forfeit bool) error {
	acct, err := s.authorize(origin)
	if err != nil {
		return err
	}
	if recipient.IsZero() {
		return ErrInvalidRecipient
	}
	if amount == nil {
		return ErrInvalidAmount
	}

	oldBalance, err := s.accounts.Balance(acct, rewarded)
	if err != nil {
		return err
	}
	if amount.Eq(maxUint256) {
		amount = oldBalance.Clone()
	}
	if amount.IsZero() || amount.Gt(oldBalance) {
		return ErrInvalidAmount
	}

	newBalance := new(uint256.Int).Sub(oldBalance, amount)
	if err := s.updateBalance(acct, rewarded, oldBalance, newBalance, forfeit); err != nil {
		return err
	}

	asset, err := s.asset(rewarded)
	if err != nil {
		return err
	}
	if err := asset.Transfer(s.addr, recipient, amount); err != nil {
		return err
	}

	countOp("unstake")
	logger.Debug("unstaked", "account", acct, "rewarded", rewarded, "amount", amount, "recipient", recipient, "forfeit", forfeit, "gas", s.charger)
	return s.emit("Unstaked", []thor.Address{acct, rewarded}, ethAddress(recipient), bigOf(amount))
}
