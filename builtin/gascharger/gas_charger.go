// Copyright (c) 2024 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"fmt"
	"log/slog"

	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

// Charger meters gas of native storage access and keeps a per-kind breakdown.
// A charger without environment only counts.
type Charger struct {
	env            *xenv.Environment
	sloadOps       uint64
	sstoreSetOps   uint64
	sstoreResetOps uint64
	balanceOps     uint64
	customGas      uint64
	totalGas       uint64
}

func New(env *xenv.Environment) *Charger {
	return &Charger{
		env: env,
	}
}

func (c *Charger) Charge(gas uint64) {
	if gas == 0 {
		return
	}
	c.totalGas += gas

	switch {
	// Handle multiples and single operations
	case gas%thor.SstoreSetGas == 0:
		c.sstoreSetOps += gas / thor.SstoreSetGas
	case gas%thor.SstoreResetGas == 0:
		c.sstoreResetOps += gas / thor.SstoreResetGas
	case gas%thor.GetBalanceGas == 0:
		c.balanceOps += gas / thor.GetBalanceGas
	case gas%thor.SloadGas == 0:
		c.sloadOps += gas / thor.SloadGas
	default:
		c.customGas += gas
	}

	if c.env != nil {
		c.env.UseGas(gas)
	}
}

func (c *Charger) Breakdown() string {
	return fmt.Sprintf(
		"SLOAD: %d ops (%d gas) | SSTORE_SET: %d ops (%d gas) | SSTORE_RESET: %d ops (%d gas) | BALANCE: %d ops (%d gas) | CUSTOM: %d gas | TOTAL: %d gas",
		c.sloadOps,
		c.sloadOps*thor.SloadGas,
		c.sstoreSetOps,
		c.sstoreSetOps*thor.SstoreSetGas,
		c.sstoreResetOps,
		c.sstoreResetOps*thor.SstoreResetGas,
		c.balanceOps,
		c.balanceOps*thor.GetBalanceGas,
		c.customGas,
		c.totalGas,
	)
}

func (c *Charger) TotalGas() uint64 {
	return c.totalGas
}

// LogValue lets a charger be passed to the logger as is. The breakdown is only formatted
// when the record is actually written.
func (c *Charger) LogValue() slog.Value {
	return slog.StringValue(c.Breakdown())
}
