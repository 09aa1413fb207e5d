// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package gascharger

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/streams/thor"
)

func TestCharger(t *testing.T) {
	c := New(nil)

	c.Charge(2 * thor.SstoreSetGas)
	c.Charge(thor.SstoreResetGas)
	c.Charge(3 * thor.SloadGas)
	c.Charge(thor.GetBalanceGas)
	c.Charge(7)
	c.Charge(0)

	assert.Equal(t, 2*thor.SstoreSetGas+thor.SstoreResetGas+3*thor.SloadGas+thor.GetBalanceGas+7, c.TotalGas())
	assert.Equal(t,
		"SLOAD: 3 ops (600 gas) | SSTORE_SET: 2 ops (40000 gas) | SSTORE_RESET: 1 ops (5000 gas) | BALANCE: 1 ops (400 gas) | CUSTOM: 7 gas | TOTAL: 46007 gas",
		c.Breakdown())

	v := slog.AnyValue(c).Resolve()
	assert.Equal(t, slog.KindString, v.Kind())
	assert.Equal(t, c.Breakdown(), v.String())
}
