// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/builtin/gascharger"
	"github.com/vechain/streams/lvldb"
	"github.com/vechain/streams/state"
	"github.com/vechain/streams/thor"
)

// newTestContext returns a fresh Context with in-memory DB and unlimited gas.
func newTestContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewContext(thor.Address{1}, state.New(db), gascharger.New(nil))
}

// resetCharger swaps in a fresh charger so that gas can be asserted per step.
func resetCharger(ctx *Context) {
	ctx.charger = gascharger.New(nil)
}
