// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/thor"
)

func TestUint256(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.Bytes32{1})

	// test `Set`
	u.Set(uint256.NewInt(1000))
	assert.Equal(t, thor.SstoreResetGas, ctx.charger.TotalGas())

	// test `Get`
	resetCharger(ctx)
	value, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1000), value)
	assert.Equal(t, thor.SloadGas, ctx.charger.TotalGas())

	// test `Add`
	resetCharger(ctx)
	require.NoError(t, u.Add(uint256.NewInt(500)))
	assert.Equal(t, thor.SstoreResetGas+thor.SloadGas, ctx.charger.TotalGas())

	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1500), value)

	// test `Sub`
	require.NoError(t, u.Sub(uint256.NewInt(200)))
	value, err = u.Get()
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(1300), value)
}

func TestUint256_Bounds(t *testing.T) {
	ctx := newTestContext(t)
	u := NewUint256(ctx, thor.Bytes32{2})

	assert.ErrorIs(t, u.Sub(uint256.NewInt(1)), ErrUnderflow)

	maxValue := new(uint256.Int).SetAllOne()
	u.Set(maxValue)
	assert.ErrorIs(t, u.Add(uint256.NewInt(1)), ErrOverflow)

	value, err := u.Get()
	require.NoError(t, err)
	assert.Equal(t, maxValue, value)
}
