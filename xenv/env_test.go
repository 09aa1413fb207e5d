// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/lvldb"
	"github.com/vechain/streams/state"
	"github.com/vechain/streams/thor"
)

func newEnv(t *testing.T, gas uint64) *Environment {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(state.New(db), &BlockContext{Number: 1, Time: 100}, thor.BytesToAddress([]byte("caller")), gas)
}

func TestUseGas(t *testing.T) {
	env := newEnv(t, 1000)

	err := env.Run(func(env *Environment) error {
		env.UseGas(600)
		assert.Equal(t, uint64(400), env.GasLeft())
		env.UseGas(600)
		t.Fatal("should not reach here")
		return nil
	})
	assert.Equal(t, ErrOutOfGas, err)
	assert.Equal(t, uint64(1000), env.GasUsed())
}

func TestRunPropagatesError(t *testing.T) {
	env := newEnv(t, 1000)
	boom := errors.New("boom")
	assert.Equal(t, boom, env.Run(func(*Environment) error { return boom }))

	assert.Panics(t, func() {
		env.Run(func(*Environment) error { panic("unexpected") })
	})
}

func TestCall(t *testing.T) {
	env := newEnv(t, 1_000_000)
	contract := thor.BytesToAddress([]byte("contract"))
	key := thor.BytesToBytes32([]byte("k"))
	callee := thor.BytesToAddress([]byte("callee"))

	t.Run("success keeps changes and events", func(t *testing.T) {
		err := env.Call(callee, func(sub *Environment) error {
			assert.Equal(t, callee, sub.Caller())
			sub.State().SetStorage(contract, key, thor.BytesToBytes32([]byte{1}))
			sub.Log(contract, []thor.Bytes32{{1}}, nil)
			return nil
		})
		assert.NoError(t, err)
		v, _ := env.State().GetStorage(contract, key)
		assert.Equal(t, thor.BytesToBytes32([]byte{1}), v)
		assert.Len(t, env.Events(), 1)
	})

	t.Run("failure reverts changes and events", func(t *testing.T) {
		used := env.GasUsed()
		err := env.Call(callee, func(sub *Environment) error {
			sub.State().SetStorage(contract, key, thor.BytesToBytes32([]byte{2}))
			sub.Log(contract, []thor.Bytes32{{2}}, nil)
			return errors.New("rejected")
		})
		assert.EqualError(t, err, "rejected")
		v, _ := env.State().GetStorage(contract, key)
		assert.Equal(t, thor.BytesToBytes32([]byte{1}), v)
		assert.Len(t, env.Events(), 1)
		assert.Greater(t, env.GasUsed(), used, "gas of failed frame is still consumed")
	})

	t.Run("out of gas in nested frame leaves parent running", func(t *testing.T) {
		left := env.GasLeft()
		err := env.Call(callee, func(sub *Environment) error {
			sub.UseGas(sub.GasLeft() + 1)
			return nil
		})
		assert.Equal(t, ErrOutOfGas, err)
		assert.Equal(t, left/64, env.GasLeft())
	})
}
