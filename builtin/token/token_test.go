// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/lvldb"
	"github.com/vechain/streams/state"
	"github.com/vechain/streams/test/datagen"
	"github.com/vechain/streams/thor"
	"github.com/vechain/streams/xenv"
)

var tokenAddr = thor.BytesToAddress([]byte("token"))

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return state.New(db)
}

func envAs(st *state.State, caller thor.Address) *xenv.Environment {
	return xenv.New(st, &xenv.BlockContext{Number: 1, Time: 1000}, caller, thor.DefaultCallGasLimit)
}

func deploy(t *testing.T, st *state.State, cfg *Config, trackers TrackerResolver) func(caller thor.Address) *Token {
	require.NoError(t, Deploy(tokenAddr, envAs(st, thor.Address{}), cfg))
	return func(caller thor.Address) *Token {
		tok, err := New(tokenAddr, envAs(st, caller), trackers)
		require.NoError(t, err)
		return tok
	}
}

func balanceOf(t *testing.T, tok *Token, owner thor.Address) uint64 {
	bal, err := tok.BalanceOf(owner)
	require.NoError(t, err)
	return bal.Uint64()
}

func TestDeploy(t *testing.T) {
	st := newState(t)

	_, err := New(tokenAddr, envAs(st, thor.Address{}), nil)
	assert.Equal(t, ErrNotDeployed, err)

	assert.Error(t, Deploy(tokenAddr, envAs(st, thor.Address{}), &Config{}))
	assert.Equal(t, ErrInvalidFee, Deploy(tokenAddr, envAs(st, thor.Address{}), &Config{Symbol: "T", FeeBps: MaxFeeBps + 1}))

	cfg := &Config{Symbol: "T", FeeBps: 10}
	require.NoError(t, Deploy(tokenAddr, envAs(st, thor.Address{}), cfg))
	assert.Equal(t, ErrAlreadyDeployed, Deploy(tokenAddr, envAs(st, thor.Address{}), cfg))

	tok, err := New(tokenAddr, envAs(st, thor.Address{}), nil)
	require.NoError(t, err)
	assert.Equal(t, *cfg, tok.Config())
}

func TestMintTransfer(t *testing.T) {
	st := newState(t)
	minter, alice, bob := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	as := deploy(t, st, &Config{Symbol: "T", Minter: minter}, nil)

	assert.Equal(t, ErrNotMinter, as(alice).Mint(alice, uint256.NewInt(1)))
	assert.Equal(t, ErrInvalidAddress, as(minter).Mint(thor.Address{}, uint256.NewInt(1)))
	require.NoError(t, as(minter).Mint(alice, uint256.NewInt(100)))

	supply, err := as(alice).TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(100), supply.Uint64())

	assert.Equal(t, ErrInsufficientBalance, as(alice).Transfer(bob, uint256.NewInt(101)))
	assert.Equal(t, ErrInvalidAddress, as(alice).Transfer(thor.Address{}, uint256.NewInt(1)))

	tok := as(alice)
	require.NoError(t, tok.Transfer(bob, uint256.NewInt(30)))
	assert.Equal(t, uint64(70), balanceOf(t, tok, alice))
	assert.Equal(t, uint64(30), balanceOf(t, tok, bob))

	events := tok.env.Events()
	require.Len(t, events, 1)
	ev, ok := ABI.EventByName("Transfer")
	require.True(t, ok)
	assert.Equal(t, ev.ID(), events[0].Topics[0])
	assert.Equal(t, thor.BytesToBytes32(alice.Bytes()), events[0].Topics[1])
	assert.Equal(t, thor.BytesToBytes32(bob.Bytes()), events[0].Topics[2])

	// self transfer keeps the balance
	require.NoError(t, tok.Transfer(alice, uint256.NewInt(70)))
	assert.Equal(t, uint64(70), balanceOf(t, tok, alice))
}

func TestAllowance(t *testing.T) {
	st := newState(t)
	alice, bob, spender := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	as := deploy(t, st, &Config{Symbol: "T"}, nil)
	require.NoError(t, as(alice).Mint(alice, uint256.NewInt(100)))

	assert.Equal(t, ErrInsufficientAllowance, as(spender).TransferFrom(alice, bob, uint256.NewInt(1)))

	require.NoError(t, as(alice).Approve(spender, uint256.NewInt(40)))
	require.NoError(t, as(spender).TransferFrom(alice, bob, uint256.NewInt(25)))
	allowance, err := as(spender).Allowance(alice, spender)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), allowance.Uint64())
	assert.Equal(t, ErrInsufficientAllowance, as(spender).TransferFrom(alice, bob, uint256.NewInt(16)))

	require.NoError(t, as(alice).Approve(spender, maxUint256))
	require.NoError(t, as(spender).TransferFrom(alice, bob, uint256.NewInt(10)))
	allowance, err = as(spender).Allowance(alice, spender)
	require.NoError(t, err)
	assert.Equal(t, maxUint256, allowance)

	// owners move their own tokens without allowance
	require.NoError(t, as(alice).TransferFrom(alice, bob, uint256.NewInt(5)))
	assert.Equal(t, uint64(60), balanceOf(t, as(bob), alice))
	assert.Equal(t, uint64(40), balanceOf(t, as(bob), bob))
}

func TestFee(t *testing.T) {
	st := newState(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()
	as := deploy(t, st, &Config{Symbol: "FEE", FeeBps: 100}, nil)
	require.NoError(t, as(alice).Mint(alice, uint256.NewInt(1000)))

	require.NoError(t, as(alice).Transfer(bob, uint256.NewInt(500)))
	assert.Equal(t, uint64(500), balanceOf(t, as(alice), alice))
	assert.Equal(t, uint64(495), balanceOf(t, as(alice), bob))

	supply, err := as(alice).TotalSupply()
	require.NoError(t, err)
	assert.Equal(t, uint64(995), supply.Uint64())
}

type hookCall struct {
	account thor.Address
	balance uint64
	forfeit bool
}

type recordingTracker struct {
	env   *xenv.Environment
	calls *[]hookCall
	fail  func(forfeit bool) error
}

var trackerAddr = thor.BytesToAddress([]byte("tracker"))

func (r *recordingTracker) BalanceTrackerHook(account thor.Address, newBalance *uint256.Int, forfeit bool) error {
	// state written by a failing hook must not survive
	r.env.State().SetStorage(trackerAddr, thor.BytesToBytes32(account.Bytes()), thor.Uint64ToBytes32(newBalance.Uint64()+1))
	if err := r.fail(forfeit); err != nil {
		return err
	}
	*r.calls = append(*r.calls, hookCall{account, newBalance.Uint64(), forfeit})
	r.env.State().SetStorage(trackerAddr, thor.BytesToBytes32(account.Bytes()), thor.Uint64ToBytes32(newBalance.Uint64()))
	return nil
}

func TestTracker(t *testing.T) {
	st := newState(t)
	alice, bob := datagen.RandAddress(), datagen.RandAddress()

	var (
		calls []hookCall
		fail  = func(bool) error { return nil }
	)
	resolver := func(env *xenv.Environment, addr thor.Address) (BalanceTracker, error) {
		assert.Equal(t, trackerAddr, addr)
		assert.Equal(t, tokenAddr, env.Caller())
		return &recordingTracker{env: env, calls: &calls, fail: func(f bool) error { return fail(f) }}, nil
	}
	as := deploy(t, st, &Config{Symbol: "TRK", Tracker: trackerAddr}, resolver)

	require.NoError(t, as(alice).Mint(alice, uint256.NewInt(100)))
	require.NoError(t, as(alice).Transfer(bob, uint256.NewInt(40)))
	assert.Equal(t, []hookCall{
		{alice, 100, false},
		{alice, 60, false},
		{bob, 40, false},
	}, calls)

	// a failing hook is retried with forfeit
	calls = nil
	fail = func(forfeit bool) error {
		if !forfeit {
			return errors.New("too much work")
		}
		return nil
	}
	require.NoError(t, as(bob).Transfer(alice, uint256.NewInt(10)))
	assert.Equal(t, []hookCall{
		{bob, 30, true},
		{alice, 70, true},
	}, calls)
	stored, err := st.GetStorage(trackerAddr, thor.BytesToBytes32(bob.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, thor.Uint64ToBytes32(30), stored)

	// when the retry fails too the balance change is rejected, and the caller rolls it back
	calls = nil
	fail = func(bool) error { return errors.New("broken") }
	for _, tt := range []struct {
		name string
		call func() error
	}{
		{"transfer", func() error { return as(bob).Transfer(alice, uint256.NewInt(10)) }},
		{"transferFrom", func() error { return as(bob).TransferFrom(bob, alice, uint256.NewInt(10)) }},
		{"mint", func() error { return as(alice).Mint(bob, uint256.NewInt(10)) }},
	} {
		checkpoint := st.NewCheckpoint()
		err := tt.call()
		assert.ErrorContains(t, err, "broken", tt.name)
		st.RevertTo(checkpoint)
	}
	assert.Empty(t, calls)
	assert.Equal(t, uint64(30), balanceOf(t, as(bob), bob))
	assert.Equal(t, uint64(70), balanceOf(t, as(alice), alice))
	stored, err = st.GetStorage(trackerAddr, thor.BytesToBytes32(bob.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, thor.Uint64ToBytes32(30), stored)
}

func TestClient(t *testing.T) {
	st := newState(t)
	alice, bob, custody := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()
	as := deploy(t, st, &Config{Symbol: "T"}, nil)
	require.NoError(t, as(alice).Mint(alice, uint256.NewInt(100)))
	require.NoError(t, as(alice).Approve(custody, uint256.NewInt(50)))

	env := envAs(st, custody)
	client := NewClient(tokenAddr, env, nil)

	require.NoError(t, client.TransferFrom(custody, alice, custody, uint256.NewInt(50)))
	bal, err := client.BalanceOf(custody)
	require.NoError(t, err)
	assert.Equal(t, uint64(50), bal.Uint64())

	// the failed frame is rolled back and reported
	assert.Equal(t, ErrInsufficientAllowance, client.TransferFrom(custody, alice, custody, uint256.NewInt(1)))

	require.NoError(t, client.Transfer(custody, bob, uint256.NewInt(20)))
	assert.Equal(t, uint64(20), balanceOf(t, as(bob), bob))
	assert.Len(t, env.Events(), 2)
	assert.NotZero(t, env.GasUsed())
}
