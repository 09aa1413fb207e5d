// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package account

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/streams/builtin/gascharger"
	"github.com/vechain/streams/builtin/solidity"
	"github.com/vechain/streams/builtin/streams/enabledset"
	"github.com/vechain/streams/lvldb"
	"github.com/vechain/streams/state"
	"github.com/vechain/streams/test/datagen"
	"github.com/vechain/streams/thor"
)

func newService(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(solidity.NewContext(thor.Address{1}, state.New(db), gascharger.New(nil)), 2)
}

func TestBalance(t *testing.T) {
	svc := newService(t)
	acct, rewarded := datagen.RandAddress(), datagen.RandAddress()

	bal, err := svc.Balance(acct, rewarded)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())

	require.NoError(t, svc.SetBalance(acct, rewarded, uint256.NewInt(500), true))
	bal, err = svc.Balance(acct, rewarded)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(500), bal)

	other, err := svc.Balance(rewarded, acct)
	require.NoError(t, err)
	assert.True(t, other.IsZero())

	require.NoError(t, svc.SetBalance(acct, rewarded, new(uint256.Int), false))
	bal, err = svc.Balance(acct, rewarded)
	require.NoError(t, err)
	assert.True(t, bal.IsZero())
}

func TestReward(t *testing.T) {
	svc := newService(t)
	acct, rewarded, reward := datagen.RandAddress(), datagen.RandAddress(), datagen.RandAddress()

	r, err := svc.Reward(acct, rewarded, reward)
	require.NoError(t, err)
	assert.True(t, r.IsEmpty())

	r.Snapshot.SetUint64(3)
	r.Claimable.SetUint64(4)
	require.NoError(t, svc.SetReward(acct, rewarded, reward, r))

	got, err := svc.Reward(acct, rewarded, reward)
	require.NoError(t, err)
	assert.Equal(t, uint256.NewInt(3), got.Snapshot)
	assert.Equal(t, uint256.NewInt(4), got.Claimable)

	swapped, err := svc.Reward(acct, reward, rewarded)
	require.NoError(t, err)
	assert.True(t, swapped.IsEmpty())
}

func TestEnabledBound(t *testing.T) {
	svc := newService(t)
	acct, rewarded := datagen.RandAddress(), datagen.RandAddress()
	rewards := datagen.RandAddresses(3)

	set := svc.Enabled(acct, rewarded)
	_, err := set.Add(rewards[0])
	require.NoError(t, err)
	_, err = set.Add(rewards[1])
	require.NoError(t, err)
	_, err = svc.Enabled(acct, rewarded).Add(rewards[2])
	assert.ErrorIs(t, err, enabledset.ErrLimitReached)

	// another rewarded asset has its own set
	added, err := svc.Enabled(acct, datagen.RandAddress()).Add(rewards[2])
	require.NoError(t, err)
	assert.True(t, added)
}
