// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package xenv

import (
	"errors"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/lvldb"
	"github.com/luckydraw/lucky/state"
)

var (
	caller   = lucky.BytesToAddress([]byte("caller"))
	contract = lucky.BytesToAddress([]byte("contract"))
	key      = lucky.BytesToBytes32([]byte("key"))
	topic    = lucky.BytesToBytes32([]byte("topic"))
)

func newState(t *testing.T) *state.State {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	return state.New(db)
}

func TestCallCommitsOnSuccess(t *testing.T) {
	st := newState(t)
	env := New(st, &BlockContext{Number: 7, Time: 100}, caller, contract, nil)

	assert.Equal(t, uint32(7), env.BlockContext().Number)
	assert.Equal(t, caller, env.Caller())
	assert.Equal(t, contract, env.To())
	assert.True(t, env.Value().IsZero())

	err := env.Call(func(env *Environment) error {
		env.State().SetStorage(env.To(), key, lucky.BytesToBytes32([]byte{1}))
		env.Log([]lucky.Bytes32{topic}, []byte("data"))
		return nil
	})
	require.NoError(t, err)

	v, err := st.GetStorage(contract, key)
	require.NoError(t, err)
	assert.Equal(t, lucky.BytesToBytes32([]byte{1}), v)

	require.Len(t, env.Events(), 1)
	assert.Equal(t, contract, env.Events()[0].Address)
	assert.Equal(t, []lucky.Bytes32{topic}, env.Events()[0].Topics)
}

func TestCallRevertsOnError(t *testing.T) {
	st := newState(t)
	env := New(st, &BlockContext{}, caller, contract, nil)

	err := env.Call(func(env *Environment) error {
		env.State().SetStorage(env.To(), key, lucky.BytesToBytes32([]byte{1}))
		env.Log([]lucky.Bytes32{topic}, nil)
		return reverts.ErrNoReward
	})
	assert.ErrorIs(t, err, reverts.ErrNoReward)

	v, err := st.GetStorage(contract, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())
	assert.Empty(t, env.Events())
}

func TestCallRevertsOnStop(t *testing.T) {
	st := newState(t)
	env := New(st, &BlockContext{}, caller, contract, nil)

	err := env.Call(func(env *Environment) error {
		env.State().SetStorage(env.To(), key, lucky.BytesToBytes32([]byte{1}))
		env.Require(true, reverts.ErrAccessControl)
		env.Require(false, reverts.ErrAccessControl)
		return nil
	})
	assert.ErrorIs(t, err, reverts.ErrAccessControl)

	v, err := st.GetStorage(contract, key)
	require.NoError(t, err)
	assert.True(t, v.IsZero())

	err = env.Call(func(env *Environment) error {
		env.Stop(reverts.ErrNoParticipant)
		return nil
	})
	assert.ErrorIs(t, err, reverts.ErrNoParticipant)
}

func TestCallPropagatesForeignPanics(t *testing.T) {
	env := New(newState(t), &BlockContext{}, caller, contract, nil)
	assert.PanicsWithError(t, "boom", func() {
		_ = env.Call(func(*Environment) error {
			panic(errors.New("boom"))
		})
	})
}

func TestCallTransfersValue(t *testing.T) {
	st := newState(t)
	st.SetBalance(caller, uint256.NewInt(100))

	env := New(st, &BlockContext{}, caller, contract, uint256.NewInt(40))
	require.NoError(t, env.Call(func(env *Environment) error {
		assert.Equal(t, uint64(40), env.Value().Uint64())
		return nil
	}))

	bal, err := st.GetBalance(contract)
	require.NoError(t, err)
	assert.Equal(t, uint64(40), bal.Uint64())

	// a failing call gives the value back
	err = env.Call(func(*Environment) error { return reverts.ErrNoReward })
	assert.ErrorIs(t, err, reverts.ErrNoReward)
	bal, err = st.GetBalance(caller)
	require.NoError(t, err)
	assert.Equal(t, uint64(60), bal.Uint64())

	poor := New(st, &BlockContext{}, caller, contract, uint256.NewInt(1000))
	err = poor.Call(func(*Environment) error { return nil })
	assert.ErrorIs(t, err, reverts.ErrTransferError)
}
