// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckydraw/lucky/lucky"
)

func TestStage(t *testing.T) {
	st, db := newState(t)
	addr := lucky.BytesToAddress([]byte("acc1"))

	storage := map[lucky.Bytes32]lucky.Bytes32{
		lucky.BytesToBytes32([]byte("s1")): lucky.BytesToBytes32([]byte("v1")),
		lucky.BytesToBytes32([]byte("s2")): lucky.BytesToBytes32([]byte("v2")),
		lucky.BytesToBytes32([]byte("s3")): lucky.BytesToBytes32([]byte("v3")),
	}

	st.SetBalance(addr, uint256.NewInt(10))
	for k, v := range storage {
		st.SetStorage(addr, k, v)
	}

	stage := st.Stage()
	assert.Equal(t, 4, stage.Len())
	require.NoError(t, stage.Commit())

	reloaded := New(db)
	bal, err := reloaded.GetBalance(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), bal.Uint64())
	for k, v := range storage {
		got, err := reloaded.GetStorage(addr, k)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestStageRevertedChangesAreNotCommitted(t *testing.T) {
	st, db := newState(t)
	addr := lucky.BytesToAddress([]byte("acc1"))
	key := lucky.BytesToBytes32([]byte("k"))

	rev := st.NewCheckpoint()
	st.SetStorage(addr, key, lucky.BytesToBytes32([]byte("v")))
	st.RevertTo(rev)

	stage := st.Stage()
	assert.Equal(t, 0, stage.Len())
	require.NoError(t, stage.Commit())

	got, err := New(db).GetStorage(addr, key)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}

func TestStageDeletesZeroValues(t *testing.T) {
	st, db := newState(t)
	addr := lucky.BytesToAddress([]byte("acc1"))
	key := lucky.BytesToBytes32([]byte("k"))

	st.SetStorage(addr, key, lucky.BytesToBytes32([]byte("v")))
	st.SetBalance(addr, uint256.NewInt(1))
	require.NoError(t, st.Stage().Commit())

	next := New(db)
	next.SetStorage(addr, key, lucky.Bytes32{})
	next.SetBalance(addr, new(uint256.Int))
	require.NoError(t, next.Stage().Commit())

	has, err := db.Has(append([]byte("s"), append(addr.Bytes(), key.Bytes()...)...))
	require.NoError(t, err)
	assert.False(t, has)
	has, err = db.Has(append([]byte("b"), addr.Bytes()...))
	require.NoError(t, err)
	assert.False(t, has)
}
