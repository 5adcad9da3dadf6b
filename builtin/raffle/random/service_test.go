// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package random

import (
	"errors"
	"math"
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/lvldb"
	"github.com/luckydraw/lucky/state"
)

var subject = lucky.BytesToAddress([]byte("subject"))

type fixedSeeder lucky.Bytes32

func (f fixedSeeder) Seed(uint64, lucky.Address) (lucky.Bytes32, error) {
	return lucky.Bytes32(f), nil
}

type failingSeeder struct{}

func (failingSeeder) Seed(uint64, lucky.Address) (lucky.Bytes32, error) {
	return lucky.Bytes32{}, errors.New("no entropy")
}

func newSvc(t *testing.T, seeder Seeder) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(solidity.NewContext(lucky.BytesToAddress([]byte("random")), state.New(db)), seeder)
}

func TestDrawInRange(t *testing.T) {
	svc := newSvc(t, BlockSeeder{Block{Number: 10, Time: 1700000000}})
	low, high := uint256.NewInt(100), uint256.NewInt(1100)

	seen := make(map[uint64]struct{})
	for i := 0; i < 200; i++ {
		v, err := svc.Draw(low, high, subject)
		require.NoError(t, err)
		assert.False(t, v.Lt(low), "value %v below low", v)
		assert.True(t, v.Lt(high), "value %v not below high", v)
		seen[v.Uint64()] = struct{}{}
	}
	assert.Greater(t, len(seen), 100, "draws should spread over the range")

	salt, err := svc.Salt()
	require.NoError(t, err)
	assert.Equal(t, uint64(200), salt)
}

func TestDrawAdvancesSalt(t *testing.T) {
	svc := newSvc(t, BlockSeeder{Block{Number: 1, Time: 1}})
	full := new(uint256.Int).SetAllOne()

	a, err := svc.Draw(new(uint256.Int), full, subject)
	require.NoError(t, err)
	b, err := svc.Draw(new(uint256.Int), full, subject)
	require.NoError(t, err)
	assert.NotEqual(t, a.Dec(), b.Dec())

	svc.SetSalt(0)
	again, err := svc.Draw(new(uint256.Int), full, subject)
	require.NoError(t, err)
	assert.Equal(t, a.Dec(), again.Dec(), "same salt and block give the same draw")
}

func TestDrawEqualBounds(t *testing.T) {
	svc := newSvc(t, fixedSeeder{7})
	v, err := svc.Draw(uint256.NewInt(5), uint256.NewInt(5), subject)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v.Uint64())
}

func TestDrawErrors(t *testing.T) {
	svc := newSvc(t, fixedSeeder{1})

	_, err := svc.Draw(uint256.NewInt(2), uint256.NewInt(1), subject)
	assert.ErrorIs(t, err, reverts.ErrSubOverflow)

	svc.SetSalt(math.MaxUint64)
	_, err = svc.Draw(uint256.NewInt(0), uint256.NewInt(1), subject)
	assert.ErrorIs(t, err, reverts.ErrAddOverflow)

	svc = newSvc(t, failingSeeder{})
	_, err = svc.Draw(uint256.NewInt(0), uint256.NewInt(1), subject)
	assert.Error(t, err)
	assert.False(t, reverts.IsRevertErr(err))
}

func TestAlphaDependsOnEveryInput(t *testing.T) {
	b := Block{Number: 1, Time: 2}
	base := b.Alpha(3, subject)
	assert.NotEqual(t, base, Block{Number: 2, Time: 2}.Alpha(3, subject))
	assert.NotEqual(t, base, Block{Number: 1, Time: 3}.Alpha(3, subject))
	assert.NotEqual(t, base, b.Alpha(4, subject))
	assert.NotEqual(t, base, b.Alpha(3, lucky.Address{}))
}
