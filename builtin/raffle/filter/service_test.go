// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package filter

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/lvldb"
	"github.com/luckydraw/lucky/state"
)

var (
	alice = lucky.BytesToAddress([]byte("alice"))
	bob   = lucky.BytesToAddress([]byte("bob"))
	carol = lucky.BytesToAddress([]byte("carol"))
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(solidity.NewContext(lucky.BytesToAddress([]byte("raffle")), state.New(db)))
}

func TestFIFO(t *testing.T) {
	svc := newSvc(t)
	svc.SetLimit(2)

	require.NoError(t, svc.AddWinner(alice))
	require.NoError(t, svc.AddWinner(bob))
	require.NoError(t, svc.AddWinner(carol))

	winners, err := svc.LastWinners()
	require.NoError(t, err)
	assert.Equal(t, []lucky.Address{bob, carol}, winners)

	in, err := svc.IsLastWinner(alice)
	require.NoError(t, err)
	assert.False(t, in)
	in, err = svc.IsLastWinner(carol)
	require.NoError(t, err)
	assert.True(t, in)
}

func TestLoweredLimitEvictsUntilFit(t *testing.T) {
	svc := newSvc(t)
	svc.SetLimit(3)
	for _, a := range []lucky.Address{alice, bob, carol} {
		require.NoError(t, svc.AddWinner(a))
	}

	svc.SetLimit(1)
	limit, err := svc.Limit()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), limit)

	require.NoError(t, svc.AddWinner(alice))
	winners, err := svc.LastWinners()
	require.NoError(t, err)
	assert.Equal(t, []lucky.Address{alice}, winners)
}

func TestZeroLimitKeepsNothing(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.AddWinner(alice))

	winners, err := svc.LastWinners()
	require.NoError(t, err)
	assert.Empty(t, winners)
}

func TestExclude(t *testing.T) {
	svc := newSvc(t)
	svc.SetLimit(2)
	require.NoError(t, svc.AddWinner(alice))

	batch := []participant.Participant{
		participant.New(alice, uint256.NewInt(10)),
		participant.New(bob, uint256.NewInt(20)),
		participant.New(alice, uint256.NewInt(30)),
	}
	kept, err := svc.Exclude(batch)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, bob, kept[0].Account)
}
