// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package oracle

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

func TestOracleData(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()
	svc := NewService(solidity.NewContext(lucky.BytesToAddress([]byte("oracle")), state.New(db)))

	alice := lucky.BytesToAddress([]byte("alice"))
	bob := lucky.BytesToAddress([]byte("bob"))

	empty, err := svc.Data(7)
	require.NoError(t, err)
	assert.Empty(t, empty.Participants)
	assert.True(t, empty.Rewards.IsZero())

	require.NoError(t, svc.AddParticipant(7, alice, uint256.NewInt(10)))
	require.NoError(t, svc.AddParticipants(7, []participant.Participant{participant.New(bob, uint256.NewInt(20))}))
	require.NoError(t, svc.AddParticipant(8, bob, uint256.NewInt(1)))
	require.NoError(t, svc.SetRewards(7, uint256.NewInt(500)))

	data, err := svc.Data(7)
	require.NoError(t, err)
	require.Len(t, data.Participants, 2)
	assert.Equal(t, alice, data.Participants[0].Account)
	assert.Equal(t, bob, data.Participants[1].Account)
	assert.Equal(t, uint64(500), data.Rewards.Uint64())

	total, err := data.Participants.TotalValue()
	require.NoError(t, err)
	assert.Equal(t, uint64(30), total.Uint64())

	other, err := svc.Data(8)
	require.NoError(t, err)
	assert.Len(t, other.Participants, 1)
	assert.True(t, other.Rewards.IsZero())
}
