// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package draw

import (
	"encoding/binary"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/raffle/random"
	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/lvldb"
	"github.com/luckydraw/lucky/state"
)

type fixture struct {
	draw         *Service
	participants *participant.Service
	rng          *random.Service
}

func newFixture(t *testing.T) *fixture {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	sctx := solidity.NewContext(lucky.BytesToAddress([]byte("raffle")), state.New(db))
	return &fixture{
		draw:         NewService(sctx),
		participants: participant.NewService(sctx),
		rng:          random.NewService(sctx, random.BlockSeeder{Block: random.Block{Number: 42, Time: 1700000000}}),
	}
}

func accountAt(i int) lucky.Address {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i)+1)
	return lucky.BytesToAddress(b[:])
}

func (f *fixture) addParticipants(t *testing.T, n int, weight uint64) {
	batch := make([]participant.Participant, n)
	for i := range batch {
		batch[i] = participant.New(accountAt(i), uint256.NewInt(weight))
	}
	require.NoError(t, f.participants.AddParticipants(batch))
}

func sum(winners []Winner) uint64 {
	total := new(uint256.Int)
	for _, w := range winners {
		total.Add(total, w.Amount)
	}
	return total.Uint64()
}

func distinct(winners []Winner) bool {
	seen := make(map[lucky.Address]bool)
	for _, w := range winners {
		if seen[w.Account] {
			return false
		}
		seen[w.Account] = true
	}
	return true
}

func TestPreconditionOrder(t *testing.T) {
	f := newFixture(t)
	reward := uint256.NewInt(1000)

	_, err := f.draw.Run(0, reward, f.participants, f.rng)
	assert.ErrorIs(t, err, reverts.ErrRaffleAlreadyDone)

	_, err = f.draw.Run(1, new(uint256.Int), f.participants, f.rng)
	assert.ErrorIs(t, err, reverts.ErrNoRatioSet)

	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 100))
	_, err = f.draw.Run(1, new(uint256.Int), f.participants, f.rng)
	assert.ErrorIs(t, err, reverts.ErrNoReward)

	_, err = f.draw.Run(1, reward, f.participants, f.rng)
	assert.ErrorIs(t, err, reverts.ErrNoParticipant)

	last, err := f.draw.LastEraDone()
	require.NoError(t, err)
	assert.Zero(t, last, "failed runs leave the era untouched")
}

func TestRatioDistribution(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 100))
	assert.ErrorIs(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 90), reverts.ErrIncorrectRatio)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 150))

	ratios, err := f.draw.RatioDistribution()
	require.NoError(t, err)
	assert.Equal(t, []uint64{50, 30, 20}, ratios)
	total, err := f.draw.TotalRatio()
	require.NoError(t, err)
	assert.Equal(t, uint64(150), total)
}

func TestEraMonotonicity(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 100))
	f.addParticipants(t, 10, 100)
	reward := uint256.NewInt(1000)

	_, err := f.draw.Run(2, reward, f.participants, f.rng)
	require.NoError(t, err)

	_, err = f.draw.Run(2, reward, f.participants, f.rng)
	assert.ErrorIs(t, err, reverts.ErrRaffleAlreadyDone)
	_, err = f.draw.Run(1, reward, f.participants, f.rng)
	assert.ErrorIs(t, err, reverts.ErrRaffleAlreadyDone)

	_, err = f.draw.Run(3, reward, f.participants, f.rng)
	require.NoError(t, err)
	last, err := f.draw.LastEraDone()
	require.NoError(t, err)
	assert.Equal(t, uint32(3), last)
}

func TestRewardConservation(t *testing.T) {
	f := newFixture(t)
	f.addParticipants(t, 20, 50)
	reward := uint256.NewInt(1000)

	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 100))
	winners, err := f.draw.Run(1, reward, f.participants, f.rng)
	require.NoError(t, err)
	require.Len(t, winners, 3, spew.Sdump(winners))
	assert.True(t, distinct(winners))
	assert.Equal(t, uint64(1000), sum(winners))
	assert.Equal(t, uint64(500), winners[0].Amount.Uint64())

	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 200))
	winners, err = f.draw.Run(2, reward, f.participants, f.rng)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), sum(winners))
}

func TestZeroRatioSlot(t *testing.T) {
	f := newFixture(t)
	f.addParticipants(t, 5, 10)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 0, 50}, 100))

	winners, err := f.draw.Run(1, uint256.NewInt(1000), f.participants, f.rng)
	require.NoError(t, err)
	require.Len(t, winners, 2, spew.Sdump(winners))
	assert.True(t, distinct(winners))
	assert.Equal(t, uint64(1000), sum(winners))
}

func TestShortListWhenParticipantsRunOut(t *testing.T) {
	f := newFixture(t)
	f.addParticipants(t, 1, 10)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 30, 20}, 100))

	winners, err := f.draw.Run(1, uint256.NewInt(1000), f.participants, f.rng)
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, accountAt(0), winners[0].Account)
	assert.Equal(t, uint64(500), winners[0].Amount.Uint64())

	last, err := f.draw.LastEraDone()
	require.NoError(t, err)
	assert.Equal(t, uint32(1), last)
}

// zeroDrawer always hits the first participant and records the subjects it got.
type zeroDrawer struct {
	subjects []lucky.Address
}

func (z *zeroDrawer) Draw(low, _ *uint256.Int, subject lucky.Address) (*uint256.Int, error) {
	z.subjects = append(z.subjects, subject)
	return new(uint256.Int).Set(low), nil
}

func TestRetryBudget(t *testing.T) {
	f := newFixture(t)
	f.addParticipants(t, 20, 10)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{50, 50}, 100))

	rng := &zeroDrawer{}
	winners, err := f.draw.Run(1, uint256.NewInt(1000), f.participants, rng)
	require.NoError(t, err)
	require.Len(t, winners, 1)

	// one winning draw, then MaxRetries reseeded redraws and the final give-up draw
	require.Len(t, rng.subjects, MaxRetries+2)
	assert.Equal(t, accountAt(0), rng.subjects[0])
	assert.Equal(t, accountAt(0), rng.subjects[1], "the winner reseeds the next slot")
	for i := 1; i <= MaxRetries; i++ {
		assert.Equal(t, accountAt(i), rng.subjects[i+1])
	}
}

type lostPool struct {
	participant.List
}

func (lostPool) Participant(*uint256.Int) (lucky.Address, bool, error) {
	return lucky.Address{}, false, nil
}

func TestNoSelectedParticipant(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{100}, 100))

	pool := lostPool{participant.List{participant.New(accountAt(0), uint256.NewInt(1))}}
	_, err := f.draw.Run(1, uint256.NewInt(10), pool, f.rng)
	assert.ErrorIs(t, err, reverts.ErrNoSelectedParticipant)

	last, err := f.draw.LastEraDone()
	require.NoError(t, err)
	assert.Zero(t, last)
}

func TestRunOnList(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.draw.SetRatioDistribution([]uint64{60, 40}, 100))

	pool := participant.List{
		participant.New(accountAt(0), uint256.NewInt(1)),
		participant.New(accountAt(1), uint256.NewInt(1000)),
		participant.New(accountAt(2), uint256.NewInt(1)),
	}
	winners, err := f.draw.Run(1, uint256.NewInt(100), pool, f.rng)
	require.NoError(t, err)
	require.NotEmpty(t, winners)
	assert.True(t, distinct(winners))
	assert.Equal(t, uint64(60), winners[0].Amount.Uint64())
	assert.LessOrEqual(t, sum(winners), uint64(100))
}
