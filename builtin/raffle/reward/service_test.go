// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"errors"
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

var (
	alice = lucky.BytesToAddress([]byte("alice"))
	bob   = lucky.BytesToAddress([]byte("bob"))
	carol = lucky.BytesToAddress([]byte("carol"))
)

func newSvc(t *testing.T) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewService(solidity.NewContext(lucky.BytesToAddress([]byte("rewards")), state.New(db)))
}

type recorder struct {
	calls []Reward
	err   error
}

func (r *recorder) transfer(to lucky.Address, amount *uint256.Int) error {
	r.calls = append(r.calls, Reward{Account: to, Amount: new(uint256.Int).Set(amount)})
	return r.err
}

func u(v uint64) *uint256.Int { return uint256.NewInt(v) }

func TestAddWinnersPreconditions(t *testing.T) {
	svc := newSvc(t)

	_, err := svc.AddWinners(1, []lucky.Address{alice})
	assert.ErrorIs(t, err, reverts.ErrNoRatioSet)

	require.NoError(t, svc.SetRatioDistribution([]uint64{50, 30, 20}, 100))
	_, err = svc.AddWinners(1, []lucky.Address{alice})
	assert.ErrorIs(t, err, reverts.ErrNoReward)

	assert.ErrorIs(t, svc.SetRatioDistribution([]uint64{50, 30, 20}, 90), reverts.ErrIncorrectRatio)
}

func TestAddWinners(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.SetRatioDistribution([]uint64{50, 30, 20}, 100))

	summary, err := svc.FundRewardsAndAddWinners(1, u(1000), []lucky.Address{alice, bob, carol})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), summary.Era)
	assert.Equal(t, uint64(1000), summary.GivenReward.Uint64())
	assert.Equal(t, 3, summary.NbWinners)

	pool, err := svc.RemainingRewards(1)
	require.NoError(t, err)
	assert.True(t, pool.IsZero())

	list, err := svc.ListPendingRewardsFrom(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, []Pending{
		{Account: alice, Era: 1, Amount: u(500)},
		{Account: bob, Era: 1, Amount: u(300)},
		{Account: carol, Era: 1, Amount: u(200)},
	}, list)
}

func TestAddWinnersZeroRatioKeepsPositions(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.SetRatioDistribution([]uint64{50, 0, 30}, 100))
	require.NoError(t, svc.FundRewards(2, u(1000)))

	summary, err := svc.AddWinners(2, []lucky.Address{alice, bob, carol, alice})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.NbWinners)
	assert.Equal(t, uint64(800), summary.GivenReward.Uint64())

	// the third winner gets the third ratio
	has, err := svc.HasPendingRewardsFrom(nil, &bob)
	require.NoError(t, err)
	assert.False(t, has)
	list, err := svc.ListPendingRewardsFrom(nil, &carol)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, uint64(300), list[0].Amount.Uint64())

	pool, err := svc.RemainingRewards(2)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), pool.Uint64())
}

func TestAddPendingRewards(t *testing.T) {
	svc := newSvc(t)
	rewards := []Reward{{alice, u(600)}, {bob, u(300)}}

	_, err := svc.AddPendingRewards(1, u(899), rewards)
	assert.ErrorIs(t, err, reverts.ErrInsufficientTransferredBalance)

	summary, err := svc.AddPendingRewards(1, u(1000), rewards)
	require.NoError(t, err)
	assert.Equal(t, uint64(900), summary.GivenReward.Uint64())
	assert.Len(t, summary.Entries, 2)

	pool, err := svc.RemainingRewards(1)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), pool.Uint64())
}

func TestFilters(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.AddPendingRewards(1, u(30), []Reward{{alice, u(10)}, {bob, u(20)}})
	require.NoError(t, err)
	_, err = svc.AddPendingRewards(2, u(5), []Reward{{alice, u(5)}})
	require.NoError(t, err)

	era1, era2, era3 := uint32(1), uint32(2), uint32(3)

	all, err := svc.ListPendingRewardsFrom(nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byEra, err := svc.ListPendingRewardsFrom(&era2, nil)
	require.NoError(t, err)
	assert.Equal(t, []Pending{{Account: alice, Era: 2, Amount: u(5)}}, byEra)

	byAccount, err := svc.ListPendingRewardsFrom(nil, &alice)
	require.NoError(t, err)
	assert.Len(t, byAccount, 2)

	both, err := svc.ListPendingRewardsFrom(&era1, &bob)
	require.NoError(t, err)
	assert.Len(t, both, 1)

	has, err := svc.HasPendingRewardsFrom(&era3, nil)
	require.NoError(t, err)
	assert.False(t, has)
	has, err = svc.HasPendingRewardsFrom(&era2, &alice)
	require.NoError(t, err)
	assert.True(t, has)
	has, err = svc.HasPendingRewardsFrom(&era2, &bob)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestClaim(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.AddPendingRewards(1, u(30), []Reward{{alice, u(10)}, {bob, u(20)}})
	require.NoError(t, err)
	_, err = svc.AddPendingRewards(2, u(5), []Reward{{alice, u(5)}})
	require.NoError(t, err)

	rec := &recorder{}
	amount, err := svc.ClaimFrom(alice, rec.transfer)
	require.NoError(t, err)
	assert.Equal(t, uint64(15), amount.Uint64())
	assert.Equal(t, []Reward{{alice, u(15)}}, rec.calls, "a single transfer for all eras")

	has, err := svc.HasPendingRewardsFrom(nil, &alice)
	require.NoError(t, err)
	assert.False(t, has)

	accounts, err := svc.Accounts()
	require.NoError(t, err)
	assert.Equal(t, []lucky.Address{bob}, accounts)

	amount, err = svc.ClaimFrom(alice, rec.transfer)
	require.NoError(t, err)
	assert.True(t, amount.IsZero())
	assert.Len(t, rec.calls, 1, "nothing pending means no transfer")
}

func TestClaimIsAllOrNothing(t *testing.T) {
	svc := newSvc(t)
	_, err := svc.AddPendingRewards(1, u(10), []Reward{{alice, u(10)}})
	require.NoError(t, err)

	rec := &recorder{err: errors.New("account frozen")}
	_, err = svc.ClaimFrom(alice, rec.transfer)
	assert.ErrorIs(t, err, reverts.ErrTransferError)

	list, err := svc.ListPendingRewardsFrom(nil, &alice)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	rec.err = nil
	amount, err := svc.ClaimFrom(alice, rec.transfer)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), amount.Uint64())
}

func TestFundOverflow(t *testing.T) {
	svc := newSvc(t)
	require.NoError(t, svc.FundRewards(1, new(uint256.Int).SetAllOne()))
	assert.ErrorIs(t, svc.FundRewards(1, u(1)), reverts.ErrAddOverflow)
}
