// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package raffle binds the raffle components to a contract account and
// exposes the guarded entry points that drive them.
package raffle

import (
	"github.com/holiman/uint256"

	"github.com/luckydraw/lucky/builtin/access"
	"github.com/luckydraw/lucky/builtin/raffle/draw"
	"github.com/luckydraw/lucky/builtin/raffle/filter"
	"github.com/luckydraw/lucky/builtin/raffle/oracle"
	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/raffle/random"
	"github.com/luckydraw/lucky/builtin/raffle/reward"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/state"
)

var (
	slotAdmin    = lucky.BytesToBytes32([]byte("raffle-admin"))
	slotTreasury = lucky.BytesToBytes32([]byte("raffle-treasury"))
)

// Raffle is the storage view of a raffle contract.
type Raffle struct {
	addr         lucky.Address
	state        *state.State
	sctx         *solidity.Context
	access       *access.Service
	participants *participant.Service
	filter       *filter.Service
	draws        *draw.Service
	rewards      *reward.Service
	oracle       *oracle.Service
	admin        *solidity.Address
	treasury     *solidity.Address
}

// New binds the raffle stored at addr.
func New(addr lucky.Address, state *state.State) *Raffle {
	sctx := solidity.NewContext(addr, state)
	return &Raffle{
		addr:         addr,
		state:        state,
		sctx:         sctx,
		access:       access.NewService(sctx),
		participants: participant.NewService(sctx),
		filter:       filter.NewService(sctx),
		draws:        draw.NewService(sctx),
		rewards:      reward.NewService(sctx),
		oracle:       oracle.NewService(sctx),
		admin:        solidity.NewAddress(sctx, slotAdmin),
		treasury:     solidity.NewAddress(sctx, slotTreasury),
	}
}

func (r *Raffle) Address() lucky.Address             { return r.addr }
func (r *Raffle) Access() *access.Service            { return r.access }
func (r *Raffle) Participants() *participant.Service { return r.participants }
func (r *Raffle) Filter() *filter.Service            { return r.filter }
func (r *Raffle) Draws() *draw.Service               { return r.draws }
func (r *Raffle) Rewards() *reward.Service           { return r.rewards }
func (r *Raffle) Oracle() *oracle.Service            { return r.oracle }

// Random returns the random number source of the raffle, drawing seeds from s.
func (r *Raffle) Random(s random.Seeder) *random.Service {
	return random.NewService(r.sctx, s)
}

// Admin returns the account the raffle was initialized for, zero if it was not.
func (r *Raffle) Admin() (lucky.Address, error) {
	return r.admin.Get()
}

// Treasury returns the account raffle rewards are withdrawn from.
func (r *Raffle) Treasury() (lucky.Address, error) {
	return r.treasury.Get()
}

// Balance returns the funds held by the raffle: pending rewards and undistributed pools.
func (r *Raffle) Balance() (*uint256.Int, error) {
	return r.state.GetBalance(r.addr)
}
