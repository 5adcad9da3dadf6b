// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package raffle

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/xenv"
)

// Event ids, the first topic of every emitted event.
var (
	RaffleDoneEvent     = lucky.Keccak256([]byte("RaffleDone(address,uint32,uint256,uint64,uint64,uint256)"))
	PendingRewardEvent  = lucky.Keccak256([]byte("PendingReward(address,uint32,uint256)"))
	RewardsClaimedEvent = lucky.Keccak256([]byte("RewardsClaimed(address,uint256)"))
)

// RaffleDone is emitted once per successful round.
type RaffleDone struct {
	Contract       lucky.Address
	Era            uint32
	PendingRewards *uint256.Int
	NbWinners      uint64
	NbParticipants uint64
	TotalValue     *uint256.Int
}

// PendingReward is emitted for every amount credited to a winner.
type PendingReward struct {
	Account lucky.Address
	Era     uint32
	Amount  *uint256.Int
}

// RewardsClaimed is emitted when an account collects its pending rewards.
type RewardsClaimed struct {
	Account lucky.Address
	Amount  *uint256.Int
}

func addressTopic(addr lucky.Address) lucky.Bytes32 {
	return lucky.BytesToBytes32(addr.Bytes())
}

// EraTopic is the topic an era is indexed by.
func EraTopic(era uint32) lucky.Bytes32 {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], era)
	return lucky.BytesToBytes32(b[:])
}

// AccountTopic is the topic an account is indexed by.
func AccountTopic(account lucky.Address) lucky.Bytes32 {
	return addressTopic(account)
}

func emit(env *xenv.Environment, id lucky.Bytes32, ev any, topics ...lucky.Bytes32) {
	data, err := rlp.EncodeToBytes(ev)
	if err != nil {
		panic(errors.WithMessage(err, "encode event"))
	}
	env.Log(append([]lucky.Bytes32{id}, topics...), data)
}

func emitRaffleDone(env *xenv.Environment, ev *RaffleDone) {
	emit(env, RaffleDoneEvent, ev, addressTopic(ev.Contract), EraTopic(ev.Era))
}

func emitPendingReward(env *xenv.Environment, ev *PendingReward) {
	emit(env, PendingRewardEvent, ev, AccountTopic(ev.Account), EraTopic(ev.Era))
}

func emitRewardsClaimed(env *xenv.Environment, ev *RewardsClaimed) {
	emit(env, RewardsClaimedEvent, ev, AccountTopic(ev.Account))
}

// EventName returns the readable name of an event id, empty if unknown.
func EventName(id lucky.Bytes32) string {
	switch id {
	case RaffleDoneEvent:
		return "RaffleDone"
	case PendingRewardEvent:
		return "PendingReward"
	case RewardsClaimedEvent:
		return "RewardsClaimed"
	}
	return ""
}

// EventByName returns the id of a named event.
func EventByName(name string) (lucky.Bytes32, bool) {
	for _, id := range []lucky.Bytes32{RaffleDoneEvent, PendingRewardEvent, RewardsClaimedEvent} {
		if EventName(id) == name {
			return id, true
		}
	}
	return lucky.Bytes32{}, false
}

// DecodeEvent decodes the payload of an event of the given id.
func DecodeEvent(id lucky.Bytes32, data []byte) (any, error) {
	var ev any
	switch id {
	case RaffleDoneEvent:
		ev = new(RaffleDone)
	case PendingRewardEvent:
		ev = new(PendingReward)
	case RewardsClaimedEvent:
		ev = new(RewardsClaimed)
	default:
		return nil, errors.Errorf("unknown event %v", id.AbbrevString())
	}
	if err := rlp.DecodeBytes(data, ev); err != nil {
		return nil, errors.Wrapf(err, "decode %s", EventName(id))
	}
	return ev, nil
}
