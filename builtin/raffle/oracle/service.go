// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package oracle stores per-era participant snapshots and reward amounts
// pushed by an off-chain data provider.
package oracle

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
)

var (
	slotParticipants = lucky.BytesToBytes32([]byte("oracle-participants"))
	slotRewards      = lucky.BytesToBytes32([]byte("oracle-rewards"))
)

// Data is what the oracle knows about one era.
type Data struct {
	Participants participant.List
	Rewards      *uint256.Int
}

type Service struct {
	participants *solidity.Mapping[solidity.Uint64Key, []participant.Participant]
	rewards      *solidity.Mapping[solidity.Uint64Key, *uint256.Int]
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		participants: solidity.NewMapping[solidity.Uint64Key, []participant.Participant](sctx, slotParticipants),
		rewards:      solidity.NewMapping[solidity.Uint64Key, *uint256.Int](sctx, slotRewards),
	}
}

func (s *Service) AddParticipant(era uint32, account lucky.Address, weight *uint256.Int) error {
	return s.AddParticipants(era, []participant.Participant{participant.New(account, weight)})
}

// AddParticipants appends to the snapshot of era.
func (s *Service) AddParticipants(era uint32, batch []participant.Participant) error {
	list, err := s.participants.Get(solidity.Uint64Key(era))
	if err != nil {
		return errors.Wrapf(err, "failed to get oracle participants of era %d", era)
	}
	for _, p := range batch {
		list = append(list, participant.New(p.Account, p.Weight))
	}
	if err := s.participants.Set(solidity.Uint64Key(era), list); err != nil {
		return errors.Wrapf(err, "failed to set oracle participants of era %d", era)
	}
	return nil
}

// SetRewards sets the reward amount of era, overwriting any previous one.
func (s *Service) SetRewards(era uint32, amount *uint256.Int) error {
	if err := s.rewards.Set(solidity.Uint64Key(era), amount); err != nil {
		return errors.Wrapf(err, "failed to set oracle rewards of era %d", era)
	}
	return nil
}

// Data returns the snapshot of era. Unknown eras give an empty list and zero rewards.
func (s *Service) Data(era uint32) (*Data, error) {
	list, err := s.participants.Get(solidity.Uint64Key(era))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get oracle participants of era %d", era)
	}
	rewards, err := s.rewards.Get(solidity.Uint64Key(era))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get oracle rewards of era %d", era)
	}
	return &Data{Participants: list, Rewards: rewards}, nil
}
