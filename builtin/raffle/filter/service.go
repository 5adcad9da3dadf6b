// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package filter keeps the most recent winners so they can be left out of the next batches.
package filter

import (
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
)

var (
	slotLimit   = lucky.BytesToBytes32([]byte("filter-limit"))
	slotWinners = lucky.BytesToBytes32([]byte("filter-last-winners"))

	logger = log.WithContext("pkg", "filter")
)

// Service is a bounded FIFO of winner accounts, oldest first.
type Service struct {
	limit   *solidity.Uint64
	winners *solidity.Raw[[]lucky.Address]
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		limit:   solidity.NewUint64(sctx, slotLimit),
		winners: solidity.NewRaw[[]lucky.Address](sctx, slotWinners),
	}
}

// Limit returns how many recent winners are kept.
func (s *Service) Limit() (uint64, error) {
	n, err := s.limit.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get filter limit")
	}
	return n, nil
}

// SetLimit changes the bound. The FIFO shrinks on the next AddWinner.
func (s *Service) SetLimit(n uint64) {
	s.limit.Set(n)
}

// LastWinners returns the kept winners, oldest first.
func (s *Service) LastWinners() ([]lucky.Address, error) {
	winners, err := s.winners.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get last winners")
	}
	return winners, nil
}

// AddWinner pushes account to the back and evicts from the front until the bound holds.
func (s *Service) AddWinner(account lucky.Address) error {
	limit, err := s.Limit()
	if err != nil {
		return err
	}
	winners, err := s.LastWinners()
	if err != nil {
		return err
	}
	winners = append(winners, account)
	if evict := uint64(len(winners)); evict > limit {
		winners = winners[evict-limit:]
	}
	if len(winners) == 0 {
		s.winners.Clear()
		return nil
	}
	if err := s.winners.Set(winners); err != nil {
		return errors.Wrap(err, "failed to set last winners")
	}
	return nil
}

// IsLastWinner reports whether account is among the kept winners.
func (s *Service) IsLastWinner(account lucky.Address) (bool, error) {
	winners, err := s.LastWinners()
	if err != nil {
		return false, err
	}
	for _, w := range winners {
		if w == account {
			return true, nil
		}
	}
	return false, nil
}

// Exclude returns the batch without the entries of recent winners.
func (s *Service) Exclude(batch []participant.Participant) ([]participant.Participant, error) {
	winners, err := s.LastWinners()
	if err != nil {
		return nil, err
	}
	if len(winners) == 0 {
		return batch, nil
	}
	recent := make(map[lucky.Address]struct{}, len(winners))
	for _, w := range winners {
		recent[w] = struct{}{}
	}
	kept := make([]participant.Participant, 0, len(batch))
	for _, p := range batch {
		if _, ok := recent[p.Account]; ok {
			continue
		}
		kept = append(kept, p)
	}
	if skipped := len(batch) - len(kept); skipped > 0 {
		logger.Debug("recent winners filtered out", "skipped", skipped)
	}
	return kept, nil
}
