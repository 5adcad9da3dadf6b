// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package draw runs one raffle round per era: it picks distinct winners by
// weight and maps them to their share of the round reward.
package draw

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/raffle/participant"
	"github.com/luckydraw/lucky/builtin/raffle/ratio"
	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/metrics"
)

// MaxRetries bounds the redraws of one slot when the drawn account already won this round.
const MaxRetries = 10

var (
	slotRatios      = lucky.BytesToBytes32([]byte("draw-ratios"))
	slotLastEraDone = lucky.BytesToBytes32([]byte("draw-last-era-done"))

	logger = log.WithContext("pkg", "draw")

	metricRuns    = metrics.LazyLoadCounter("raffle_runs_count")
	metricWinners = metrics.LazyLoadCounter("raffle_winners_count")
	metricRetries = metrics.LazyLoadHistogram("raffle_duplicate_retries", metrics.BucketRetries)
)

// Pool is a weighted participant set a round draws from.
type Pool interface {
	TotalValue() (*uint256.Int, error)
	Participant(point *uint256.Int) (lucky.Address, bool, error)
	Count() (uint64, error)
	At(index uint64) (*participant.Participant, error)
}

// Drawer draws a number in [low, high).
type Drawer interface {
	Draw(low, high *uint256.Int, subject lucky.Address) (*uint256.Int, error)
}

// Winner is a drawn account with its share of the round reward.
type Winner struct {
	Account lucky.Address
	Amount  *uint256.Int
}

// Service holds the ratio table and the last era a raffle ran for.
type Service struct {
	ratios      *ratio.Store
	lastEraDone *solidity.Uint64
}

func NewService(sctx *solidity.Context) *Service {
	return &Service{
		ratios:      ratio.NewStore(sctx, slotRatios),
		lastEraDone: solidity.NewUint64(sctx, slotLastEraDone),
	}
}

// SetRatioDistribution replaces the ratio table. It fails with IncorrectRatio if the ratios sum above total.
func (s *Service) SetRatioDistribution(ratios []uint64, total uint64) error {
	_, err := s.ratios.Set(ratios, total)
	return err
}

func (s *Service) RatioDistribution() ([]uint64, error) {
	t, err := s.ratios.Get()
	if err != nil {
		return nil, err
	}
	return t.Ratios, nil
}

func (s *Service) TotalRatio() (uint64, error) {
	t, err := s.ratios.Get()
	if err != nil {
		return 0, err
	}
	return t.Total, nil
}

func (s *Service) LastEraDone() (uint32, error) {
	era, err := s.lastEraDone.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get last era done")
	}
	return uint32(era), nil
}

// Run draws the winners of era and their rewards. Checks run in this order:
// era must be above the last one done, a ratio table must be set, reward
// must be positive and the pool must not be empty.
//
// Every ratio slot draws one winner distinct from the previous ones; a slot
// with a zero ratio still takes its winner out of the round but yields no
// entry. A drawn account that already won is redrawn with the next
// participant as subject, at most MaxRetries times or until every
// participant was tried, after which the round ends with fewer winners.
func (s *Service) Run(era uint32, reward *uint256.Int, pool Pool, rng Drawer) ([]Winner, error) {
	last, err := s.LastEraDone()
	if err != nil {
		return nil, err
	}
	if era <= last {
		return nil, reverts.ErrRaffleAlreadyDone
	}
	table, err := s.ratios.Get()
	if err != nil {
		return nil, err
	}
	if table.Len() == 0 {
		return nil, reverts.ErrNoRatioSet
	}
	if reward == nil || reward.IsZero() {
		return nil, reverts.ErrNoReward
	}
	count, err := pool.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, reverts.ErrNoParticipant
	}

	total, err := pool.TotalValue()
	if err != nil {
		return nil, err
	}
	first, err := pool.At(0)
	if err != nil {
		return nil, err
	}
	if first == nil {
		return nil, reverts.ErrNoParticipant
	}

	var (
		winners  = make([]Winner, 0, table.Len())
		selected = make(map[lucky.Address]struct{}, table.Len())
		subject  = first.Account
		retries  uint64
		redraws  int64
	)
	for slot := 0; slot < table.Len(); {
		point, err := rng.Draw(new(uint256.Int), total, subject)
		if err != nil {
			return nil, err
		}
		account, found, err := pool.Participant(point)
		if err != nil {
			return nil, err
		}
		if !found {
			logger.Error("drawn point matches no participant", "era", era, "point", point, "total", total)
			return nil, reverts.ErrNoSelectedParticipant
		}

		if _, dup := selected[account]; dup {
			retries++
			redraws++
			if retries > MaxRetries || retries >= count {
				logger.Debug("no other winner found", "era", era, "slot", slot, "retries", retries)
				break
			}
			next, err := pool.At(retries)
			if err != nil {
				return nil, err
			}
			subject = next.Account
			continue
		}

		selected[account] = struct{}{}
		subject = account
		retries = 0

		if table.At(slot) != 0 {
			amount, err := table.Share(reward, slot)
			if err != nil {
				return nil, err
			}
			winners = append(winners, Winner{Account: account, Amount: amount})
		}
		slot++
	}

	s.lastEraDone.Set(uint64(era))

	metricRuns().Add(1)
	metricWinners().Add(int64(len(winners)))
	metricRetries().Observe(redraws)
	logger.Info("raffle done", "era", era, "participants", count, "total", total, "winners", len(winners), "reward", reward)
	return winners, nil
}
