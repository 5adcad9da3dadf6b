// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package participant implements the paged, capacity bounded registry of weighted raffle entries.
package participant

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/log"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/metrics"
)

const (
	PageSize        = 300
	MaxPages        = 6
	MaxParticipants = PageSize * MaxPages
)

var (
	slotPages      = lucky.BytesToBytes32([]byte("participant-pages"))
	slotPageTotals = lucky.BytesToBytes32([]byte("participant-page-totals"))
	slotCount      = lucky.BytesToBytes32([]byte("participant-count"))

	logger = log.WithContext("pkg", "participant")

	metricParticipants = metrics.LazyLoadGauge("participants_count")
)

// Service stores participants in fixed size pages, filled in insertion order.
// Every page keeps the sum of its weights so lookups can skip whole pages.
type Service struct {
	pages  *solidity.Mapping[solidity.Uint64Key, []Participant]
	totals []*solidity.Uint256
	count  *solidity.Uint64
}

func NewService(sctx *solidity.Context) *Service {
	totals := make([]*solidity.Uint256, MaxPages+1)
	for page := uint64(1); page <= MaxPages; page++ {
		totals[page] = solidity.NewUint256(sctx, solidity.Offset(slotPageTotals, page))
	}
	return &Service{
		pages:  solidity.NewMapping[solidity.Uint64Key, []Participant](sctx, slotPages),
		totals: totals,
		count:  solidity.NewUint64(sctx, slotCount),
	}
}

// Count returns the number of stored participants.
func (s *Service) Count() (uint64, error) {
	n, err := s.count.Get()
	if err != nil {
		return 0, errors.Wrap(err, "failed to get participant count")
	}
	return n, nil
}

func (s *Service) page(page uint64) ([]Participant, error) {
	entries, err := s.pages.Get(solidity.Uint64Key(page))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get participant page %d", page)
	}
	return entries, nil
}

func (s *Service) pageTotal(page uint64) (*uint256.Int, error) {
	total, err := s.totals[page].Get()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get total of page %d", page)
	}
	return total, nil
}

// AddParticipants appends the batch after the stored participants.
// The batch is rejected as a whole if it does not fit or if a total overflows.
func (s *Service) AddParticipants(batch []Participant) error {
	count, err := s.Count()
	if err != nil {
		return err
	}
	if uint64(len(batch)) > MaxParticipants-count {
		return reverts.ErrMaxSizeExceeded
	}
	if len(batch) == 0 {
		return nil
	}

	grand, err := s.TotalValue()
	if err != nil {
		return err
	}

	type dirty struct {
		entries []Participant
		total   *uint256.Int
	}
	changed := make(map[uint64]*dirty)
	for _, p := range batch {
		page := count/PageSize + 1
		d := changed[page]
		if d == nil {
			entries, err := s.page(page)
			if err != nil {
				return err
			}
			total, err := s.pageTotal(page)
			if err != nil {
				return err
			}
			d = &dirty{entries: entries, total: total}
			changed[page] = d
		}
		p = New(p.Account, p.Weight)
		if _, overflow := d.total.AddOverflow(d.total, p.Weight); overflow {
			return reverts.ErrAddOverflow
		}
		if _, overflow := grand.AddOverflow(grand, p.Weight); overflow {
			return reverts.ErrAddOverflow
		}
		d.entries = append(d.entries, p)
		count++
	}

	for page, d := range changed {
		if err := s.pages.Set(solidity.Uint64Key(page), d.entries); err != nil {
			return errors.Wrapf(err, "failed to set participant page %d", page)
		}
		s.totals[page].Set(d.total)
	}
	s.count.Set(count)

	metricParticipants().Set(int64(count))
	logger.Debug("participants added", "batch", len(batch), "count", count, "total", grand)
	return nil
}

// TotalValue returns the sum of all page totals.
func (s *Service) TotalValue() (*uint256.Int, error) {
	total := new(uint256.Int)
	for page := uint64(1); page <= MaxPages; page++ {
		pt, err := s.pageTotal(page)
		if err != nil {
			return nil, err
		}
		if _, overflow := total.AddOverflow(total, pt); overflow {
			return nil, reverts.ErrAddOverflow
		}
	}
	return total, nil
}

// Participant resolves point to the first participant whose cumulative
// weight, in insertion order, is at least point. It reports false when point
// is above the total value.
func (s *Service) Participant(point *uint256.Int) (lucky.Address, bool, error) {
	cum := new(uint256.Int)
	for page := uint64(1); page <= MaxPages; page++ {
		pt, err := s.pageTotal(page)
		if err != nil {
			return lucky.Address{}, false, err
		}
		end, overflow := new(uint256.Int).AddOverflow(cum, pt)
		if overflow {
			return lucky.Address{}, false, reverts.ErrAddOverflow
		}
		if end.Lt(point) {
			cum = end
			continue
		}
		entries, err := s.page(page)
		if err != nil {
			return lucky.Address{}, false, err
		}
		addr, found, err := match(entries, cum, point)
		if err != nil || found {
			return addr, found, err
		}
	}
	return lucky.Address{}, false, nil
}

// Page returns the participants of page 1 to MaxPages. Page 0 is always empty.
func (s *Service) Page(page uint64) ([]Participant, error) {
	if page == 0 {
		return []Participant{}, nil
	}
	if page > MaxPages {
		return nil, reverts.ErrPageNotFound
	}
	entries, err := s.page(page)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []Participant{}
	}
	return entries, nil
}

// At returns the participant at the given insertion index, nil if out of range.
func (s *Service) At(index uint64) (*Participant, error) {
	count, err := s.Count()
	if err != nil {
		return nil, err
	}
	if index >= count {
		return nil, nil
	}
	entries, err := s.page(index/PageSize + 1)
	if err != nil {
		return nil, err
	}
	offset := index % PageSize
	if offset >= uint64(len(entries)) {
		return nil, errors.Errorf("participant page %d is shorter than count %d", index/PageSize+1, count)
	}
	p := entries[offset]
	return &p, nil
}

// Clear removes every participant and resets all totals.
func (s *Service) Clear() {
	for page := uint64(1); page <= MaxPages; page++ {
		s.pages.Delete(solidity.Uint64Key(page))
		s.totals[page].Set(new(uint256.Int))
	}
	s.count.Set(0)
	metricParticipants().Set(0)
}
