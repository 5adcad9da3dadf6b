// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package participant

import (
	"github.com/holiman/uint256"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/lucky"
)

// Participant is a weighted raffle entry. The same account may appear
// several times, its chance is the sum of its weights.
type Participant struct {
	Account lucky.Address
	Weight  *uint256.Int
}

func New(account lucky.Address, weight *uint256.Int) Participant {
	if weight == nil {
		weight = new(uint256.Int)
	}
	return Participant{Account: account, Weight: weight}
}

// List is an in-memory weighted list, resolved the same way as the registry.
type List []Participant

// TotalValue sums all weights.
func (l List) TotalValue() (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, p := range l {
		if _, overflow := total.AddOverflow(total, weightOf(p)); overflow {
			return nil, reverts.ErrAddOverflow
		}
	}
	return total, nil
}

// Participant returns the first entry whose cumulative weight reaches point.
func (l List) Participant(point *uint256.Int) (lucky.Address, bool, error) {
	cum := new(uint256.Int)
	return match(l, cum, point)
}

func (l List) Count() (uint64, error) {
	return uint64(len(l)), nil
}

func (l List) At(index uint64) (*Participant, error) {
	if index >= uint64(len(l)) {
		return nil, nil
	}
	p := l[index]
	return &p, nil
}

// match walks entries accumulating into cum and returns the first whose
// cumulative weight is at least point. cum keeps the running sum on a miss.
func match(entries []Participant, cum, point *uint256.Int) (lucky.Address, bool, error) {
	for _, p := range entries {
		if _, overflow := cum.AddOverflow(cum, weightOf(p)); overflow {
			return lucky.Address{}, false, reverts.ErrAddOverflow
		}
		if !cum.Lt(point) {
			return p.Account, true, nil
		}
	}
	return lucky.Address{}, false, nil
}

func weightOf(p Participant) *uint256.Int {
	if p.Weight == nil {
		return new(uint256.Int)
	}
	return p.Weight
}
