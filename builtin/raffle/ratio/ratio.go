// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package ratio holds the table that maps winner rank to a share of a reward pool.
package ratio

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
)

// Table is an ordered list of ratios over a common denominator.
// The i-th drawn winner receives floor(amount * Ratios[i] / Total).
type Table struct {
	Ratios []uint64
	Total  uint64
}

// New validates and returns a table. The ratios may not sum above total.
func New(ratios []uint64, total uint64) (*Table, error) {
	var sum uint64
	for _, r := range ratios {
		next := sum + r
		if next < sum {
			return nil, reverts.ErrAddOverflow
		}
		sum = next
	}
	if sum > total {
		return nil, reverts.ErrIncorrectRatio
	}
	return &Table{Ratios: append([]uint64(nil), ratios...), Total: total}, nil
}

// Len returns the number of winner slots.
func (t *Table) Len() int {
	return len(t.Ratios)
}

// At returns the ratio of slot i, zero if the table has no such slot.
func (t *Table) At(i int) uint64 {
	if i < 0 || i >= len(t.Ratios) {
		return 0
	}
	return t.Ratios[i]
}

// Share computes the part of amount owed to slot i.
func (t *Table) Share(amount *uint256.Int, i int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(amount, uint256.NewInt(t.At(i)))
	if overflow {
		return nil, reverts.ErrMulOverflow
	}
	if t.Total == 0 {
		return nil, reverts.ErrDivByZero
	}
	return product.Div(product, uint256.NewInt(t.Total)), nil
}

// Store persists a table at one contract slot.
type Store struct {
	raw *solidity.Raw[*Table]
}

func NewStore(sctx *solidity.Context, pos lucky.Bytes32) *Store {
	return &Store{raw: solidity.NewRaw[*Table](sctx, pos)}
}

// Get returns the stored table, an empty one if never set.
func (s *Store) Get() (*Table, error) {
	t, err := s.raw.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get ratio table")
	}
	if t == nil {
		t = &Table{}
	}
	return t, nil
}

// Set validates and stores the table.
func (s *Store) Set(ratios []uint64, total uint64) (*Table, error) {
	t, err := New(ratios, total)
	if err != nil {
		return nil, err
	}
	if err := s.raw.Set(t); err != nil {
		return nil, errors.Wrap(err, "failed to set ratio table")
	}
	return t, nil
}
