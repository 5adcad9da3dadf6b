// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package raffle

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/luckydraw/lucky/builtin/access"
	"github.com/luckydraw/lucky/builtin/reverts"
	"github.com/luckydraw/lucky/builtin/solidity"
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/state"
)

// Treasury is the account that accrues the funds raffles distribute.
// Only whitelisted accounts may withdraw from it.
type Treasury struct {
	addr   lucky.Address
	state  *state.State
	access *access.Service
}

func NewTreasury(addr lucky.Address, state *state.State) *Treasury {
	return &Treasury{
		addr:   addr,
		state:  state,
		access: access.NewService(solidity.NewContext(addr, state)),
	}
}

func (t *Treasury) Address() lucky.Address  { return t.addr }
func (t *Treasury) Access() *access.Service { return t.access }

func (t *Treasury) Balance() (*uint256.Int, error) {
	return t.state.GetBalance(t.addr)
}

// Deposit credits the treasury, standing for the staking rewards it earns.
func (t *Treasury) Deposit(amount *uint256.Int) error {
	return t.state.AddBalance(t.addr, amount)
}

// Withdraw transfers value to caller.
func (t *Treasury) Withdraw(caller lucky.Address, value *uint256.Int) error {
	if err := t.access.CheckRole(access.Whitelisted, caller); err != nil {
		return err
	}
	if err := t.state.Transfer(t.addr, caller, value); err != nil {
		if errors.Is(err, state.ErrInsufficientBalance) {
			return errors.WithMessage(reverts.ErrTransferError, err.Error())
		}
		return err
	}
	logger.Debug("treasury withdrawal", "treasury", t.addr, "to", caller, "value", value)
	return nil
}
