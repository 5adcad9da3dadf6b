// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/luckydraw/lucky/lucky"
	"github.com/luckydraw/lucky/state"
)

// Context binds storage helpers to a contract address.
type Context struct {
	address lucky.Address
	state   *state.State
}

func NewContext(address lucky.Address, state *state.State) *Context {
	return &Context{
		address: address,
		state:   state,
	}
}

func (c *Context) State() *state.State {
	return c.state
}

func (c *Context) Address() lucky.Address {
	return c.address
}

// Offset returns the position that is n slots after pos.
func Offset(pos lucky.Bytes32, n uint64) lucky.Bytes32 {
	return lucky.Blake2b(pos.Bytes(), Uint64Key(n).Bytes())
}
