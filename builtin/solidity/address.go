// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solidity

import (
	"github.com/luckydraw/lucky/lucky"
)

// Address is a wrapper for storage and retrieval of an address. Similar to storing an address in a smart contract.
type Address struct {
	context *Context
	pos     lucky.Bytes32
}

func NewAddress(context *Context, pos lucky.Bytes32) *Address {
	return &Address{context: context, pos: pos}
}

func (a *Address) Get() (lucky.Address, error) {
	storage, err := a.context.state.GetStorage(a.context.address, a.pos)
	if err != nil {
		return lucky.Address{}, err
	}
	return lucky.BytesToAddress(storage.Bytes()), nil
}

// Set stores addr, a nil addr clears the slot.
func (a *Address) Set(addr *lucky.Address) {
	var storage lucky.Bytes32
	if addr != nil {
		storage = lucky.BytesToBytes32(addr.Bytes())
	}
	a.context.state.SetStorage(a.context.address, a.pos, storage)
}
